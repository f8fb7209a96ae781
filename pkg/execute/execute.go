// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/telemetry"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options controls one external command invocation. Shell execution is not
// supported: args only, so hostnames and emails from flags can never be
// interpreted by a shell.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the inherited environment
	Stdin   io.Reader

	// Capture returns combined stdout+stderr to the caller instead of
	// streaming it to the operator's terminal.
	Capture bool

	// Probe marks the invocation as a boolean filesystem/package query: a
	// non-zero exit is data, not an error, and is not logged at error level.
	Probe bool

	Timeout time.Duration
}

const defaultTimeout = 30 * time.Minute

// Run executes a command with structured logging and proper error handling.
func Run(ctx context.Context, opts Options) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := otelzap.Ctx(ctx)

	timeout := opts.Timeout
	if timeout <= 0 {
		// apt full-upgrade and puppet runs are legitimately slow
		timeout = defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	cmdStr := opts.Command + " " + strings.Join(opts.Args, " ")
	logger.Debug("Starting execution", zap.String("command", cmdStr))

	cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	var buf bytes.Buffer
	if opts.Capture {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	} else {
		// Stream tool output to the operator but keep a copy for the
		// error summary.
		cmd.Stdout = io.MultiWriter(os.Stdout, &buf)
		cmd.Stderr = io.MultiWriter(os.Stderr, &buf)
	}

	err := cmd.Run()
	output := buf.String()

	if err != nil {
		if opts.Probe {
			logger.Debug("Probe returned non-zero",
				zap.String("command", cmdStr),
				zap.Error(err))
			return output, err
		}
		summary := zulip_err.ExtractSummary(output, 2)
		span.RecordError(err)
		logger.Error("Execution failed",
			zap.String("command", cmdStr),
			zap.String("summary", summary),
			zap.Error(err))
		return output, cerr.Wrapf(err, "%s failed", opts.Command)
	}

	logger.Debug("Execution succeeded", zap.String("command", cmdStr))
	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// RunSimple executes a command, streaming output, with default options.
func RunSimple(ctx context.Context, command string, args ...string) error {
	_, err := Run(ctx, Options{Command: command, Args: args})
	return err
}

// Probe runs a command purely for its exit status and output. The returned
// bool is "exited zero"; errors other than non-zero exits still surface.
func Probe(ctx context.Context, command string, args ...string) (string, bool) {
	out, err := Run(ctx, Options{Command: command, Args: args, Capture: true, Probe: true})
	return out, err == nil
}
