// pkg/zulip_io/context.go

package zulip_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/telemetry"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_err"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RuntimeContext carries the context, logger and span for one command
// invocation. Constructed once in the CLI wrapper, passed explicitly to
// every component; never read implicitly through globals.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Span       trace.Span
	Timestamp  time.Time
	Command    string
	Attributes map[string]string
}

// NewContext sets up tracing and a named logger for one command run.
func NewContext(ctx context.Context, cmdName string) *RuntimeContext {
	ctx, span := telemetry.Start(ctx, cmdName)
	traceID := span.SpanContext().TraceID().String()

	log := zap.L().With(
		zap.String("command", cmdName),
		zap.String("trace_id", traceID),
	).Named(cmdName)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        log,
		Timestamp:  time.Now(),
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// End logs the outcome, records a final span, and flushes.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	success := (*errPtr == nil)

	if success {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(*errPtr))
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("args", strings.Join(os.Args[1:], " ")),
		attribute.String("error_type", classifyError(*errPtr)),
	}

	_, span := telemetry.Start(rc.Ctx, rc.Command, attrs...)
	span.End()

	_ = rc.Log.Sync()
}

// LogRuntimeExecutionContext records who is running us and from where.
// Installer bugs frequently turn out to be "ran without sudo".
func (rc *RuntimeContext) LogRuntimeExecutionContext() {
	if u, err := user.Current(); err == nil {
		rc.Log.Debug("user context",
			zap.String("username", u.Username),
			zap.String("uid", u.Uid),
			zap.String("gid", u.Gid),
			zap.Int("effective_uid", os.Geteuid()),
		)
	}
	if exe, err := os.Executable(); err == nil {
		rc.Log.Debug("executable path", zap.String("path", exe))
	}
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if zulip_err.IsExpectedUserError(err) {
		return "user"
	}
	return "system"
}
