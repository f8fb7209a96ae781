// pkg/puppet/puppet.go
//
// One synchronous, masterless convergence run. puppet apply runs in the
// foreground and exits when done, so no background agent is ever forked.

package puppet

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Apply converges the machine to the classes recorded in the machine
// config. The modules ship inside the release tree, so the run resolves
// them against the checkout. Failure is fatal to the whole install:
// later steps probe for artifacts this run creates.
func Apply(rc *zulip_io.RuntimeContext, cfg *config.InstallConfig, checkout string) error {
	logger := otelzap.Ctx(rc.Ctx)

	manifest := Manifest(cfg.PuppetClasses)
	logger.Info("Starting puppet convergence run",
		zap.String("classes", cfg.PuppetClasses),
		zap.String("checkout", checkout))

	// --detailed-exitcodes: 0 = no changes, 2 = changes applied; both are
	// success. Everything else means the catalog failed.
	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "puppet",
		Args:    ApplyArgs(checkout, manifest),
		Probe:   true,
	})
	if err != nil {
		var exitErr *exec.ExitError
		if cerr.As(err, &exitErr) && exitErr.ExitCode() == 2 {
			logger.Info("Puppet applied changes successfully")
			return nil
		}
		return cerr.Wrapf(err, "puppet convergence failed: %s", strings.TrimSpace(out))
	}

	logger.Info("Puppet run completed with no changes")
	return nil
}

// ApplyArgs builds the puppet apply invocation for one convergence run
// against the modules shipped in the checkout.
func ApplyArgs(checkout, manifest string) []string {
	return []string{
		"apply",
		"--detailed-exitcodes",
		"--modulepath", filepath.Join(checkout, "puppet"),
		"-e", manifest,
	}
}

// Manifest renders the comma-separated class list into an inline manifest.
func Manifest(puppetClasses string) string {
	var b strings.Builder
	for _, class := range strings.Split(puppetClasses, ",") {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		fmt.Fprintf(&b, "class { '%s': }\n", class)
	}
	return b.String()
}
