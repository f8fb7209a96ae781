// pkg/services/nginx.go

package services

import (
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_err"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ActivateNginx syntax-checks the web server configuration and restarts
// the service. Validation failures almost always trace back to the TLS
// certificate pair, so the error says to look there first.
func ActivateNginx(rc *zulip_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "nginx",
		Args:    []string{"-t"},
		Capture: true,
		Probe:   true,
	})
	if err != nil {
		summary := zulip_err.ExtractSummary(out, 2)
		return zulip_err.NewExpectedError(cerr.WithHint(
			cerr.Wrapf(err, "nginx configuration validation failed: %s", summary),
			"The usual cause is a missing or unreadable certificate; check\n"+
				"  /etc/ssl/certs/zulip.combined-chain.crt\n"+
				"  /etc/ssl/private/zulip.key\n"+
				"then re-run this installer; it is safe to re-run."))
	}

	logger.Info("nginx configuration valid; restarting")
	if err := execute.RunSimple(rc.Ctx, "systemctl", "restart", "nginx"); err != nil {
		return cerr.Wrap(err, "restart nginx")
	}

	logger.Info("nginx restarted", zap.String("service", "nginx"))
	return nil
}
