// pkg/services/rabbitmq.go

package services

import (
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_err"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// ActivateRabbitMQ verifies the broker is healthy and then applies the
// release's broker configuration (users, vhost, permissions).
func ActivateRabbitMQ(rc *zulip_io.RuntimeContext, deployRoot string) error {
	logger := otelzap.Ctx(rc.Ctx)

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "rabbitmqctl",
		Args:    []string{"status"},
		Capture: true,
		Probe:   true,
	})
	if err != nil {
		summary := zulip_err.ExtractSummary(out, 2)
		return zulip_err.NewExpectedError(cerr.WithHint(
			cerr.Wrapf(err, "rabbitmq is not healthy: %s", summary),
			"RabbitMQ requires the hostname to resolve; in VMs and containers the\n"+
				"usual culprit is /etc/hosts missing an entry for this machine's\n"+
				"hostname. Fix name resolution and re-run this installer."))
	}

	logger.Info("rabbitmq healthy; applying broker configuration")
	return execute.RunSimple(rc.Ctx,
		filepath.Join(deployRoot, "scripts", "setup", "configure-rabbitmq"))
}
