// pkg/zulipconf/zulipconf.go
//
// Emits /etc/zulip/zulip.conf, the grouped key/value file the puppet
// manifests and runtime tooling read to learn what this machine is.

package zulipconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/packages"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultPath is where everything else on the machine looks for the file.
const DefaultPath = "/etc/zulip/zulip.conf"

// RabbitMQNodename pins the broker's node identity so reinstalls and
// hostname changes do not orphan the mnesia database.
const RabbitMQNodename = "zulip@localhost"

// Emitter writes the machine configuration file.
type Emitter struct {
	Path     string
	Packages packages.Manager
}

// Write renders the machine config. The [rabbitmq] section appears only
// when the broker package is present; the [certbot] section only when
// certbot issued the certificate and should keep renewing it.
func (e *Emitter) Write(rc *zulip_io.RuntimeContext, cfg *config.InstallConfig) error {
	logger := otelzap.Ctx(rc.Ctx)
	path := e.Path
	if path == "" {
		path = DefaultPath
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[machine]\n")
	fmt.Fprintf(&b, "puppet_classes = %s\n", cfg.PuppetClasses)
	fmt.Fprintf(&b, "deploy_type = %s\n", cfg.DeployType)

	status := e.Packages.Status(rc.Ctx, "rabbitmq-server")
	if packages.Installed(status) {
		fmt.Fprintf(&b, "\n[rabbitmq]\n")
		fmt.Fprintf(&b, "nodename = %s\n", RabbitMQNodename)
	} else {
		logger.Debug("rabbitmq-server not installed; omitting [rabbitmq] section",
			zap.String("status", status))
	}

	if cfg.CertMode == config.CertModeCertbot {
		fmt.Fprintf(&b, "\n[certbot]\n")
		fmt.Fprintf(&b, "auto_renew = yes\n")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cerr.Wrapf(err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return cerr.Wrapf(err, "write %s", path)
	}

	logger.Info("Machine configuration written", zap.String("path", path))
	return nil
}

// SetMissingDictionaries records that the PostgreSQL install lacks the
// dictionary files full-text search wants. Delegated to crudini (installed
// with the base packages) so existing sections and comments survive.
func SetMissingDictionaries(rc *zulip_io.RuntimeContext, path string) error {
	if path == "" {
		path = DefaultPath
	}
	return execute.RunSimple(rc.Ctx,
		"crudini", "--set", path, "postgresql", "missing_dictionaries", "true")
}
