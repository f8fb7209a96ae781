// pkg/services/activate.go

package services

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/features"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Activate walks the detected services in dependency order and performs
// each one's idempotent first-run step. Returns the final deployment path
// (it moves when the app server rotation runs).
func Activate(rc *zulip_io.RuntimeContext, cfg *config.InstallConfig, detected features.Detected, checkout, settingsPath string) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Activating services",
		zap.Bool("nginx", detected.HasNginx),
		zap.Bool("app_server", detected.HasAppServer),
		zap.Bool("rabbitmq", detected.HasRabbitMQ),
		zap.Bool("postgres", detected.HasPostgres))

	deployRoot := checkout

	if detected.HasNginx {
		if err := ActivateNginx(rc); err != nil {
			return deployRoot, err
		}
	}

	if detected.HasRabbitMQ {
		if err := ActivateRabbitMQ(rc, deployRoot); err != nil {
			return deployRoot, err
		}
	}

	if detected.HasPostgres && !cfg.RemotePostgres && !cfg.NoInitDB {
		if err := InitPostgresDB(rc, deployRoot); err != nil {
			return deployRoot, err
		}
	}

	if detected.HasAppServer {
		deployPath, err := ActivateAppServer(rc, cfg, checkout, settingsPath)
		if err != nil {
			return deployRoot, err
		}
		deployRoot = deployPath
	}

	return deployRoot, nil
}

// Finalize runs the first-time application setup, or stops deliberately
// early when the operator asked to handle the database themselves.
func Finalize(rc *zulip_io.RuntimeContext, cfg *config.InstallConfig, deployRoot string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := FixSupervisorSocket(rc); err != nil {
		return err
	}

	if reason, stop := earlyStopReason(cfg); stop {
		logger.Info("Deliberate early stop before database initialization",
			zap.String("reason", reason))
		fmt.Printf("Stopping because %s was passed.\n", reason)
		fmt.Printf("To complete the installation, configure the database and run:\n")
		fmt.Printf("  su %s -c '%s/scripts/setup/initialize-database'\n", ServiceUser, deployRoot)
		fmt.Printf("  su %s -c '%s/manage.py generate_realm_creation_link'\n", ServiceUser, deployRoot)
		return nil
	}

	if err := InitializeDatabase(rc, deployRoot); err != nil {
		return err
	}
	return GenerateRealmCreationLink(rc, deployRoot)
}

// earlyStopReason reports whether database initialization was deferred
// and which flag to name. --remote-postgres wins when both are set: it
// is the stronger claim about where the database lives.
func earlyStopReason(cfg *config.InstallConfig) (string, bool) {
	if cfg.RemotePostgres {
		return "--remote-postgres", true
	}
	if cfg.NoInitDB {
		return "--no-init-db", true
	}
	return "", false
}
