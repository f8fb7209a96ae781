// pkg/features/features.go
//
// Post-convergence feature detection: one pure pass over filesystem
// markers, consumed by the activation steps as data. Nothing re-probes.

package features

import (
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
)

// Detected records which optional services the convergence run installed.
type Detected struct {
	HasNginx     bool
	HasAppServer bool
	HasRabbitMQ  bool
	HasPostgres  bool
}

// Marker files the puppet manifests drop for each service.
const (
	nginxMarker     = "/etc/init.d/nginx"
	appServerMarker = "/etc/supervisor/conf.d/zulip.conf"
	rabbitMQMarker  = "/etc/cron.d/rabbitmq-numconsumers"
	postgresMarker  = "/etc/init.d/postgresql"
)

// Detect probes the filesystem under root (pass "/" in production) and
// applies the deployment-type overrides.
func Detect(cfg *config.InstallConfig, root string) Detected {
	d := Detected{
		HasNginx:     exists(root, nginxMarker),
		HasAppServer: exists(root, appServerMarker),
		HasRabbitMQ:  exists(root, rabbitMQMarker),
		HasPostgres:  exists(root, postgresMarker),
	}

	// A containerized deployment runs only the application server; the
	// image provides everything else regardless of what probes found.
	if cfg.DeployType == config.DeployDockerVoyager {
		d = Detected{HasAppServer: true}
	}

	// The database living elsewhere still needs its activation step.
	if cfg.RemotePostgres {
		d.HasPostgres = true
	}

	return d
}

func exists(root, marker string) bool {
	_, err := os.Stat(filepath.Join(root, marker))
	return err == nil
}
