// pkg/services/appserver.go

package services

import (
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/deployments"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ServiceUser owns the application at runtime.
const ServiceUser = "zulip"

// ProdStaticDir is where nginx serves built assets from.
const ProdStaticDir = "/home/zulip/prod-static"

// ActivateAppServer turns the current checkout into the live deployment:
// versioned directory, symlink rewiring, static assets, ownership.
// Returns the new deployment path; later steps must use it, because the
// old checkout path no longer exists.
func ActivateAppServer(rc *zulip_io.RuntimeContext, cfg *config.InstallConfig, checkout, settingsPath string) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	deployPath, err := deployments.Rotate(rc, deployments.Options{
		Checkout:     checkout,
		SettingsPath: settingsPath,
	})
	if err != nil {
		return "", err
	}

	prebuilt := deployments.HasGeneratedAssets(deployPath)
	if prebuilt {
		if err := execute.RunSimple(rc.Ctx, "cp", "-rT",
			filepath.Join(deployPath, deployments.GeneratedAssetsMarker),
			ProdStaticDir); err != nil {
			return "", cerr.Wrap(err, "copy packaged static assets")
		}
	}

	for _, dir := range []string{deployPath, filepath.Dir(deployPath), "/var/log/zulip"} {
		if err := execute.RunSimple(rc.Ctx, "chown", "-R",
			ServiceUser+":"+ServiceUser, dir); err != nil {
			return "", cerr.Wrapf(err, "fix ownership of %s", dir)
		}
	}

	if cfg.VirtualenvNeeded {
		if err := RunAsServiceUser(rc, deployPath,
			"./scripts/lib/create-production-venv", deployPath); err != nil {
			return "", cerr.Wrap(err, "create production virtualenv")
		}
	}

	// No generated-assets marker means a from-source checkout: build the
	// assets now, as the service account.
	if !prebuilt {
		logger.Info("From-source checkout detected; building static assets",
			zap.String("deploy_path", deployPath))
		if err := RunAsServiceUser(rc, deployPath, "./tools/update-prod-static"); err != nil {
			return "", cerr.Wrap(err, "build static assets")
		}
	}

	logger.Info("Application server deployment activated",
		zap.String("deploy_path", deployPath))
	return deployPath, nil
}

// RunAsServiceUser executes a command as the unprivileged service account,
// with the deployment as working directory. runuser keeps the args-only
// execution contract (no shell).
func RunAsServiceUser(rc *zulip_io.RuntimeContext, dir, command string, args ...string) error {
	runArgs := append([]string{"-u", ServiceUser, "--", command}, args...)
	_, err := execute.Run(rc.Ctx, execute.Options{
		Command: "runuser",
		Args:    runArgs,
		Dir:     dir,
	})
	return err
}

// FixSupervisorSocket hands the process-coordination socket to the service
// account if the supervisor already created it.
func FixSupervisorSocket(rc *zulip_io.RuntimeContext) error {
	const socket = "/var/run/supervisor.sock"
	if _, err := os.Stat(socket); err != nil {
		return nil
	}
	return execute.RunSimple(rc.Ctx, "chown", ServiceUser+":"+ServiceUser, socket)
}
