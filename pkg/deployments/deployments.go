// pkg/deployments/deployments.go
//
// Versioned deployment directories. Each install or upgrade becomes an
// immutable snapshot under the deployments root, activated by rewiring the
// `next` and `current` symlinks.

package deployments

import (
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	// DefaultRoot is the service account's deployments directory.
	DefaultRoot = "/home/zulip/deployments"

	// TimestampFormat names deployment directories so `ls` sorts them in
	// activation order.
	TimestampFormat = "2006-01-02-15-04-05"

	// GeneratedAssetsMarker distinguishes a pre-built release tarball from
	// a from-source checkout. Its absence means static assets still need
	// building. The heuristic is inherited from the original tooling and
	// kept as-is.
	GeneratedAssetsMarker = "prod-static/serve"
)

// Options configures one deployment rotation.
type Options struct {
	Root         string // deployments root, DefaultRoot in production
	Checkout     string // the unpacked release / git checkout to move
	SettingsPath string // /etc/zulip/settings.py
	Now          time.Time
}

// Rotate moves the checkout into a fresh versioned directory, rewires the
// next and current symlinks at it, and re-links the settings file into the
// new location. Returns the new deployment path.
func Rotate(rc *zulip_io.RuntimeContext, opts Options) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if opts.Root == "" {
		opts.Root = DefaultRoot
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	deployPath := filepath.Join(opts.Root, opts.Now.Format(TimestampFormat))
	if err := os.MkdirAll(opts.Root, 0o755); err != nil {
		return "", cerr.Wrapf(err, "create deployments root %s", opts.Root)
	}

	logger.Info("Activating new deployment",
		zap.String("from", opts.Checkout),
		zap.String("to", deployPath))

	if err := os.Rename(opts.Checkout, deployPath); err != nil {
		return "", cerr.Wrapf(err, "move checkout into %s", deployPath)
	}

	for _, link := range []string{"next", "current"} {
		if err := relink(filepath.Join(opts.Root, link), deployPath); err != nil {
			return "", err
		}
	}

	// The deployment reads its production settings through this link.
	prodSettings := filepath.Join(deployPath, "zproject", "prod_settings.py")
	if err := relink(prodSettings, opts.SettingsPath); err != nil {
		return "", err
	}

	return deployPath, nil
}

// relink atomically repoints a symlink, creating it if absent. Equivalent
// to ln -nsf.
func relink(linkPath, target string) error {
	if err := os.Remove(linkPath); err != nil && !os.IsNotExist(err) {
		return cerr.Wrapf(err, "remove old link %s", linkPath)
	}
	if err := os.Symlink(target, linkPath); err != nil {
		return cerr.Wrapf(err, "link %s -> %s", linkPath, target)
	}
	return nil
}

// HasGeneratedAssets reports whether the deployment shipped pre-built
// static assets.
func HasGeneratedAssets(deployPath string) bool {
	_, err := os.Stat(filepath.Join(deployPath, GeneratedAssetsMarker))
	return err == nil
}
