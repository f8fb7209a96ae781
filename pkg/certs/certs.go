// pkg/certs/certs.go
//
// Certificate provisioning: exactly one of certbot, self-signed, or
// nothing (preflight already proved a usable pair exists on disk).

package certs

import (
	"os"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Where nginx expects the pair. The combined-chain name is what the puppet
// manifests template into the nginx config.
const (
	KeyPath  = "/etc/ssl/private/zulip.key"
	CertPath = "/etc/ssl/certs/zulip.combined-chain.crt"
)

// CheckExisting verifies the certificate pair is already on disk. Called
// from preflight when neither --certbot nor --self-signed-cert was chosen.
func CheckExisting() error {
	for _, path := range []string{KeyPath, CertPath} {
		if _, err := os.Stat(path); err != nil {
			return cerr.WithHint(
				cerr.Newf("no certificate found at %s", path),
				"Either install your certificate and key at\n"+
					"  "+CertPath+"\n"+
					"  "+KeyPath+"\n"+
					"or re-run this installer with --certbot or --self-signed-cert.")
		}
	}
	return nil
}

// Provision performs the certificate step selected on the command line.
// deployRoot is the unpacked release tree, which carries the certbot
// helper script.
func Provision(rc *zulip_io.RuntimeContext, cfg *config.InstallConfig, deployRoot string) error {
	logger := otelzap.Ctx(rc.Ctx)

	switch cfg.CertMode {
	case config.CertModeCertbot:
		logger.Info("Requesting certificate via certbot",
			zap.String("hostname", cfg.Hostname))
		return execute.RunSimple(rc.Ctx,
			deployRoot+"/scripts/setup/setup-certbot",
			"--email="+cfg.Email, cfg.Hostname)

	case config.CertModeSelfSigned:
		logger.Info("Generating self-signed certificate",
			zap.String("hostname", cfg.Hostname))
		return GenerateSelfSigned(rc, SelfSignedOptions{
			Hostname: cfg.Hostname,
			CertPath: CertPath,
			KeyPath:  KeyPath,
			ExistsOK: true,
		})

	default:
		logger.Debug("No certificate mode selected; using existing pair")
		return nil
	}
}
