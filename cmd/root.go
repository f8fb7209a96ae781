/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/certs"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/features"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/packages"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/puppet"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/services"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_cli"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_err"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulipconf"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the installer itself: one command, run once per machine.
var RootCmd = &cobra.Command{
	Use:   "zulip-install --hostname=<host> --email=<addr> [flags]",
	Short: "Install a self-hosted Zulip server on this machine",
	Long: `zulip-install provisions this machine to run a self-hosted Zulip server:
it validates the host, installs OS packages, configures TLS, writes the
machine configuration, runs the puppet convergence, and starts services.

Every fatal check explains how to fix the problem; after fixing it, just
re-run this installer.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          zulip_cli.Wrap(runInstall),
}

func init() {
	config.AddFlags(RootCmd.Flags())
	RootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cerr.Mark(err, config.ErrUsage)
	})
}

func runInstall(rc *zulip_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	log := rc.Log

	cfg, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info("Configuration validated",
		zap.String("hostname", cfg.Hostname),
		zap.String("deploy_type", cfg.DeployType),
		zap.String("cert_mode", cfg.CertMode.String()))

	if cfg.CACertPath != "" {
		// Downloads inside the delegated helpers (pip, certbot) honor this.
		if err := os.Setenv("CUSTOM_CA_CERTIFICATES", cfg.CACertPath); err != nil {
			return cerr.Wrap(err, "set CUSTOM_CA_CERTIFICATES")
		}
	}

	release, err := platform.Detect()
	if err != nil {
		return err
	}

	if err := preflight.Run(rc, cfg, release); err != nil {
		return err
	}

	pm, err := packages.NewManager(release.DetectFamily(), cfg.AptOptions)
	if err != nil {
		return zulip_err.NewExpectedError(err)
	}

	if !cfg.NoDistUpgrade {
		if err := pm.DistUpgrade(rc.Ctx); err != nil {
			return err
		}
	}
	pkgs := append([]string{}, packages.BasePackages...)
	pkgs = append(pkgs, cfg.ExtraPackages...)
	if err := pm.Install(rc.Ctx, pkgs...); err != nil {
		return err
	}

	// The release tree this installer was unpacked from.
	checkout, err := os.Getwd()
	if err != nil {
		return cerr.Wrap(err, "determine release directory")
	}

	if err := certs.Provision(rc, cfg, checkout); err != nil {
		return err
	}

	emitter := &zulipconf.Emitter{Packages: pm}
	if err := emitter.Write(rc, cfg); err != nil {
		return err
	}
	if cfg.MissingDictionaries {
		if err := zulipconf.SetMissingDictionaries(rc, ""); err != nil {
			return err
		}
	}

	// Both deployment types include the web-facing application server.
	settingsPath := "/etc/zulip/settings.py"
	writer := &zulipconf.SettingsWriter{
		TemplatePath: checkout + "/zproject/prod_settings_template.py",
		SettingsPath: settingsPath,
	}
	if err := writer.Materialize(rc, cfg); err != nil {
		return err
	}
	if err := zulipconf.GenerateSecrets(rc, checkout); err != nil {
		return err
	}

	if err := puppet.Apply(rc, cfg, checkout); err != nil {
		return err
	}

	detected := features.Detect(cfg, "/")
	deployRoot, err := services.Activate(rc, cfg, detected, checkout, settingsPath)
	if err != nil {
		return err
	}

	if err := services.Finalize(rc, cfg, deployRoot); err != nil {
		return err
	}

	log.Info("Installation complete")
	return nil
}

// Execute runs the installer and maps errors onto the exit-code contract:
// 0 on success (including the deliberate early stop), 1 on everything else.
func Execute() {
	defer func() {
		_ = logger.Sync()
	}()

	if err := RootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", firstLine(err.Error()))

	for _, hint := range cerr.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "\n%s\n", hint)
	}

	if cerr.Is(err, config.ErrUsage) {
		fmt.Fprintf(os.Stderr, "\n%s", RootCmd.UsageString())
		return
	}

	if !zulip_err.IsExpectedUserError(err) {
		fmt.Fprintln(os.Stderr, "\nDetails are in the install log under /var/log/zulip.")
	}
}

// firstLine trims a wrapped error chain down to its headline for the
// operator; the full chain still lands in the log.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
