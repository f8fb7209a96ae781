// pkg/zulipconf/settings.go

package zulipconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SettingsWriter materializes the application settings file from the
// template shipped in the release, rewriting the two assignments the
// installer knows about. Only deployments with a web-facing application
// server get one.
type SettingsWriter struct {
	TemplatePath string // <deployRoot>/zproject/prod_settings_template.py
	SettingsPath string // /etc/zulip/settings.py
}

// Materialize writes the settings file. An existing file is left alone
// when overwrite was suppressed; the two known assignments are rewritten
// only when the corresponding option was actually supplied.
func (w *SettingsWriter) Materialize(rc *zulip_io.RuntimeContext, cfg *config.InstallConfig) error {
	logger := otelzap.Ctx(rc.Ctx)

	if _, err := os.Stat(w.SettingsPath); err == nil && cfg.NoOverwriteSettings {
		logger.Info("Keeping existing settings file",
			zap.String("path", w.SettingsPath))
		return nil
	}

	data, err := os.ReadFile(w.TemplatePath)
	if err != nil {
		return cerr.Wrapf(err, "read settings template %s", w.TemplatePath)
	}

	content := string(data)
	if cfg.Hostname != "" {
		content = RewriteAssignment(content, "EXTERNAL_HOST", fmt.Sprintf("%q", cfg.Hostname))
	}
	if cfg.Email != "" {
		content = RewriteAssignment(content, "ZULIP_ADMINISTRATOR", fmt.Sprintf("%q", cfg.Email))
	}

	if err := os.MkdirAll(filepath.Dir(w.SettingsPath), 0o755); err != nil {
		return cerr.Wrapf(err, "create %s", filepath.Dir(w.SettingsPath))
	}
	if err := os.WriteFile(w.SettingsPath, []byte(content), 0o644); err != nil {
		return cerr.Wrapf(err, "write %s", w.SettingsPath)
	}

	logger.Info("Settings file written", zap.String("path", w.SettingsPath))
	return nil
}

// RewriteAssignment replaces the value of a top-level `NAME = ...`
// assignment, leaving every other line byte-for-byte intact.
func RewriteAssignment(content, name, value string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, name) {
			rest := strings.TrimSpace(strings.TrimPrefix(trimmed, name))
			if strings.HasPrefix(rest, "=") {
				lines[i] = fmt.Sprintf("%s = %s", name, value)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// GenerateSecrets delegates to the release's secret generator, which
// fills /etc/zulip/zulip-secrets.conf with fresh keys.
func GenerateSecrets(rc *zulip_io.RuntimeContext, deployRoot string) error {
	return execute.RunSimple(rc.Ctx,
		filepath.Join(deployRoot, "scripts", "setup", "generate_secrets.py"),
		"--production")
}
