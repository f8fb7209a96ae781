// pkg/zulipconf/settings_test.go

package zulipconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsTemplate = `# Zulip settings template
EXTERNAL_HOST = "zulip.example.com"

# The email of the server administrator.
ZULIP_ADMINISTRATOR = "zulip-admin@example.com"

EMAIL_HOST = ""
`

func TestRewriteAssignment(t *testing.T) {
	got := RewriteAssignment(settingsTemplate, "EXTERNAL_HOST", `"chat.example.org"`)
	assert.Contains(t, got, `EXTERNAL_HOST = "chat.example.org"`)
	assert.NotContains(t, got, "zulip.example.com")
	// Unrelated lines stay intact.
	assert.Contains(t, got, `ZULIP_ADMINISTRATOR = "zulip-admin@example.com"`)
	assert.Contains(t, got, "# Zulip settings template")
}

func TestRewriteAssignmentIgnoresNonAssignments(t *testing.T) {
	content := "EXTERNAL_HOST_HINT = \"x\"\n# EXTERNAL_HOST is set below\n"
	got := RewriteAssignment(content, "EXTERNAL_HOST", `"y"`)
	assert.Equal(t, content, got)
}

func TestMaterializeRewritesSuppliedValues(t *testing.T) {
	dir := t.TempDir()
	w := &SettingsWriter{
		TemplatePath: filepath.Join(dir, "prod_settings_template.py"),
		SettingsPath: filepath.Join(dir, "etc", "settings.py"),
	}
	require.NoError(t, os.WriteFile(w.TemplatePath, []byte(settingsTemplate), 0o644))

	cfg := voyagerConfig()
	require.NoError(t, w.Materialize(testRC(t), cfg))

	data, err := os.ReadFile(w.SettingsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `EXTERNAL_HOST = "chat.example.org"`)
	assert.Contains(t, string(data), `ZULIP_ADMINISTRATOR = "admin@example.org"`)
}

func TestMaterializeKeepsPlaceholdersWhenUnset(t *testing.T) {
	dir := t.TempDir()
	w := &SettingsWriter{
		TemplatePath: filepath.Join(dir, "prod_settings_template.py"),
		SettingsPath: filepath.Join(dir, "settings.py"),
	}
	require.NoError(t, os.WriteFile(w.TemplatePath, []byte(settingsTemplate), 0o644))

	cfg := voyagerConfig()
	cfg.Hostname = ""
	cfg.Email = ""
	require.NoError(t, w.Materialize(testRC(t), cfg))

	data, err := os.ReadFile(w.SettingsPath)
	require.NoError(t, err)
	assert.Equal(t, settingsTemplate, string(data))
}

func TestMaterializeRespectsNoOverwrite(t *testing.T) {
	dir := t.TempDir()
	w := &SettingsWriter{
		TemplatePath: filepath.Join(dir, "prod_settings_template.py"),
		SettingsPath: filepath.Join(dir, "settings.py"),
	}
	require.NoError(t, os.WriteFile(w.TemplatePath, []byte(settingsTemplate), 0o644))
	require.NoError(t, os.WriteFile(w.SettingsPath, []byte("# locally edited\n"), 0o644))

	cfg := voyagerConfig()
	cfg.NoOverwriteSettings = true
	require.NoError(t, w.Materialize(testRC(t), cfg))

	data, err := os.ReadFile(w.SettingsPath)
	require.NoError(t, err)
	assert.Equal(t, "# locally edited\n", string(data))
}
