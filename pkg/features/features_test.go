// pkg/features/features_test.go

package features

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, marker string) {
	t.Helper()
	path := filepath.Join(root, marker)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestDetectProbesMarkers(t *testing.T) {
	root := t.TempDir()
	touch(t, root, nginxMarker)
	touch(t, root, appServerMarker)

	cfg := &config.InstallConfig{DeployType: config.DeployVoyager}
	d := Detect(cfg, root)

	assert.True(t, d.HasNginx)
	assert.True(t, d.HasAppServer)
	assert.False(t, d.HasRabbitMQ)
	assert.False(t, d.HasPostgres)
}

func TestDetectAllMarkers(t *testing.T) {
	root := t.TempDir()
	for _, m := range []string{nginxMarker, appServerMarker, rabbitMQMarker, postgresMarker} {
		touch(t, root, m)
	}

	d := Detect(&config.InstallConfig{DeployType: config.DeployVoyager}, root)
	assert.Equal(t, Detected{HasNginx: true, HasAppServer: true, HasRabbitMQ: true, HasPostgres: true}, d)
}

func TestDetectDockerRunsAppServerOnly(t *testing.T) {
	root := t.TempDir()
	for _, m := range []string{nginxMarker, rabbitMQMarker, postgresMarker} {
		touch(t, root, m)
	}

	cfg := &config.InstallConfig{DeployType: config.DeployDockerVoyager}
	d := Detect(cfg, root)

	assert.Equal(t, Detected{HasAppServer: true}, d)
}

func TestDetectRemotePostgresForcesDatabaseStep(t *testing.T) {
	cfg := &config.InstallConfig{DeployType: config.DeployVoyager, RemotePostgres: true}
	d := Detect(cfg, t.TempDir())

	assert.True(t, d.HasPostgres)
	assert.False(t, d.HasNginx)
}
