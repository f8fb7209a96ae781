// pkg/services/activate_test.go

package services

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRC(t *testing.T) *zulip_io.RuntimeContext {
	t.Helper()
	return zulip_io.NewContext(context.Background(), t.Name())
}

func TestEarlyStopReason(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.InstallConfig
		wantReason string
		wantStop   bool
	}{
		{"neither flag", config.InstallConfig{}, "", false},
		{"no-init-db", config.InstallConfig{NoInitDB: true}, "--no-init-db", true},
		{"remote-postgres", config.InstallConfig{RemotePostgres: true}, "--remote-postgres", true},
		{"both flags name remote-postgres", config.InstallConfig{NoInitDB: true, RemotePostgres: true}, "--remote-postgres", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, stop := earlyStopReason(&tt.cfg)
			assert.Equal(t, tt.wantStop, stop)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

// Finalize must return success without touching the database initializer
// when the operator deferred that step. Reaching InitializeDatabase here
// would shell out to a helper script that does not exist and fail.
func TestFinalizeStopsBeforeDatabaseInit(t *testing.T) {
	deployRoot := t.TempDir()

	for _, cfg := range []*config.InstallConfig{
		{NoInitDB: true},
		{RemotePostgres: true},
		{NoInitDB: true, RemotePostgres: true},
	} {
		require.NoError(t, Finalize(testRC(t), cfg, deployRoot))
	}
}
