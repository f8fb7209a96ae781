// pkg/services/postgres.go

package services

import (
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// InitPostgresDB creates the database, role and extensions via the
// release's initializer. Deferred to the operator entirely when the
// database is remote or --no-init-db was passed.
func InitPostgresDB(rc *zulip_io.RuntimeContext, deployRoot string) error {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Initializing PostgreSQL database")
	return execute.RunSimple(rc.Ctx,
		filepath.Join(deployRoot, "scripts", "setup", "postgres-init-db"))
}

// InitializeDatabase runs the application-level first-time setup (schema
// migration, internal realms) as the service account.
func InitializeDatabase(rc *zulip_io.RuntimeContext, deployRoot string) error {
	return RunAsServiceUser(rc, deployRoot,
		filepath.Join(deployRoot, "scripts", "setup", "initialize-database"), "--quiet")
}

// GenerateRealmCreationLink prints the one-time link the operator opens to
// create the first organization.
func GenerateRealmCreationLink(rc *zulip_io.RuntimeContext, deployRoot string) error {
	return RunAsServiceUser(rc, deployRoot,
		filepath.Join(deployRoot, "manage.py"), "generate_realm_creation_link")
}
