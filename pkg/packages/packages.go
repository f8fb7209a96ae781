// pkg/packages/packages.go
//
// Platform package installation behind a capability interface so the
// activation flow can be exercised against fakes.

package packages

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/platform"
	cerr "github.com/cockroachdb/errors"
)

// BasePackages is what the installer itself needs before the puppet run
// takes over: puppet to converge, git for from-source deploys, crudini for
// later edits to the machine config.
var BasePackages = []string{"puppet", "git", "curl", "jq", "crudini"}

// Manager abstracts the platform package manager.
type Manager interface {
	// Name identifies the underlying tool for log messages.
	Name() string

	// DistUpgrade brings the whole system current. A no-op where the
	// install step already upgrades (dnf).
	DistUpgrade(ctx context.Context) error

	// Install installs the given packages, fatal on failure.
	Install(ctx context.Context, pkgs ...string) error

	// Status returns the raw package status string, empty when the query
	// produced nothing. Interpret with Installed.
	Status(ctx context.Context, pkg string) string
}

// NewManager selects the implementation for the detected OS family.
func NewManager(family platform.Family, aptOptions []string) (Manager, error) {
	switch family {
	case platform.FamilyDebian:
		return &AptManager{ExtraOptions: aptOptions}, nil
	case platform.FamilyRHEL:
		return &DnfManager{}, nil
	default:
		return nil, cerr.Newf("no package manager for OS family %q", family)
	}
}

// Installed interprets a package status string. dpkg reports states like
// "install ok installed", "deinstall ok config-files" and
// "unknown ok not-installed"; only the last means the package is absent.
// An empty status (query produced nothing) does not prove absence either,
// so it counts as installed and the conservative path wins.
func Installed(status string) bool {
	return !strings.HasSuffix(strings.TrimSpace(status), "not-installed")
}
