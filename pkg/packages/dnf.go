// pkg/packages/dnf.go

package packages

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
)

// DnfManager drives dnf on RHEL-family systems.
type DnfManager struct{}

func (m *DnfManager) Name() string { return "dnf" }

// DistUpgrade is a no-op: dnf install already pulls current versions, so a
// separate upgrade pass would just repeat the work.
func (m *DnfManager) DistUpgrade(ctx context.Context) error {
	return nil
}

func (m *DnfManager) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install", "-y"}, pkgs...)
	if _, err := execute.Run(ctx, execute.Options{
		Command: "dnf",
		Args:    args,
	}); err != nil {
		return networkHint(err)
	}
	return nil
}

// Status asks rpm directly. rpm has no dpkg-style status vocabulary, so a
// missing package is normalized to the "not-installed" form Installed
// expects.
func (m *DnfManager) Status(ctx context.Context, pkg string) string {
	out, ok := execute.Probe(ctx, "rpm", "--query", pkg)
	if !ok {
		return "not-installed"
	}
	return out
}
