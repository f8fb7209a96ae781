// pkg/packages/apt.go

package packages

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/execute"
	cerr "github.com/cockroachdb/errors"
)

// AptManager drives apt-get on Debian-family systems.
type AptManager struct {
	// ExtraOptions come from the APT_OPTIONS environment override, e.g.
	// -o Dpkg::Options::=--force-confnew for unattended runs.
	ExtraOptions []string
}

func (m *AptManager) Name() string { return "apt-get" }

var noninteractive = []string{"DEBIAN_FRONTEND=noninteractive"}

// DistUpgrade refreshes the index and upgrades everything already
// installed. Skippable via --no-dist-upgrade; without it a stale base image
// tends to break the puppet run halfway through.
func (m *AptManager) DistUpgrade(ctx context.Context) error {
	if _, err := execute.Run(ctx, execute.Options{
		Command: "apt-get",
		Args:    []string{"update"},
		Env:     noninteractive,
	}); err != nil {
		return networkHint(err)
	}

	args := append([]string{"-y"}, m.ExtraOptions...)
	args = append(args, "dist-upgrade")
	if _, err := execute.Run(ctx, execute.Options{
		Command: "apt-get",
		Args:    args,
		Env:     noninteractive,
	}); err != nil {
		return networkHint(err)
	}
	return nil
}

func (m *AptManager) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"-y"}, m.ExtraOptions...)
	args = append(args, "install")
	args = append(args, pkgs...)
	if _, err := execute.Run(ctx, execute.Options{
		Command: "apt-get",
		Args:    args,
		Env:     noninteractive,
	}); err != nil {
		return networkHint(err)
	}
	return nil
}

// Status queries dpkg for the package state. A failed query is probe data,
// not an error: the raw (possibly empty) output is returned for Installed
// to interpret.
func (m *AptManager) Status(ctx context.Context, pkg string) string {
	out, _ := execute.Probe(ctx, "dpkg-query", "--show", "--showformat=${Status}", pkg)
	return out
}

func networkHint(err error) error {
	return cerr.WithHint(err,
		"Package installation failed. This is usually a network or mirror problem; "+
			"check connectivity and re-run this installer.")
}
