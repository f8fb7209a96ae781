// pkg/packages/packages_test.go

package packages

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstalled(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"installed", "install ok installed", true},
		{"config files remain", "deinstall ok config-files", true},
		{"not installed", "unknown ok not-installed", false},
		{"bare not-installed", "not-installed", false},
		{"empty status counts as installed", "", true},
		{"whitespace only", "   \n", true},
		{"trailing whitespace around not-installed", "unknown ok not-installed\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Installed(tt.status))
		})
	}
}

func TestNewManager(t *testing.T) {
	m, err := NewManager(platform.FamilyDebian, []string{"-o", "APT::Get::Assume-Yes=true"})
	require.NoError(t, err)
	assert.Equal(t, "apt-get", m.Name())

	m, err = NewManager(platform.FamilyRHEL, nil)
	require.NoError(t, err)
	assert.Equal(t, "dnf", m.Name())

	_, err = NewManager(platform.FamilyUnknown, nil)
	require.Error(t, err)
}
