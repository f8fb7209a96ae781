// pkg/platform/os_release.go

package platform

import (
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// Family groups distributions by package manager.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyDebian         // apt
	FamilyRHEL           // dnf
)

func (f Family) String() string {
	switch f {
	case FamilyDebian:
		return "debian"
	case FamilyRHEL:
		return "rhel"
	default:
		return "unknown"
	}
}

// OSRelease is the parsed /etc/os-release content we care about.
type OSRelease struct {
	ID         string // e.g. "ubuntu", "debian", "rocky"
	IDLike     string // e.g. "debian", "rhel fedora"
	VersionID  string // e.g. "24.04", "12", "9.3"
	Codename   string // e.g. "noble", "bookworm"
	PrettyName string // e.g. "Ubuntu 24.04.2 LTS"
}

const osReleasePath = "/etc/os-release"

// Detect reads and parses /etc/os-release.
func Detect() (*OSRelease, error) {
	data, err := os.ReadFile(osReleasePath)
	if err != nil {
		return nil, cerr.Wrapf(err, "failed to read %s", osReleasePath)
	}
	return ParseOSRelease(string(data)), nil
}

// ParseOSRelease parses os-release key=value content. Quotes around values
// are stripped; unknown keys are ignored.
func ParseOSRelease(content string) *OSRelease {
	info := &OSRelease{}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")

		switch key {
		case "ID":
			info.ID = strings.ToLower(value)
		case "ID_LIKE":
			info.IDLike = strings.ToLower(value)
		case "VERSION_ID":
			info.VersionID = value
		case "VERSION_CODENAME":
			info.Codename = value
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}

	return info
}

// DetectFamily maps a release onto its package-manager family.
func (r *OSRelease) DetectFamily() Family {
	switch r.ID {
	case "ubuntu", "debian":
		return FamilyDebian
	case "rhel", "centos", "rocky", "almalinux":
		return FamilyRHEL
	}
	if strings.Contains(r.IDLike, "debian") {
		return FamilyDebian
	}
	if strings.Contains(r.IDLike, "rhel") || strings.Contains(r.IDLike, "fedora") {
		return FamilyRHEL
	}
	return FamilyUnknown
}
