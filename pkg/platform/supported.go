// pkg/platform/supported.go

package platform

import (
	cerr "github.com/cockroachdb/errors"
	goversion "github.com/hashicorp/go-version"
)

// minimum supported version per distribution. Anything older is missing
// packages the puppet manifests expect (python, postgres, rabbitmq
// versions); anything unknown we refuse outright rather than half-install.
var supportedFloors = map[string]string{
	"ubuntu":    "20.04",
	"debian":    "11",
	"rocky":     "9",
	"almalinux": "9",
	"centos":    "9", // CentOS Stream
}

// CheckSupported validates the detected OS against the support matrix.
// The returned error carries remediation text and is safe to re-run after
// the operator switches hosts.
func CheckSupported(r *OSRelease) error {
	floor, ok := supportedFloors[r.ID]
	if !ok {
		return cerr.WithHint(
			cerr.Newf("unsupported operating system: %s", describe(r)),
			"Supported: Ubuntu 20.04+, Debian 11+, Rocky/Alma/CentOS Stream 9+. "+
				"Install on a supported OS and re-run this installer.")
	}

	have, err := goversion.NewVersion(r.VersionID)
	if err != nil {
		return cerr.WithHint(
			cerr.Wrapf(err, "could not parse OS version %q for %s", r.VersionID, r.ID),
			"Your /etc/os-release looks damaged; fix it and re-run this installer.")
	}
	want := goversion.Must(goversion.NewVersion(floor))

	if have.LessThan(want) {
		return cerr.WithHint(
			cerr.Newf("%s is too old: found %s, need %s or newer", r.ID, r.VersionID, floor),
			"Upgrade the OS (or reinstall on a newer release) and re-run this installer.")
	}
	return nil
}

func describe(r *OSRelease) string {
	if r.PrettyName != "" {
		return r.PrettyName
	}
	return r.ID + " " + r.VersionID
}
