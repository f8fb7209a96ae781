// pkg/config/config.go
//
// InstallConfig is the single source of truth for one installer run:
// constructed once from flags plus environment overrides, validated, then
// read-only. Components receive it explicitly; nothing reads os.Getenv
// after this point.

package config

import (
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Placeholder values from the example documentation. Operators copy-paste
// these verbatim often enough that they get their own error message.
const (
	PlaceholderHostname = "zulip.example.com"
	PlaceholderEmail    = "zulip-admin@example.com"
)

// Deployment types. Everything except dockervoyager is a single-node
// install; dockervoyager runs only the application server inside a
// container and leaves the rest to the image.
const (
	DeployVoyager       = "voyager"
	DeployDockerVoyager = "dockervoyager"
)

// ErrUsage marks errors that should be reported with the usage text.
var ErrUsage = cerr.New("usage error")

// CertMode selects how the TLS certificate is provisioned.
type CertMode int

const (
	CertModeNone CertMode = iota
	CertModeCertbot
	CertModeSelfSigned
)

func (m CertMode) String() string {
	switch m {
	case CertModeCertbot:
		return "certbot"
	case CertModeSelfSigned:
		return "self-signed"
	default:
		return "none"
	}
}

// InstallConfig holds every option an installer run honors.
type InstallConfig struct {
	Hostname string `validate:"omitempty,fqdn"`
	Email    string `validate:"omitempty,email"`

	CertMode   CertMode
	CACertPath string

	NoInitDB            bool
	NoDistUpgrade       bool
	NoOverwriteSettings bool
	MissingDictionaries bool
	RemotePostgres      bool

	// Environment-driven (DEPLOYMENT_TYPE, PUPPET_CLASSES, APT_OPTIONS,
	// ADDITIONAL_PACKAGES, VIRTUALENV_NEEDED).
	DeployType       string
	PuppetClasses    string
	AptOptions       []string
	ExtraPackages    []string
	VirtualenvNeeded bool
}

// flag names, long-form only
const (
	FlagHostname            = "hostname"
	FlagEmail               = "email"
	FlagCertbot             = "certbot"
	FlagSelfSignedCert      = "self-signed-cert"
	FlagNoInitDB            = "no-init-db"
	FlagCACert              = "cacert"
	FlagNoDistUpgrade       = "no-dist-upgrade"
	FlagNoOverwriteSettings = "no-overwrite-settings"
	FlagMissingDictionaries = "postgres-missing-dictionaries"
	FlagRemotePostgres      = "remote-postgres"
)

// AddFlags registers the installer's CLI surface on a flag set.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(FlagHostname, "", "External hostname clients will connect to")
	fs.String(FlagEmail, "", "Administrator email for error reports and certbot")
	fs.Bool(FlagCertbot, false, "Obtain a certificate from Let's Encrypt via certbot")
	fs.Bool(FlagSelfSignedCert, false, "Generate a self-signed certificate")
	fs.Bool(FlagNoInitDB, false, "Skip database initialization (for restores and replicas)")
	fs.String(FlagCACert, "", "CA certificate bundle to trust for downloads")
	fs.Bool(FlagNoDistUpgrade, false, "Skip the full apt dist-upgrade before installing")
	fs.Bool(FlagNoOverwriteSettings, false, "Keep an existing settings file untouched")
	fs.Bool(FlagMissingDictionaries, false, "PostgreSQL lacks the dictionary files full-text search wants")
	fs.Bool(FlagRemotePostgres, false, "The database runs on another host")
}

// newEnv builds the viper instance binding the documented environment
// overrides with their defaults.
func newEnv() *viper.Viper {
	v := viper.New()
	v.SetDefault("DEPLOYMENT_TYPE", DeployVoyager)
	v.SetDefault("PUPPET_CLASSES", "zulip::voyager")
	v.SetDefault("APT_OPTIONS", "")
	v.SetDefault("ADDITIONAL_PACKAGES", "")
	v.SetDefault("VIRTUALENV_NEEDED", "yes")
	for _, key := range []string{
		"DEPLOYMENT_TYPE", "PUPPET_CLASSES", "APT_OPTIONS",
		"ADDITIONAL_PACKAGES", "VIRTUALENV_NEEDED",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// FromFlags assembles an InstallConfig from parsed flags plus environment
// overrides. It does not validate; callers run Validate next so --help can
// bypass validation entirely.
func FromFlags(fs *pflag.FlagSet) (*InstallConfig, error) {
	if args := fs.Args(); len(args) > 0 {
		return nil, cerr.Mark(
			cerr.Newf("unexpected positional arguments: %s", strings.Join(args, " ")),
			ErrUsage)
	}

	certbot, _ := fs.GetBool(FlagCertbot)
	selfSigned, _ := fs.GetBool(FlagSelfSignedCert)

	mode := CertModeNone
	switch {
	case certbot:
		mode = CertModeCertbot
	case selfSigned:
		mode = CertModeSelfSigned
	}

	// The conflict is reported before any other validation.
	if certbot && selfSigned {
		return nil, cerr.Mark(
			cerr.Newf("--%s and --%s are incompatible", FlagCertbot, FlagSelfSignedCert),
			ErrUsage)
	}

	env := newEnv()

	cfg := &InstallConfig{
		CertMode:         mode,
		DeployType:       env.GetString("DEPLOYMENT_TYPE"),
		PuppetClasses:    env.GetString("PUPPET_CLASSES"),
		AptOptions:       splitList(env.GetString("APT_OPTIONS")),
		ExtraPackages:    splitList(env.GetString("ADDITIONAL_PACKAGES")),
		VirtualenvNeeded: env.GetString("VIRTUALENV_NEEDED") != "no",
	}
	cfg.Hostname, _ = fs.GetString(FlagHostname)
	cfg.Email, _ = fs.GetString(FlagEmail)
	cfg.CACertPath, _ = fs.GetString(FlagCACert)
	cfg.NoInitDB, _ = fs.GetBool(FlagNoInitDB)
	cfg.NoDistUpgrade, _ = fs.GetBool(FlagNoDistUpgrade)
	cfg.NoOverwriteSettings, _ = fs.GetBool(FlagNoOverwriteSettings)
	cfg.MissingDictionaries, _ = fs.GetBool(FlagMissingDictionaries)
	cfg.RemotePostgres, _ = fs.GetBool(FlagRemotePostgres)

	return cfg, nil
}

var validate = validator.New()

// Validate enforces the install invariants. Order matters: required fields,
// then placeholder rejection, then format checks, so the operator sees the
// most actionable message first.
func (c *InstallConfig) Validate() error {
	// Hostname and email exist to configure the web frontend and issue a
	// certificate. A restore (--no-init-db, no certbot) needs neither.
	exempt := c.NoInitDB && c.CertMode != CertModeCertbot
	if !exempt && (c.Hostname == "" || c.Email == "") {
		return cerr.Mark(
			cerr.Newf("--%s and --%s are required", FlagHostname, FlagEmail),
			ErrUsage)
	}

	if c.Hostname == PlaceholderHostname {
		return cerr.Mark(cerr.WithHint(
			cerr.Newf("hostname %q is the example from the documentation", PlaceholderHostname),
			"Pass the real DNS name your users will visit via --hostname."),
			ErrUsage)
	}
	if c.Email == PlaceholderEmail {
		return cerr.Mark(cerr.WithHint(
			cerr.Newf("email %q is the example from the documentation", PlaceholderEmail),
			"Pass a real address you read via --email; certificate expiry warnings go there."),
			ErrUsage)
	}

	if err := validate.Struct(c); err != nil {
		return cerr.Mark(cerr.Wrap(err, "invalid option value"), ErrUsage)
	}
	return nil
}

// IsVoyager reports whether this is the standard single-node deployment.
func (c *InstallConfig) IsVoyager() bool {
	return c.DeployType == DeployVoyager
}

func splitList(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
