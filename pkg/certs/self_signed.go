// pkg/certs/self_signed.go

package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SelfSignedOptions configures one self-signed certificate generation.
type SelfSignedOptions struct {
	Hostname string
	CertPath string
	KeyPath  string

	// ExistsOK makes generation idempotent: a pre-existing, still-valid
	// certificate for the same hostname is left untouched so re-running
	// the installer never churns the pair nginx already serves.
	ExistsOK bool

	// ValidityDays defaults to 10 years; self-signed installs are for
	// testing and internal deployments, not public rotation hygiene.
	ValidityDays int

	KeySize int
}

// GenerateSelfSigned writes a self-signed certificate and key pair.
func GenerateSelfSigned(rc *zulip_io.RuntimeContext, opts SelfSignedOptions) error {
	logger := otelzap.Ctx(rc.Ctx)

	if opts.ValidityDays == 0 {
		opts.ValidityDays = 3650
	}
	if opts.KeySize == 0 {
		opts.KeySize = 2048
	}

	if opts.ExistsOK && existingIsUsable(opts) {
		logger.Info("Keeping existing certificate",
			zap.String("cert", opts.CertPath))
		return nil
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, opts.KeySize)
	if err != nil {
		return cerr.Wrap(err, "generate private key")
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return cerr.Wrap(err, "generate serial number")
	}

	notBefore := time.Now()
	notAfter := notBefore.Add(time.Duration(opts.ValidityDays) * 24 * time.Hour)

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName: opts.Hostname,
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{opts.Hostname},
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return cerr.Wrap(err, "create certificate")
	}

	if err := os.MkdirAll(filepath.Dir(opts.CertPath), 0o755); err != nil {
		return cerr.Wrap(err, "create cert directory")
	}
	if err := os.MkdirAll(filepath.Dir(opts.KeyPath), 0o700); err != nil {
		return cerr.Wrap(err, "create key directory")
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certBytes})
	if err := os.WriteFile(opts.CertPath, certPEM, 0o644); err != nil {
		return cerr.Wrap(err, "write certificate")
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	if err := os.WriteFile(opts.KeyPath, keyPEM, 0o600); err != nil {
		return cerr.Wrap(err, "write private key")
	}

	logger.Info("Self-signed certificate written",
		zap.String("cert", opts.CertPath),
		zap.String("key", opts.KeyPath),
		zap.Time("not_after", notAfter))
	return nil
}

// existingIsUsable reports whether the pair on disk already covers the
// requested hostname and has not expired.
func existingIsUsable(opts SelfSignedOptions) bool {
	if _, err := os.Stat(opts.KeyPath); err != nil {
		return false
	}
	data, err := os.ReadFile(opts.CertPath)
	if err != nil {
		return false
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return false
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return false
	}
	if time.Now().After(cert.NotAfter) {
		return false
	}
	return cert.VerifyHostname(opts.Hostname) == nil
}
