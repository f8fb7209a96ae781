// pkg/certs/self_signed_test.go

package certs

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRC(t *testing.T) *zulip_io.RuntimeContext {
	t.Helper()
	return zulip_io.NewContext(context.Background(), t.Name())
}

func testOpts(dir string) SelfSignedOptions {
	return SelfSignedOptions{
		Hostname: "chat.example.org",
		CertPath: filepath.Join(dir, "zulip.combined-chain.crt"),
		KeyPath:  filepath.Join(dir, "zulip.key"),
		ExistsOK: true,
		KeySize:  1024, // small keys keep the test fast; never do this in production
	}
}

func TestGenerateSelfSigned(t *testing.T) {
	rc := testRC(t)
	opts := testOpts(t.TempDir())

	require.NoError(t, GenerateSelfSigned(rc, opts))

	data, err := os.ReadFile(opts.CertPath)
	require.NoError(t, err)
	block, _ := pem.Decode(data)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.NoError(t, cert.VerifyHostname("chat.example.org"))
	assert.Equal(t, "chat.example.org", cert.Subject.CommonName)

	keyInfo, err := os.Stat(opts.KeyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), keyInfo.Mode().Perm())
}

func TestGenerateSelfSignedIsIdempotent(t *testing.T) {
	rc := testRC(t)
	opts := testOpts(t.TempDir())

	require.NoError(t, GenerateSelfSigned(rc, opts))
	first, err := os.ReadFile(opts.CertPath)
	require.NoError(t, err)

	// Second run with the same hostname must keep the existing pair.
	require.NoError(t, GenerateSelfSigned(rc, opts))
	second, err := os.ReadFile(opts.CertPath)
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-running must not overwrite a valid certificate")
}

func TestGenerateSelfSignedReplacesWrongHostname(t *testing.T) {
	rc := testRC(t)
	dir := t.TempDir()
	opts := testOpts(dir)

	require.NoError(t, GenerateSelfSigned(rc, opts))
	first, err := os.ReadFile(opts.CertPath)
	require.NoError(t, err)

	opts.Hostname = "other.example.org"
	require.NoError(t, GenerateSelfSigned(rc, opts))
	second, err := os.ReadFile(opts.CertPath)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "a different hostname needs a fresh certificate")
}

func TestGenerateSelfSignedReplacesGarbage(t *testing.T) {
	rc := testRC(t)
	opts := testOpts(t.TempDir())

	require.NoError(t, os.WriteFile(opts.CertPath, []byte("not a pem"), 0o644))
	require.NoError(t, os.WriteFile(opts.KeyPath, []byte("not a key"), 0o600))

	require.NoError(t, GenerateSelfSigned(rc, opts))

	data, err := os.ReadFile(opts.CertPath)
	require.NoError(t, err)
	block, _ := pem.Decode(data)
	require.NotNil(t, block, "garbage must be replaced with a real certificate")
}
