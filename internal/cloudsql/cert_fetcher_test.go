package cloudsql

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePublicKeyPEM_HeaderAndRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	encoded := encodePublicKeyPEM(&key.PublicKey)
	assert.True(t, strings.HasPrefix(encoded, "-----BEGIN RSA PUBLIC KEY-----\n"))
	assert.True(t, strings.HasSuffix(encoded, "-----END RSA PUBLIC KEY-----\n"))

	block, _ := pem.Decode([]byte(encoded))
	require.NotNil(t, block)
	assert.Equal(t, "RSA PUBLIC KEY", block.Type)

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	rsaPub, ok := pub.(*rsa.PublicKey)
	require.True(t, ok)
	assert.Equal(t, key.PublicKey.N, rsaPub.N)
}

func TestEncodePublicKeyPEM_WrapsAt64Columns(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	encoded := encodePublicKeyPEM(&key.PublicKey)
	lines := strings.Split(strings.TrimRight(encoded, "\n"), "\n")
	for _, line := range lines[1 : len(lines)-1] {
		assert.LessOrEqual(t, len(line), 64)
	}
}
