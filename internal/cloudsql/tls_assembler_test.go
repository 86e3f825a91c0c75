package cloudsql

import (
	"crypto/tls"
	"crypto/x509"
	"testing"

	cloudsqlconn "github.com/sufield/cloudsqlconn"
	"github.com/sufield/cloudsqlconn/internal/cloudsql/cloudsqladmintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata(t *testing.T) cloudsqlconn.InstanceMetadata {
	t.Helper()
	caCert, _, err := cloudsqladmintest.NewCA()
	require.NoError(t, err)
	return cloudsqlconn.InstanceMetadata{
		IPAddrs:      map[cloudsqlconn.IPType]string{cloudsqlconn.PUBLIC: "10.0.0.1"},
		ServerCaCert: caCert,
	}
}

func TestAssembleTLS_DefaultsToTLS13(t *testing.T) {
	instanceName, err := cloudsqlconn.ParseInstanceName("p:r:i")
	require.NoError(t, err)

	mat, err := AssembleTLS(tls.Certificate{}, testMetadata(t), cloudsqlconn.PASSWORD, instanceName)
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), mat.MinVersion())
}

func TestAssembleTLS_PasswordModeFallsBackWhenTLS13Unavailable(t *testing.T) {
	old := tlsv13Supported
	tlsv13Supported = false
	defer func() { tlsv13Supported = old }()

	instanceName, err := cloudsqlconn.ParseInstanceName("p:r:i")
	require.NoError(t, err)

	mat, err := AssembleTLS(tls.Certificate{}, testMetadata(t), cloudsqlconn.PASSWORD, instanceName)
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), mat.MinVersion())
}

func TestAssembleTLS_IAMModeHardFailsWhenTLS13Unavailable(t *testing.T) {
	old := tlsv13Supported
	tlsv13Supported = false
	defer func() { tlsv13Supported = old }()

	instanceName, err := cloudsqlconn.ParseInstanceName("p:r:i")
	require.NoError(t, err)

	_, err = AssembleTLS(tls.Certificate{}, testMetadata(t), cloudsqlconn.IAM, instanceName)
	require.Error(t, err)
	var cerr *cloudsqlconn.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cloudsqlconn.KindUnsupported, cerr.Kind)
}

func TestAssembleTLS_TrustsOnlyServerCA(t *testing.T) {
	instanceName, err := cloudsqlconn.ParseInstanceName("p:r:i")
	require.NoError(t, err)
	metadata := testMetadata(t)

	mat, err := AssembleTLS(tls.Certificate{}, metadata, cloudsqlconn.PASSWORD, instanceName)
	require.NoError(t, err)

	cfg := mat.TLSConfig("10.0.0.1")
	require.NotNil(t, cfg.RootCAs)
	pool := x509.NewCertPool()
	pool.AddCert(metadata.ServerCaCert)
	assert.True(t, cfg.RootCAs.Equal(pool))
}
