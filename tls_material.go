package cloudsqlconn

import (
	"crypto/tls"
	"crypto/x509"

	"github.com/sufield/cloudsqlconn/internal/assert"
)

// TLSMaterial is the assembled key material for a single mutually-TLS
// authenticated connection to a Cloud SQL instance: the client's identity
// (private key + ephemeral certificate chain) and the server's trust anchor
// (the instance's CA certificate).
//
// It is designed to be consumed once, via TLSConfig, to build the
// *tls.Config a driver's socket factory dials with. The same TLSMaterial may
// back many connections to the same instance until ConnectionInfo.Expiration.
type TLSMaterial struct {
	// cert is the key-manager view: the client's private key bound to the
	// ephemeral certificate chain, under the "ephemeral" alias in spirit
	// (Go's tls.Certificate has no alias field; the name lives only in the
	// originating Java API this package's wire contract was modeled on).
	cert tls.Certificate
	// roots is the trust-manager view: a pool containing exactly the
	// instance's server CA certificate, under the "instance" alias in spirit.
	roots *x509.CertPool
	// minVersion is the negotiated TLS floor: TLS 1.3 unless PASSWORD-mode
	// fallback applied (see internal/cloudsql's TLS assembler).
	minVersion uint16
}

// NewTLSMaterial builds a TLSMaterial from its two constituent views. It
// performs no validation of cert/roots beyond what the caller (the TLS
// assembler) has already done.
func NewTLSMaterial(cert tls.Certificate, roots *x509.CertPool, minVersion uint16) TLSMaterial {
	assert.Invariant(roots != nil, "TLS material must carry a non-nil trust root pool")
	return TLSMaterial{cert: cert, roots: roots, minVersion: minVersion}
}

// TLSConfig returns a *tls.Config ready to be handed to a socket factory for
// dialing serverName (typically the instance's connection name or resolved
// endpoint). Each call returns an independent *tls.Config; callers may
// further customize it (e.g. set ServerName) without affecting this
// TLSMaterial's other consumers.
func (m TLSMaterial) TLSConfig(serverName string) *tls.Config {
	return &tls.Config{
		ServerName:   serverName,
		Certificates: []tls.Certificate{m.cert},
		RootCAs:      m.roots,
		MinVersion:   m.minVersion,
	}
}

// MinVersion returns the negotiated minimum TLS version for this material
// (tls.VersionTLS13 unless a PASSWORD-mode fallback to TLS 1.2 occurred).
func (m TLSMaterial) MinVersion() uint16 { return m.minVersion }
