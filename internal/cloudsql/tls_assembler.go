package cloudsql

import (
	"crypto/tls"
	"crypto/x509"
	"log/slog"

	cloudsqlconn "github.com/sufield/cloudsqlconn"
)

// tlsv13Supported models whether the runtime TLS stack can negotiate TLS
// 1.3. Go's crypto/tls has supported TLS 1.3 unconditionally since Go 1.13,
// so this is always true in production; it exists as a seam so tests can
// exercise the PASSWORD-mode fallback / IAM-mode hard-failure branches that
// the Java original reaches via a missing TLSv1.3 Provider.
var tlsv13Supported = true

// AssembleTLS builds the TLSMaterial for a connection: a key-manager view
// binding keyPair to cert, and a trust-manager view trusting exactly
// metadata.ServerCaCert.
func AssembleTLS(keyPair tls.Certificate, metadata cloudsqlconn.InstanceMetadata, authType cloudsqlconn.AuthType, instanceName cloudsqlconn.InstanceName) (cloudsqlconn.TLSMaterial, error) {
	roots := x509.NewCertPool()
	roots.AddCert(metadata.ServerCaCert)

	minVersion := uint16(tls.VersionTLS13)
	if !tlsv13Supported {
		if authType == cloudsqlconn.IAM {
			return cloudsqlconn.TLSMaterial{}, cloudsqlconn.NewError(cloudsqlconn.KindUnsupported, instanceName.String(), nil,
				"TLS 1.3 is not supported by this runtime and is required for IAM authentication")
		}
		slog.Warn("TLS 1.3 is not supported by this runtime, falling back to TLS 1.2", "instance", instanceName.String())
		minVersion = tls.VersionTLS12
	}

	return cloudsqlconn.NewTLSMaterial(keyPair, roots, minVersion), nil
}
