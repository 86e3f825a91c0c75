package cloudsql

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"strings"

	cloudsqlconn "github.com/sufield/cloudsqlconn"
	"golang.org/x/oauth2"
	sqladmin "google.golang.org/api/sqladmin/v1beta4"
)

// FetchEphemeralCert submits keyPair's public half to the Admin API, along
// with tok's bearer token when authType is IAM, and returns the minted
// client certificate bound to keyPair's private half.
func FetchEphemeralCert(ctx context.Context, client AdminAPIClient, instanceName cloudsqlconn.InstanceName, keyPair *rsa.PrivateKey, tok *oauth2.Token, authType cloudsqlconn.AuthType) (tls.Certificate, error) {
	req := &sqladmin.GenerateEphemeralCertRequest{
		PublicKey: encodePublicKeyPEM(&keyPair.PublicKey),
	}
	if authType == cloudsqlconn.IAM {
		if tok == nil {
			return tls.Certificate{}, cloudsqlconn.NewError(cloudsqlconn.KindAuthRequired, instanceName.String(), nil,
				"IAM authentication requires a bearer token but none was supplied")
		}
		// TODO: remove once the Admin API stops rejecting tokens with a
		// trailing "." (GoogleCloudPlatform/cloud-sql-jdbc-socket-factory#565).
		req.AccessToken = strings.TrimRight(tok.AccessToken, ".")
	}

	resp, err := client.GenerateEphemeralCert(ctx, instanceName.Project(), instanceName.Instance(), req)
	if err != nil {
		return tls.Certificate{}, addExceptionContext(err, "failed to create ephemeral certificate", instanceName)
	}

	cert, err := parseCert(resp.EphemeralCert.Cert)
	if err != nil {
		return tls.Certificate{}, cloudsqlconn.NewError(cloudsqlconn.KindCertificateInvalid, instanceName.String(), err,
			"unable to parse the ephemeral certificate returned by the Admin API")
	}

	slog.Debug("ephemeral cert done", "instance", instanceName.String())
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  keyPair,
		Leaf:        cert,
	}, nil
}

// encodePublicKeyPEM renders pub in the PEM form the Admin API expects: a
// PKIX-encoded public key under the historical "RSA PUBLIC KEY" header,
// wrapped at the standard 64-column width.
func encodePublicKeyPEM(pub *rsa.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		// MarshalPKIXPublicKey only fails for key types it doesn't recognize;
		// *rsa.PublicKey is always supported.
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: der}))
}
