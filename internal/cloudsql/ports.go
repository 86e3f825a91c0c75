// Package cloudsql implements the Admin API orchestration behind package
// cloudsqlconn: fetching instance metadata, minting ephemeral client
// certificates, and assembling the resulting TLS material into a
// cloudsqlconn.ConnectionInfo.
package cloudsql

import (
	"context"

	sqladmin "google.golang.org/api/sqladmin/v1beta4"
)

// AdminAPIClient is the subset of the Cloud SQL Admin API this package
// depends on. Production code gets one from NewSQLAdminClient; tests supply
// a double.
type AdminAPIClient interface {
	// GetConnectSettings returns the reachable endpoints and trust anchor
	// for the instance identified by project/instance.
	GetConnectSettings(ctx context.Context, project, instance string) (*sqladmin.ConnectSettings, error)
	// GenerateEphemeralCert submits req (a PEM public key and, in IAM auth
	// mode, a bearer token) and returns a freshly minted client certificate.
	GenerateEphemeralCert(ctx context.Context, project, instance string, req *sqladmin.GenerateEphemeralCertRequest) (*sqladmin.GenerateEphemeralCertResponse, error)
}
