package cloudsql

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"log/slog"
	"strings"

	cloudsqlconn "github.com/sufield/cloudsqlconn"
)

// FetchMetadata retrieves and validates the reachable endpoints and trust
// anchor for instanceName, failing closed on any condition that would make
// the instance unsafe or impossible to connect to.
func FetchMetadata(ctx context.Context, client AdminAPIClient, instanceName cloudsqlconn.InstanceName, authType cloudsqlconn.AuthType) (cloudsqlconn.InstanceMetadata, error) {
	settings, err := client.GetConnectSettings(ctx, instanceName.Project(), instanceName.Instance())
	if err != nil {
		return cloudsqlconn.InstanceMetadata{}, addExceptionContext(err, "failed to retrieve instance metadata", instanceName)
	}

	if settings.Region != instanceName.Region() {
		return cloudsqlconn.InstanceMetadata{}, cloudsqlconn.NewError(cloudsqlconn.KindInvalidArgument, instanceName.String(), nil,
			"the region specified (%q) does not match the instance's actual region (%q); check the instance connection name",
			instanceName.Region(), settings.Region)
	}
	if settings.BackendType != "SECOND_GEN" {
		return cloudsqlconn.InstanceMetadata{}, cloudsqlconn.NewError(cloudsqlconn.KindUnsupported, instanceName.String(), nil,
			"connections are only supported for Second Generation Cloud SQL instances")
	}
	if authType == cloudsqlconn.IAM && strings.Contains(settings.DatabaseVersion, "SQLSERVER") {
		return cloudsqlconn.InstanceMetadata{}, cloudsqlconn.NewError(cloudsqlconn.KindUnsupported, instanceName.String(), nil,
			"IAM database authentication is not supported for SQL Server instances")
	}

	ipAddrs := make(map[cloudsqlconn.IPType]string)
	for _, addr := range settings.IpAddresses {
		switch addr.Type {
		case "PRIMARY":
			ipAddrs[cloudsqlconn.PUBLIC] = addr.IpAddress
		case "PRIVATE":
			ipAddrs[cloudsqlconn.PRIVATE] = addr.IpAddress
		}
	}
	if settings.DnsName != "" {
		ipAddrs[cloudsqlconn.PSC] = settings.DnsName
	}
	if len(ipAddrs) == 0 {
		return cloudsqlconn.InstanceMetadata{}, cloudsqlconn.NewError(cloudsqlconn.KindNotAvailable, instanceName.String(), nil,
			"instance has no assigned IP address reachable by this connector")
	}

	caCert, err := parseCert(settings.ServerCaCert.Cert)
	if err != nil {
		return cloudsqlconn.InstanceMetadata{}, cloudsqlconn.NewError(cloudsqlconn.KindCertificateInvalid, instanceName.String(), err,
			"unable to parse the server CA certificate")
	}

	slog.Debug("metadata done", "instance", instanceName.String())
	return cloudsqlconn.InstanceMetadata{IPAddrs: ipAddrs, ServerCaCert: caCert}, nil
}

func parseCert(pemCert string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(pemCert))
	if block == nil {
		return nil, errors.New("failed to decode PEM certificate")
	}
	return x509.ParseCertificate(block.Bytes)
}
