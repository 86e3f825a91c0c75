package cloudsqlconn

import (
	"context"
	"crypto/rsa"

	"github.com/sufield/cloudsqlconn/internal/bg"
	"github.com/sufield/cloudsqlconn/internal/cloudsql"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
)

// adminAPIScopes are the OAuth2 scopes requested for the Admin API
// credentials: a credentials file or JSON value, application default
// credentials, and an impersonated target principal. A
// CredentialsSupplierFunc is called as is, without these scopes.
var adminAPIScopes = []string{
	"https://www.googleapis.com/auth/sqlservice.admin",
	"https://www.googleapis.com/auth/cloud-platform",
}

// InstanceConnector mediates secure connections to a single Cloud SQL
// instance family described by config. It has no internal refresh loop or
// cache; each GetConnectionInfo call performs one full metadata + ephemeral
// certificate fetch. Callers that need periodic refresh and reuse build that
// on top, keyed by config.CacheKey().
type InstanceConnector struct {
	client cloudsql.AdminAPIClient
	config ConnectorConfig
	runner bg.Runner
}

// NewInstanceConnector builds an InstanceConnector from config, resolving
// its credential source (or application default credentials, if config
// specifies none) into an Admin API client.
func NewInstanceConnector(ctx context.Context, config ConnectorConfig) (*InstanceConnector, error) {
	opts, err := adminAPIOptions(ctx, config)
	if err != nil {
		return nil, err
	}
	client, err := cloudsql.NewSQLAdminClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &InstanceConnector{client: client, config: config, runner: bg.Async{}}, nil
}

// adminAPIOptions resolves config's credential source and endpoint
// overrides into cloudsql.AdapterOptions. A nil TokenSource tells
// cloudsql.NewSQLAdminClient to fall back to application default
// credentials.
func adminAPIOptions(ctx context.Context, config ConnectorConfig) (cloudsql.AdapterOptions, error) {
	ts, err := resolveCredentialSource(ctx, config.credSource, adminAPIScopes...)
	if err != nil {
		return cloudsql.AdapterOptions{}, err
	}
	if ts == nil {
		ts, err = cloudsql.DefaultCredentialsTokenSource(ctx, adminAPIScopes...)
		if err != nil {
			return cloudsql.AdapterOptions{}, err
		}
	}
	if config.targetPrincipal != "" {
		impersonated, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: config.targetPrincipal,
			Scopes:          adminAPIScopes,
			Delegates:       config.delegates,
		}, option.WithTokenSource(ts))
		if err != nil {
			return cloudsql.AdapterOptions{}, NewError(KindAuthRequired, "", err,
				"failed to impersonate target principal %q", config.targetPrincipal)
		}
		ts = impersonated
	}

	const defaultAdminRootURL = "https://sqladmin.googleapis.com/"
	endpoint := config.adminRootURL
	if config.adminAPIEndpoint != "" {
		if endpoint == "" {
			endpoint = defaultAdminRootURL
		}
		endpoint += config.adminAPIEndpoint
	}
	return cloudsql.AdapterOptions{TokenSource: ts, Endpoint: endpoint}, nil
}

// GetConnectionInfo fetches a fresh ConnectionInfo for instanceName,
// authenticating the ephemeral certificate request with tokens when the
// connector is configured for IAM database authentication.
func (c *InstanceConnector) GetConnectionInfo(ctx context.Context, instanceName InstanceName, tokens TokenSupplier, keyPair *rsa.PrivateKey) (ConnectionInfo, error) {
	if tokens == nil {
		tokens = StaticToken(nil)
	}
	return cloudsql.GetConnectionInfo(ctx, c.runner, c.client, instanceName, tokens, c.config.authType, keyPair)
}
