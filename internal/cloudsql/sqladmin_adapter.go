package cloudsql

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sqladmin "google.golang.org/api/sqladmin/v1beta4"
)

// sqladminAdapter adapts *sqladmin.Service to AdminAPIClient.
type sqladminAdapter struct {
	svc *sqladmin.Service
}

// AdapterOptions configures NewSQLAdminClient's underlying *sqladmin.Service.
type AdapterOptions struct {
	// TokenSource authenticates outgoing Admin API requests. If nil, the
	// service is built with Google's application default credentials.
	TokenSource oauth2.TokenSource
	// Endpoint overrides the Admin API's base path, for test doubles and
	// non-default API environments. Empty uses the library default.
	Endpoint string
	// HTTPClient, if set, replaces the library's own authenticated
	// transport entirely — used by tests to point at an unauthenticated
	// cloudsqladmintest.Server.
	HTTPClient *http.Client
}

// NewSQLAdminClient builds an AdminAPIClient backed by the real Cloud SQL
// Admin API, or a test double reachable at opts.Endpoint.
func NewSQLAdminClient(ctx context.Context, opts AdapterOptions) (AdminAPIClient, error) {
	var clientOpts []option.ClientOption
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient), option.WithoutAuthentication())
	} else if opts.TokenSource != nil {
		clientOpts = append(clientOpts, option.WithTokenSource(opts.TokenSource))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := sqladmin.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	return &sqladminAdapter{svc: svc}, nil
}

// DefaultCredentialsTokenSource resolves Google application default
// credentials scoped for Admin API and database IAM authentication use, the
// Go analogue of GoogleCredentials.getApplicationDefault().
func DefaultCredentialsTokenSource(ctx context.Context, scopes ...string) (oauth2.TokenSource, error) {
	creds, err := google.FindDefaultCredentials(ctx, scopes...)
	if err != nil {
		return nil, err
	}
	return creds.TokenSource, nil
}

func (a *sqladminAdapter) GetConnectSettings(ctx context.Context, project, instance string) (*sqladmin.ConnectSettings, error) {
	return a.svc.Connect.Get(project, instance).Context(ctx).Do()
}

func (a *sqladminAdapter) GenerateEphemeralCert(ctx context.Context, project, instance string, req *sqladmin.GenerateEphemeralCertRequest) (*sqladmin.GenerateEphemeralCertResponse, error) {
	return a.svc.Connect.GenerateEphemeralCert(project, instance, req).Context(ctx).Do()
}
