package cloudsqlconn

import (
	"context"
	"crypto/sha256"
	"fmt"
	"reflect"

	"golang.org/x/oauth2"
)

// CredentialsSupplierFunc mints an OAuth2 token on demand for a connector
// configured with WithCredentialsSupplier. For CacheKey purposes it is
// compared by its code pointer, not by value: two ConnectorConfigs built
// with the same func value get the same key, and two built from different
// function literals get different keys even if both would always return
// equal tokens. Closures created from one function literal share a code
// pointer, so they get the same key whatever variables they capture.
type CredentialsSupplierFunc func(ctx context.Context) (*oauth2.Token, error)

// credentialSource is a closed tagged union over the ways a ConnectorConfig
// can be told which Google credentials to use to authenticate Admin API
// calls. The zero value (kind credentialSourceNone) means "use the
// environment's application default credentials."
type credentialSource struct {
	kind     credentialSourceKind
	path     string
	jsonVal  []byte
	supplier CredentialsSupplierFunc
}

type credentialSourceKind int

const (
	credentialSourceNone credentialSourceKind = iota
	credentialSourcePath
	credentialSourceValue
	credentialSourceSupplier
)

// ConnectorConfig is the immutable, validated configuration for dialing a
// family of Cloud SQL instances. Build a ConnectorConfig once via
// NewConnectorConfig and its With* options, then reuse it across
// connections. Callers that cache connectors or their connection info can
// key that cache by CacheKey, so that structurally identical configs share
// one entry.
type ConnectorConfig struct {
	authType         AuthType
	credSource       credentialSource
	credSourceSets   int
	adminAPIEndpoint string
	adminRootURL     string
	targetPrincipal  string
	delegates        []string
}

// ConnectorConfigOption configures a ConnectorConfig under construction.
type ConnectorConfigOption func(*ConnectorConfig)

// WithIAMAuthN selects IAM database authentication: GetConnectionInfo then
// requires a bearer token from its TokenSupplier and includes it in the
// ephemeral certificate request.
func WithIAMAuthN() ConnectorConfigOption {
	return func(c *ConnectorConfig) { c.authType = IAM }
}

// WithCredentialsFile selects a service account or authorized-user JSON key
// file at path as the credential source for Admin API calls. Mutually
// exclusive with
// WithCredentialsJSON and WithCredentialsSupplier.
func WithCredentialsFile(path string) ConnectorConfigOption {
	return func(c *ConnectorConfig) {
		c.credSource = credentialSource{kind: credentialSourcePath, path: path}
		c.credSourceSets++
	}
}

// WithCredentialsJSON selects an in-memory service account or authorized-user
// JSON key as the credential source. Mutually exclusive with
// WithCredentialsFile and WithCredentialsSupplier.
func WithCredentialsJSON(json []byte) ConnectorConfigOption {
	return func(c *ConnectorConfig) {
		cp := make([]byte, len(json))
		copy(cp, json)
		c.credSource = credentialSource{kind: credentialSourceValue, jsonVal: cp}
		c.credSourceSets++
	}
}

// WithCredentialsSupplier selects a caller-supplied function as the source
// of Admin API tokens, bypassing Google's default credential discovery
// entirely. Mutually exclusive with WithCredentialsFile and
// WithCredentialsJSON.
func WithCredentialsSupplier(f CredentialsSupplierFunc) ConnectorConfigOption {
	return func(c *ConnectorConfig) {
		c.credSource = credentialSource{kind: credentialSourceSupplier, supplier: f}
		c.credSourceSets++
	}
}

// WithAdminAPIEndpoint overrides the Cloud SQL Admin API's base path
// (sqladmin.AdminServicePath equivalent), for test doubles and non-default
// API environments.
func WithAdminAPIEndpoint(endpoint string) ConnectorConfigOption {
	return func(c *ConnectorConfig) { c.adminAPIEndpoint = endpoint }
}

// WithAdminRootURL overrides the Cloud SQL Admin API's root URL
// (sqladmin.AdminRootURL equivalent), for test doubles and non-default API
// environments.
func WithAdminRootURL(rootURL string) ConnectorConfigOption {
	return func(c *ConnectorConfig) { c.adminRootURL = rootURL }
}

// WithTargetPrincipal configures the connector to impersonate
// targetPrincipal, optionally hopping through delegates, when calling the
// Admin API.
func WithTargetPrincipal(targetPrincipal string, delegates ...string) ConnectorConfigOption {
	return func(c *ConnectorConfig) {
		c.targetPrincipal = targetPrincipal
		c.delegates = append([]string(nil), delegates...)
	}
}

// NewConnectorConfig builds a ConnectorConfig from opts, applied in order,
// and validates it. It returns a KindInvalidArgument error if more than one
// credential source option was supplied.
func NewConnectorConfig(opts ...ConnectorConfigOption) (ConnectorConfig, error) {
	var c ConnectorConfig
	c.authType = PASSWORD
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.validate(); err != nil {
		return ConnectorConfig{}, err
	}
	return c, nil
}

func (c ConnectorConfig) validate() error {
	if c.credSourceSets > 1 {
		return NewError(KindInvalidArgument, "", nil,
			"at most one of WithCredentialsFile, WithCredentialsJSON, or WithCredentialsSupplier may be set")
	}
	if len(c.delegates) > 0 && c.targetPrincipal == "" {
		return NewError(KindInvalidArgument, "", nil,
			"delegates were specified without a target principal")
	}
	return nil
}

// AuthType reports how the connector authenticates database connections.
func (c ConnectorConfig) AuthType() AuthType { return c.authType }

// TargetPrincipal reports the service account to impersonate, or "" if none.
func (c ConnectorConfig) TargetPrincipal() string { return c.targetPrincipal }

// AdminAPIEndpoint reports the configured Admin API service path override,
// or "" to use the default.
func (c ConnectorConfig) AdminAPIEndpoint() string { return c.adminAPIEndpoint }

// AdminRootURL reports the configured Admin API root URL override, or "" to
// use the default.
func (c ConnectorConfig) AdminRootURL() string { return c.adminRootURL }

// CacheKey returns a value such that two ConnectorConfigs that would
// produce behaviorally identical connectors compare equal under
// CacheKey() == CacheKey(). It is the Go analogue of Java's equals/hashCode
// pair for this type: a credentialSourceSupplier is keyed by function
// identity (its underlying code pointer), not by any notion of closure
// value equality, since Go offers no such notion.
func (c ConnectorConfig) CacheKey() [32]byte {
	h := sha256.New()
	fmt.Fprintf(h, "auth=%s\x00target=%s\x00delegates=%v\x00endpoint=%s\x00root=%s\x00credkind=%d\x00",
		c.authType, c.targetPrincipal, c.delegates, c.adminAPIEndpoint, c.adminRootURL, c.credSource.kind)
	switch c.credSource.kind {
	case credentialSourcePath:
		fmt.Fprintf(h, "path=%s\x00", c.credSource.path)
	case credentialSourceValue:
		h.Write(c.credSource.jsonVal)
	case credentialSourceSupplier:
		fmt.Fprintf(h, "supplier=%x\x00", reflect.ValueOf(c.credSource.supplier).Pointer())
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
