package cloudsqlconn

import "time"

// ConnectionInfo is the fully assembled result of connecting to a single
// Cloud SQL instance: where it is reachable, what to trust, what to present,
// and how long all of that remains valid.
type ConnectionInfo struct {
	InstanceName InstanceName
	Metadata     InstanceMetadata
	TLS          TLSMaterial
	// Expiration is the earlier of the ephemeral certificate's NotAfter and
	// the IAM bearer token's expiry (IAM auth mode only). Callers must not
	// use this ConnectionInfo, nor any *tls.Config derived from it, to
	// establish new connections at or after this instant. Nothing in this
	// module refreshes it; a new ConnectionInfo comes from another
	// GetConnectionInfo call.
	Expiration time.Time
}

// Addr returns the endpoint for typ and whether the instance exposes it; a
// thin convenience over Metadata.Addr.
func (ci ConnectionInfo) Addr(typ IPType) (string, bool) {
	return ci.Metadata.Addr(typ)
}
