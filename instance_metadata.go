package cloudsqlconn

import "crypto/x509"

// InstanceMetadata is the set of reachable endpoints and the trust anchor
// returned by the Admin API for a single instance.
//
// Invariant: IPAddrs is never empty for a successfully returned
// InstanceMetadata — the metadata fetcher fails with KindNotAvailable rather
// than return a value violating this.
type InstanceMetadata struct {
	IPAddrs      map[IPType]string
	ServerCaCert *x509.Certificate
}

// Addr returns the endpoint for typ and whether the instance exposes it.
func (m InstanceMetadata) Addr(typ IPType) (string, bool) {
	addr, ok := m.IPAddrs[typ]
	return addr, ok
}
