package cloudsqlconn

// IPType identifies the network path a Cloud SQL instance endpoint is
// reachable on.
type IPType string

const (
	// PUBLIC is the instance's public IP address.
	PUBLIC IPType = "PUBLIC"
	// PRIVATE is the instance's private IP address (VPC peering).
	PRIVATE IPType = "PRIVATE"
	// PSC is a Private Service Connect DNS name, resolved by the downstream
	// socket layer rather than being a literal IP address.
	PSC IPType = "PSC"
)

// AuthType selects how the connecting client authenticates to the database
// once the TLS tunnel is established.
type AuthType string

const (
	// PASSWORD authenticates with a database-native username/password.
	PASSWORD AuthType = "PASSWORD"
	// IAM authenticates using a Google identity bearer token.
	IAM AuthType = "IAM"
)
