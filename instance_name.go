package cloudsqlconn

import "strings"

// InstanceName is the parsed, validated form of a Cloud SQL instance
// connection name: "project:region:instance". It is immutable after
// construction and used as the diagnostic prefix on every error raised while
// working with the instance it identifies.
type InstanceName struct {
	project  string
	region   string
	instance string
}

// ParseInstanceName parses the canonical "project:region:instance" form.
// The legacy two-part "project:instance" form is rejected: callers must
// supply a region explicitly.
func ParseInstanceName(s string) (InstanceName, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		if parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return InstanceName{}, NewError(KindInvalidArgument, s, nil,
				"invalid instance connection name %q: project, region, and instance must all be non-empty", s)
		}
		return InstanceName{project: parts[0], region: parts[1], instance: parts[2]}, nil
	case 2:
		return InstanceName{}, NewError(KindInvalidArgument, s, nil,
			"invalid instance connection name %q: the legacy \"project:instance\" form is not supported, specify a region", s)
	default:
		return InstanceName{}, NewError(KindInvalidArgument, s, nil,
			"invalid instance connection name %q: expected \"project:region:instance\"", s)
	}
}

// Project returns the GCP project ID.
func (n InstanceName) Project() string { return n.project }

// Region returns the Cloud SQL region ID.
func (n InstanceName) Region() string { return n.region }

// Instance returns the Cloud SQL instance ID.
func (n InstanceName) Instance() string { return n.instance }

// String returns the canonical "project:region:instance" form, used as the
// diagnostic prefix on errors pertaining to this instance.
func (n InstanceName) String() string {
	return n.project + ":" + n.region + ":" + n.instance
}
