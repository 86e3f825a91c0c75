package cloudsql

import (
	"errors"

	cloudsqlconn "github.com/sufield/cloudsqlconn"
	"google.golang.org/api/googleapi"
)

// addExceptionContext inspects err for the reason codes the Admin API is
// known to return for common misconfigurations and translates it into a
// cloudsqlconn.Error of the appropriate Kind, falling back to fallback/
// KindTransient when err carries no recognizable reason.
func addExceptionContext(err error, fallback string, instanceName cloudsqlconn.InstanceName) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || len(gerr.Errors) == 0 {
		return cloudsqlconn.NewError(cloudsqlconn.KindTransient, instanceName.String(), err, "%s", fallback)
	}
	switch gerr.Errors[0].Reason {
	case "accessNotConfigured":
		return cloudsqlconn.NewError(cloudsqlconn.KindAPIDisabled, instanceName.String(), err,
			"the Cloud SQL Admin API is not enabled for project %q. "+
				"Please visit https://console.cloud.google.com/apis/api/sqladmin/overview?project=%s to enable it.",
			instanceName.Project(), instanceName.Project())
	case "notAuthorized":
		return cloudsqlconn.NewError(cloudsqlconn.KindAccessDenied, instanceName.String(), err,
			"instance does not exist or the caller is not authorized to access it in project %q", instanceName.Project())
	default:
		return cloudsqlconn.NewError(cloudsqlconn.KindTransient, instanceName.String(), err, "%s", fallback)
	}
}
