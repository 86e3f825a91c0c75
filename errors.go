package cloudsqlconn

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the reason a connection-info operation failed. Callers
// that need to branch on failure type should use errors.Is against the
// package-level sentinels below rather than comparing Kind directly, since a
// future release may attach a Kind to errors that did not previously carry
// one.
type ErrorKind string

const (
	// KindInvalidArgument covers malformed instance names, region mismatches,
	// and configuration that sets more than one credential source.
	KindInvalidArgument ErrorKind = "invalid_argument"
	// KindUnsupported covers non-Second-Generation backends, IAM auth against
	// SQL Server, and IAM auth without TLS 1.3.
	KindUnsupported ErrorKind = "unsupported"
	// KindAuthRequired covers IAM auth mode with no token available.
	KindAuthRequired ErrorKind = "auth_required"
	// KindNotAvailable covers instances with no usable IP endpoint.
	KindNotAvailable ErrorKind = "not_available"
	// KindCertificateInvalid covers server CA or ephemeral certificates that
	// fail to parse as X.509.
	KindCertificateInvalid ErrorKind = "certificate_invalid"
	// KindAccessDenied covers Admin API reason "notAuthorized".
	KindAccessDenied ErrorKind = "access_denied"
	// KindAPIDisabled covers Admin API reason "accessNotConfigured".
	KindAPIDisabled ErrorKind = "api_disabled"
	// KindTransient covers any other Admin API transport/response failure.
	KindTransient ErrorKind = "transient"
	// KindCancelled covers an orchestration cancelled via its context.
	KindCancelled ErrorKind = "cancelled"
)

// Error is the concrete error type surfaced by this package's operations. It
// always carries a Kind so callers can distinguish, for example, a
// misconfigured instance name from a transient Admin API outage.
type Error struct {
	Kind ErrorKind
	// msg is the fully formatted, instance-prefixed message.
	msg string
	// cause is the underlying error, if any (nil for errors originated here).
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is one of the sentinel ErrorKind markers below,
// so callers can write errors.Is(err, cloudsqlconn.ErrCertificateInvalid)
// instead of a type assertion followed by a Kind comparison.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*kindSentinel)
	return ok && sentinel.kind == e.Kind
}

// kindSentinel lets errors.Is match on Kind alone without exposing Error's
// other fields to comparison.
type kindSentinel struct{ kind ErrorKind }

func (s *kindSentinel) Error() string { return string(s.kind) }

// Sentinel values for errors.Is checks against Error.Kind.
var (
	ErrInvalidArgument    = &kindSentinel{KindInvalidArgument}
	ErrUnsupported        = &kindSentinel{KindUnsupported}
	ErrAuthRequired       = &kindSentinel{KindAuthRequired}
	ErrNotAvailable       = &kindSentinel{KindNotAvailable}
	ErrCertificateInvalid = &kindSentinel{KindCertificateInvalid}
	ErrAccessDenied       = &kindSentinel{KindAccessDenied}
	ErrAPIDisabled        = &kindSentinel{KindAPIDisabled}
	ErrTransient          = &kindSentinel{KindTransient}
	ErrCancelled          = &kindSentinel{KindCancelled}
)

// NewError builds an Error of the given kind, prefixing the formatted message
// with "[<connectionName>] " the way every diagnostic in this package does.
// Pass a nil cause when the error originates here rather than wrapping an
// underlying failure.
func NewError(kind ErrorKind, connectionName string, cause error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if connectionName != "" {
		msg = fmt.Sprintf("[%s] %s", connectionName, msg)
	}
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// errorKindOf extracts the Kind from err if it is (or wraps) an *Error,
// defaulting to KindTransient for anything else.
func errorKindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}
