package cloudsqlconn

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsSentinel(t *testing.T) {
	err := NewError(KindCertificateInvalid, "proj:region:inst", nil, "bad cert")
	assert.True(t, errors.Is(err, ErrCertificateInvalid))
	assert.False(t, errors.Is(err, ErrAccessDenied))
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewError(KindTransient, "proj:region:inst", cause, "failed")
	assert.ErrorIs(t, err, cause)
}

func TestError_MessageHasInstancePrefix(t *testing.T) {
	err := NewError(KindNotAvailable, "proj:region:inst", nil, "no IP address")
	assert.Equal(t, "[proj:region:inst] no IP address", err.Error())
}

func TestError_NoPrefixWithoutInstanceName(t *testing.T) {
	err := NewError(KindInvalidArgument, "", nil, "bad config")
	assert.Equal(t, "bad config", err.Error())
}
