package cloudsqlconn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstanceName(t *testing.T) {
	n, err := ParseInstanceName("my-project:us-central1:my-instance")
	require.NoError(t, err)
	assert.Equal(t, "my-project", n.Project())
	assert.Equal(t, "us-central1", n.Region())
	assert.Equal(t, "my-instance", n.Instance())
	assert.Equal(t, "my-project:us-central1:my-instance", n.String())
}

func TestParseInstanceName_LegacyTwoPartRejected(t *testing.T) {
	_, err := ParseInstanceName("my-project:my-instance")
	require.Error(t, err)
	assert.True(t, errorKindOf(err) == KindInvalidArgument)
}

func TestParseInstanceName_Malformed(t *testing.T) {
	cases := []string{
		"",
		"just-a-name",
		"a:b:c:d",
		"a::c",
		":b:c",
		"a:b:",
	}
	for _, s := range cases {
		_, err := ParseInstanceName(s)
		require.Errorf(t, err, "expected error for %q", s)
		assert.Equal(t, KindInvalidArgument, errorKindOf(err))
	}
}
