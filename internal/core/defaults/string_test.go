package defaults

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringOrDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, "fallback", StringOrDefault("", "fallback"))
	require.Equal(t, "set", StringOrDefault("set", "fallback"))
}
