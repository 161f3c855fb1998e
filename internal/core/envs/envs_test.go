package envs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToSliceSorted(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]string{"A=1", "B=two"},
		ToSlice(map[string]string{"B": "two", "A": "1"}),
	)
	require.Empty(t, ToSlice(nil))
}

func TestWithPrefix(t *testing.T) {
	t.Setenv("PIPELINE_AIRBYTE__API_KEY", "secret")
	t.Setenv("OTHER_VALUE", "x")

	got := WithPrefix("PIPELINE_")
	require.Equal(t, "secret", got["AIRBYTE__API_KEY"])
	require.NotContains(t, got, "OTHER_VALUE")
}
