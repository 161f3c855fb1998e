package ids

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewRunIdIsLowercaseUlid(t *testing.T) {
	t.Parallel()

	id := NewRunId()
	_, err := ulid.ParseStrict(id.String())
	require.NoError(t, err)
	require.Equal(t, ParseRunId(id.String()), id)
	require.NotEqual(t, NewRunId(), id)
}

func TestAlertKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "alert:dbt_analytics:abc123", AlertKey("dbt_analytics", ParseRunId(" ABC123 ")))
}
