package valkey

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, valkey.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return mr, client
}

func TestAlertGuardClaimsOnce(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	guard := NewAlertGuard(client, time.Hour)

	first, err := guard.Claim(t.Context(), "alert:pipeline:run-1")
	require.NoError(t, err)
	require.True(t, first)

	second, err := guard.Claim(t.Context(), "alert:pipeline:run-1")
	require.NoError(t, err)
	require.False(t, second)

	other, err := guard.Claim(t.Context(), "alert:pipeline:run-2")
	require.NoError(t, err)
	require.True(t, other)

	require.Equal(t, time.Hour, mr.TTL("alert:pipeline:run-1"))
}

func TestAlertGuardExpires(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	guard := NewAlertGuard(client, time.Minute)

	first, err := guard.Claim(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, first)

	mr.FastForward(2 * time.Minute)

	again, err := guard.Claim(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, again)
}

func TestAlertGuardRelease(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	guard := NewAlertGuard(client, time.Hour)

	first, err := guard.Claim(t.Context(), "alert:pipeline:run-1")
	require.NoError(t, err)
	require.True(t, first)

	require.NoError(t, guard.Release(t.Context(), "alert:pipeline:run-1"))
	require.False(t, mr.Exists("alert:pipeline:run-1"))

	again, err := guard.Claim(t.Context(), "alert:pipeline:run-1")
	require.NoError(t, err)
	require.True(t, again)

	require.NoError(t, guard.Release(t.Context(), "alert:pipeline:missing"))
}

func TestConfigEnabled(t *testing.T) {
	t.Parallel()

	require.False(t, Config{}.Enabled())
	require.True(t, Config{Addresses: []string{"localhost:6379"}}.Enabled())
}
