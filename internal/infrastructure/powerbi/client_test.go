package powerbi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/httpx"
)

const (
	testGroup   = "3f9d7a52-1c2b-4b47-9f3e-2a6a1d2c4e11"
	testDataset = "a1b2c3d4-e5f6-4711-8899-aabbccddeeff"
)

func TestTriggerRefresh(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/v1.0/myorg/groups/"+testGroup+"/datasets/"+testDataset+"/refreshes", r.URL.Path)
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(Config{
		Mode:        ModeLive,
		BaseUrl:     srv.URL,
		GroupId:     testGroup,
		DatasetId:   testDataset,
		AccessToken: "Bearer token",
	}, srv.Client())
	require.NoError(t, client.TriggerRefresh(t.Context()))
	require.Equal(t, int32(1), calls.Load())
}

func TestTriggerRefreshRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(Config{BaseUrl: srv.URL, GroupId: testGroup, DatasetId: testDataset}, srv.Client()).
		TriggerRefresh(t.Context())

	var statusErr *httpx.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Config{Mode: ModeStub}.Validate())
	require.Error(t, Config{Mode: ModeLive, GroupId: "nope", DatasetId: testDataset, AccessToken: "t"}.Validate())
	require.Error(t, Config{Mode: ModeLive, GroupId: testGroup, DatasetId: testDataset}.Validate())
	require.NoError(t, Config{Mode: ModeLive, GroupId: testGroup, DatasetId: testDataset, AccessToken: "t"}.Validate())
}
