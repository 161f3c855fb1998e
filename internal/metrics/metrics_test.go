package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTaskRun(t *testing.T) {
	TaskRuns.Reset()
	TaskDuration.Reset()

	RecordTaskRun("us-accidents-raw", "succeeded", 2*time.Second)
	RecordTaskRun("us-accidents-raw", "skipped", 0)
	RecordTaskRun("us-accidents-raw", "succeeded", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(TaskRuns.WithLabelValues("us-accidents-raw", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(TaskRuns.WithLabelValues("us-accidents-raw", "skipped")))
	assert.Equal(t, 1, testutil.CollectAndCount(TaskDuration))
}

func TestRecordAlert(t *testing.T) {
	Alerts.Reset()

	RecordAlert("sent")
	RecordAlert("failed")
	RecordAlert("sent")

	assert.Equal(t, 2.0, testutil.ToFloat64(Alerts.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(Alerts.WithLabelValues("failed")))
}

func TestRouter(t *testing.T) {
	Alerts.Reset()
	RecordAlert("sent")

	srv := httptest.NewServer(NewRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := new(strings.Builder)
	_, err = io.Copy(body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `pipeline_alerts_total{result="sent"} 1`)
}
