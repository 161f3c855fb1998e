// Package airbyte triggers connection syncs through the Airbyte public API.
package airbyte

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/httpx"
)

const (
	jobsPath    = "/v1/jobs"
	jobTypeSync = "sync"
	serviceName = "airbyte"
)

type syncRequest struct {
	ConnectionId string `json:"connectionId"`
	JobType      string `json:"jobType"`
}

type Job struct {
	JobId   int64  `json:"jobId"`
	Status  string `json:"status"`
	JobType string `json:"jobType"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = httpx.NewClient()
	}
	return &Client{cfg: cfg, http: httpClient}
}

// TriggerSync starts one sync job. A non-200 answer is returned as
// *httpx.StatusError; anything else that fails is a transport error.
func (c *Client) TriggerSync(ctx context.Context) (*Job, error) {
	payload, err := json.Marshal(syncRequest{
		ConnectionId: c.cfg.ConnectionId,
		JobType:      jobTypeSync,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(c.cfg.BaseUrl, "/")+jobsPath,
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build airbyte request: %w", err)
	}
	req.Header.Set("Authorization", httpx.BearerToken(c.cfg.ApiKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call airbyte: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpx.NewStatusError(serviceName, resp)
	}
	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to decode airbyte response: %w", err)
	}
	return &job, nil
}
