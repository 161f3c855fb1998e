package powerbi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/httpx"
)

const serviceName = "powerbi"

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

func (c *Client) RefreshUrl() string {
	return fmt.Sprintf(
		"%s/v1.0/myorg/groups/%s/datasets/%s/refreshes",
		strings.TrimRight(c.cfg.BaseUrl, "/"),
		url.PathEscape(c.cfg.GroupId),
		url.PathEscape(c.cfg.DatasetId),
	)
}

// TriggerRefresh queues one dataset refresh. Power BI answers 202 Accepted.
func (c *Client) TriggerRefresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.RefreshUrl(),
		bytes.NewReader([]byte(`{"notifyOption":"NoNotification"}`)),
	)
	if err != nil {
		return fmt.Errorf("failed to build power bi request: %w", err)
	}
	req.Header.Set("Authorization", httpx.BearerToken(c.cfg.AccessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call power bi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpx.NewStatusError(serviceName, resp)
	}
	return nil
}
