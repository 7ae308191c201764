package scansync

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ============================================================
// Remote artifact API client
// ============================================================

// ArtifactRef describes a scan artifact available upstream.
type ArtifactRef struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// ClientConfig configures the upstream connection.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retries int
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Client{http: client, logger: logger}
}

// ListArtifacts returns every artifact the upstream knows about.
func (c *Client) ListArtifacts(ctx context.Context) ([]ArtifactRef, error) {
	var refs []ArtifactRef
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&refs).
		Get("/scans")
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("artifact listing rejected",
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("list artifacts: upstream status %d", resp.StatusCode())
	}

	c.logger.Debug("artifacts listed", zap.Int("count", len(refs)))
	return refs, nil
}

// FetchScan downloads the raw scan document of one artifact.
func (c *Client) FetchScan(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/scans/{id}/raw")
	if err != nil {
		return nil, fmt.Errorf("fetch scan %s: %w", id, err)
	}
	if resp.IsError() {
		c.logger.Error("scan download rejected",
			zap.String("artifact_id", id),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("fetch scan %s: upstream status %d", id, resp.StatusCode())
	}
	return resp.Body(), nil
}
