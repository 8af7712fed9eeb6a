package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jgoulah/usagegrid/pkg/models"
	"go.uber.org/zap"
)

// StatusError reports a non-200 response from the feed
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed returned status %d: %s", e.StatusCode, e.Body)
}

// Fetcher retrieves usage records from some source
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.UsageRecord, error)
}

// AnchorFunc returns the date clock strings are placed on. It is called once
// per fetch.
type AnchorFunc func() time.Time

// FixedAnchor always anchors to t
func FixedAnchor(t time.Time) AnchorFunc {
	return func() time.Time { return t }
}

// Client fetches the usage feed over HTTP
type Client struct {
	url    string
	anchor AnchorFunc
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a feed client. Clock strings in the feed are normalized
// onto the calendar date anchor returns at fetch time; nil means today.
func NewClient(url string, timeout time.Duration, anchor AnchorFunc, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if anchor == nil {
		anchor = time.Now
	}
	return &Client{
		url:    url,
		anchor: anchor,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// URL returns the feed location
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and parses the feed
func (c *Client) Fetch(ctx context.Context) ([]models.UsageRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/tab-separated-values, text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	records, err := Parse(resp.Body, c.anchor(), c.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	c.logger.Debug("feed fetched", zap.String("url", c.url), zap.Int("records", len(records)))
	return records, nil
}

// Load fetches once and never fails: an empty or failed fetch is logged and
// replaced with an empty collection.
func Load(ctx context.Context, f Fetcher, logger *zap.Logger) []models.UsageRecord {
	if logger == nil {
		logger = zap.NewNop()
	}

	records, err := f.Fetch(ctx)
	if err != nil {
		logger.Warn("problem fetching data", zap.Error(err))
		return []models.UsageRecord{}
	}
	if len(records) == 0 {
		logger.Warn("problem fetching data, data was empty")
		return []models.UsageRecord{}
	}
	return records
}
