package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/bikepark/internal/pkg/metrics"
	"github.com/samirrijal/bikepark/internal/pkg/telemetry"
)

// maxBody bounds how much of the feed response is read.
const maxBody = 32 << 20

// Client implements ports.FeedSource over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a feed client with the given request timeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// FetchFeatures downloads feedURL and decodes it as a GeoJSON FeatureCollection.
func (c *Client) FetchFeatures(ctx context.Context, feedURL string) (*geojson.FeatureCollection, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "feed.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("feed.url", feedURL))

	start := time.Now()
	fc, err := c.fetch(ctx, feedURL)
	metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FeedFetchErrors.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("feed.features", len(fc.Features)))
	return fc, nil
}

func (c *Client) fetch(ctx context.Context, feedURL string) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	return fc, nil
}
