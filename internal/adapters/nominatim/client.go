package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

// API Docs: https://nominatim.org/release-docs/develop/api/Search/
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements ports.Geocoder with the Nominatim search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a Nominatim client. Nominatim's usage policy requires
// an identifying User-Agent.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *Client) Name() string { return "nominatim" }

// Geocode resolves address to its best match. No match is reported as
// ZERO_RESULTS and transport failures as UNKNOWN_ERROR.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.GeocodeError{Address: address, Status: "UNKNOWN_ERROR", Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.GeocodeError{
			Address: address,
			Status:  statusFor(resp.StatusCode),
			Err:     fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &domain.GeocodeError{Address: address, Status: "UNKNOWN_ERROR", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(results) == 0 {
		return nil, &domain.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return nil, &domain.GeocodeError{Address: address, Status: "UNKNOWN_ERROR", Err: fmt.Errorf("bad coordinates %q,%q", results[0].Lat, results[0].Lon)}
	}

	return &domain.GeocodeResult{
		Position:         domain.GeoPoint{Lat: lat, Lng: lng},
		FormattedAddress: results[0].DisplayName,
		Provider:         c.Name(),
	}, nil
}

func statusFor(code int) string {
	switch code {
	case http.StatusTooManyRequests:
		return "OVER_QUERY_LIMIT"
	case http.StatusForbidden, http.StatusUnauthorized:
		return "REQUEST_DENIED"
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	default:
		return "UNKNOWN_ERROR"
	}
}
