package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/ports"
	"github.com/samirrijal/bikepark/internal/pkg/metrics"
)

// MaxRecords is how many feed features are consumed.
const MaxRecords = 30

// Feed property keys.
const (
	PropName           = "NAME"
	PropAddress        = "ADDRESS"
	PropRackOwner      = "RACK_OWNER"
	PropTotalCapacity  = "TOTAL_CAPACITY"
	PropCovered        = "COVERED"
	PropRackType       = "RACK_TYPE"
	PropNearbyLighting = "NEARBY_LIGHTING"
)

var idProps = []string{"OBJECTID", "FID"}

// LocationStore loads location records from the GIS feed.
type LocationStore struct {
	feed     ports.FeedSource
	cache    ports.CacheService
	cacheTTL int
}

// NewLocationStore creates a new LocationStore. cache may be nil.
func NewLocationStore(feed ports.FeedSource, cache ports.CacheService, cacheTTL int) *LocationStore {
	return &LocationStore{feed: feed, cache: cache, cacheTTL: cacheTTL}
}

// Load fetches the feed and returns at most MaxRecords records in feed
// order. On failure it logs and returns a *domain.FetchError.
func (s *LocationStore) Load(ctx context.Context, feedURL string) ([]domain.LocationRecord, error) {
	cacheKey := feedCacheKey(feedURL)
	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var records []domain.LocationRecord
			if err := json.Unmarshal(data, &records); err == nil {
				metrics.CacheHits.WithLabelValues("feed").Inc()
				return records, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("feed").Inc()
	}

	fc, err := s.feed.FetchFeatures(ctx, feedURL)
	if err != nil {
		ferr := &domain.FetchError{URL: feedURL, Err: err}
		slog.ErrorContext(ctx, "feed load failed", "url", feedURL, "error", err)
		return nil, ferr
	}
	if fc == nil {
		ferr := &domain.FetchError{URL: feedURL, Err: fmt.Errorf("empty feature collection")}
		slog.ErrorContext(ctx, "feed load failed", "url", feedURL, "error", ferr.Err)
		return nil, ferr
	}

	records := ParseRecords(ctx, fc)

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(records); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return records, nil
}

// Refresh drops any cached copy of the feed and loads it again.
func (s *LocationStore) Refresh(ctx context.Context, feedURL string) ([]domain.LocationRecord, error) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, feedCacheKey(feedURL)); err != nil {
			slog.WarnContext(ctx, "feed cache delete failed", "url", feedURL, "error", err)
		}
	}
	return s.Load(ctx, feedURL)
}

func feedCacheKey(feedURL string) string {
	return "feed:records:" + feedURL
}

// ParseRecords converts the first MaxRecords features into records.
// Features without a point geometry are skipped.
func ParseRecords(ctx context.Context, fc *geojson.FeatureCollection) []domain.LocationRecord {
	features := fc.Features
	if len(features) > MaxRecords {
		features = features[:MaxRecords]
	}

	records := make([]domain.LocationRecord, 0, len(features))
	seen := make(map[string]int, len(features))
	for i, f := range features {
		if f == nil {
			continue
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			slog.WarnContext(ctx, "skipping feature without point geometry", "index", i)
			continue
		}

		id := uniqueID(seen, featureID(f))

		records = append(records, domain.LocationRecord{
			ID:             id,
			Coordinates:    domain.GeoPoint{Lat: pt.Lat(), Lng: pt.Lon()},
			Name:           propString(f.Properties, PropName),
			Address:        propString(f.Properties, PropAddress),
			RackOwner:      propString(f.Properties, PropRackOwner),
			TotalCapacity:  propString(f.Properties, PropTotalCapacity),
			Covered:        propString(f.Properties, PropCovered),
			RackType:       propString(f.Properties, PropRackType),
			NearbyLighting: rawString(f.Properties, PropNearbyLighting),
		})
	}
	return records
}

// uniqueID returns id, or id-N with the smallest N not issued yet. Every
// returned ID is recorded in seen, suffixed ones included.
func uniqueID(seen map[string]int, id string) string {
	if _, dup := seen[id]; !dup {
		seen[id] = 0
		return id
	}
	base := id
	for n := seen[base] + 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := seen[candidate]; !taken {
			seen[base] = n
			seen[candidate] = 0
			return candidate
		}
	}
}

func featureID(f *geojson.Feature) string {
	if f.ID != nil {
		if id := stringify(f.ID); id != "" {
			return id
		}
	}
	for _, key := range idProps {
		if id := propString(f.Properties, key); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

func propString(props geojson.Properties, key string) string {
	if props == nil {
		return ""
	}
	v, ok := props[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

// rawString reads a property without normalising it. Lighting is matched
// against the exact feed text, so " Yes " and true stay unlit.
func rawString(props geojson.Properties, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(t)
	}
}
