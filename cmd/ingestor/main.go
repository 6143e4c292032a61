package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/bikepark/internal/adapters/feed"
	"github.com/samirrijal/bikepark/internal/adapters/valkey"
	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/ports"
	"github.com/samirrijal/bikepark/internal/core/usecases"
	"github.com/samirrijal/bikepark/internal/pkg/config"
	"github.com/samirrijal/bikepark/internal/pkg/logging"
)

// ingestor loads the bike-parking feed once, reports what the map would
// show and, when Valkey is configured, stores the records so API replicas
// start from a warm cache.
func main() {
	feedURL := flag.String("feed", "", "feed URL (overrides feed.url)")
	flag.Parse()

	if *feedURL != "" {
		os.Setenv("BIKEPARK_FEED_URL", *feedURL)
	}

	cfg, err := config.Load("bikepark-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Duration(cfg.Feed.Timeout)*time.Second)
	defer cancel()

	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer vc.Close()
		cache = vc
	}

	client := feed.NewClient(time.Duration(cfg.Feed.Timeout)*time.Second, cfg.Maps.UserAgent)
	store := usecases.NewLocationStore(client, cache, cfg.Feed.CacheTTL)

	start := time.Now()
	records, err := store.Refresh(ctx, cfg.Feed.URL)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}

	s := summarize(records)
	slog.Info("feed ingested",
		"url", cfg.Feed.URL,
		"records", s.Total,
		"lit", s.Lit,
		"missing_address", s.MissingAddress,
		"cached", cache != nil,
		"took", time.Since(start).String(),
	)
	fmt.Printf("%d records (%d lit, %d without address)\n", s.Total, s.Lit, s.MissingAddress)
}

type summary struct {
	Total          int
	Lit            int
	MissingAddress int
}

func summarize(records []domain.LocationRecord) summary {
	s := summary{Total: len(records)}
	for _, r := range records {
		if usecases.LitNearby(r) {
			s.Lit++
		}
		if r.Address == "" {
			s.MissingAddress++
		}
	}
	return s
}
