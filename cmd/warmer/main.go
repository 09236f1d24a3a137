package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stays_mcp/internal/adapters/hotelapi"
	"stays_mcp/internal/adapters/observability"
	redisad "stays_mcp/internal/adapters/redis"
	"stays_mcp/internal/app"
	"stays_mcp/internal/domain"
	"stays_mcp/internal/shared"
)

// stay is one cache entry to warm. Cache keys are exact on dates and guests, so
// only searches for the same window with default guests hit a warmed entry.
type stay struct {
	dest     string
	checkIn  string
	checkOut string
}

// upcomingWeekends returns the next n Friday-to-Sunday windows after now.
func upcomingWeekends(now time.Time, n int) [][2]string {
	if n < 0 {
		n = 0
	}
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	out := make([][2]string, 0, n)
	for i := 0; i < n; i++ {
		in := d.AddDate(0, 0, 7*i)
		out = append(out, [2]string{in.Format(time.DateOnly), in.AddDate(0, 0, 2).Format(time.DateOnly)})
	}
	return out
}

func plan(dests []string, weekends [][2]string) []stay {
	var out []stay
	for _, d := range dests {
		out = append(out, stay{dest: d})
		for _, w := range weekends {
			out = append(out, stay{dest: d, checkIn: w[0], checkOut: w[1]})
		}
	}
	return out
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.HotelAPIBase).
		Int("workers", cfg.WarmWorkers).
		Int("weekends", cfg.WarmWeekends).
		Strs("destinations", cfg.WarmDests).
		Msg("cache warmer starting")

	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required for warming")
	}
	if cfg.HotelAPIKey == "" {
		log.Fatal().Msg("HOTEL_API_KEY is required for warming")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	client := hotelapi.New(cfg.HotelAPIBase, cfg.HotelAPIHost, cfg.HotelAPIKey, cfg.HotelAPIRPS, cfg.HotelAPITimeout)
	// no route timeout to stay under here; give each fetch the full per-request budget
	svc := app.NewSearchService(client, cache, nil, cfg.CacheTTL, cfg.DefaultCurrency).
		WithUpstreamTimeout(cfg.HotelAPITimeout)

	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}
	stays := plan(cfg.WarmDests, upcomingWeekends(time.Now(), cfg.WarmWeekends))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var warmed int32
	start := time.Now()

	for _, s := range stays {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(s stay) {
			defer wg.Done()
			defer sem.Release(1)

			l := log.With().Str("destination", s.dest).Str("check_in", s.checkIn).Logger()
			n, source, err := svc.Prefetch(ctx, s.dest, s.checkIn, s.checkOut)
			if err != nil {
				l.Warn().Err(err).Msg("warm failed")
				return
			}
			if source == domain.SourceMock {
				l.Warn().Msg("upstream unavailable; nothing cached")
				return
			}
			atomic.AddInt32(&warmed, 1)
			l.Info().Int("stays", n).Str("source", string(source)).Msg("warm ok")
		}(s)
	}

	wg.Wait()
	log.Info().
		Int32("warmed", atomic.LoadInt32(&warmed)).
		Int("total", len(stays)).
		Dur("took", time.Since(start)).
		Msg("warming completed")
}
