package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"stays_mcp/internal/adapters/hotelapi"
	server "stays_mcp/internal/adapters/http_server"
	"stays_mcp/internal/adapters/mcpserver"
	"stays_mcp/internal/adapters/observability"
	redisad "stays_mcp/internal/adapters/redis"
	"stays_mcp/internal/app"
	"stays_mcp/internal/domain"
	"stays_mcp/internal/shared"
	mysqlrepo "stays_mcp/internal/storage/mysql"
)

var version = "dev"

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// optional stores; leave the interfaces nil when not configured
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; caching disabled")
			_ = rc.Close()
		} else {
			cache = rc
			defer rc.Close()
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
		}
	}

	var searches domain.SearchLog
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Warn().Err(err).Msg("db.Ping failed; search log disabled")
			_ = db.Close()
		} else {
			searches = mysqlrepo.New(db)
			defer db.Close()
			log.Info().Msg("database connection ok")
		}
	}

	client := hotelapi.New(cfg.HotelAPIBase, cfg.HotelAPIHost, cfg.HotelAPIKey, cfg.HotelAPIRPS, cfg.HotelAPITimeout)
	svc := app.NewSearchService(client, cache, searches, cfg.CacheTTL, cfg.DefaultCurrency).
		WithUpstreamTimeout(cfg.SearchTimeout)

	mcpSrv := mcpserver.New(svc, mcpserver.Options{Version: version, PublicBaseURL: cfg.PublicBaseURL})

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc})
	srv.MountWidget()
	srv.MountMCP(mcpserver.SSEHandler(mcpSrv), mcpserver.StreamableHandler(mcpSrv))

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("sse", cfg.PublicBaseURL+"/sse").
			Str("mcp", cfg.PublicBaseURL+"/mcp").
			Bool("live_search", cfg.HotelAPIKey != "").
			Msg("MCP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(httpSrv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Dur("timeout", timeout).Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// open SSE streams never go idle, so Shutdown may time out; fall back to Close
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown incomplete; forcing close")
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("forced close failed")
		}
	}
	log.Info().Msg("server stopped")
}
