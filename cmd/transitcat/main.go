package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"transitcat/internal/catalog"
	"transitcat/internal/config"
	"transitcat/internal/ingest"
	"transitcat/internal/query"
	"transitcat/internal/router"
	"transitcat/internal/server"
	"transitcat/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.IngestPath, "ingest", cfg.IngestPath, "path to the request envelope (json) or stops CSV (csv mode)")
	flag.StringVar(&cfg.IngestKind, "ingest-kind", cfg.IngestKind, "ingest format: json or csv")
	flag.BoolVar(&cfg.HTTPEnabled, "serve", cfg.HTTPEnabled, "start the read-only HTTP query API instead of running a batch")
	flag.IntVar(&cfg.HTTPPort, "port", cfg.HTTPPort, "HTTP server port")
	flag.Parse()

	if cfg.IngestPath == "" {
		logger.Error("no ingest source given; pass -ingest")
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open audit database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	c, settings, statRequests, ingestErr := buildCatalog(cfg)

	run := storage.IngestRun{
		SourceKind: cfg.IngestKind,
		SourcePath: cfg.IngestPath,
		Duration:   time.Since(start),
		Succeeded:  ingestErr == nil,
		Err:        ingestErr,
	}
	if c != nil {
		run.StopCount = len(c.StopNames())
		run.BusCount = len(c.Buses())
	}
	runID, recErr := db.RecordIngestRun(ctx, run)
	if recErr != nil {
		logger.Warn("failed to record ingest run", "error", recErr)
	}
	if ingestErr != nil {
		logger.Error("ingest failed", "error", ingestErr)
		os.Exit(1)
	}

	rt := router.New(c, settings)

	var cache query.Cache
	if cfg.CacheEnabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.CacheAddr})
		cache = query.NewRedisCache(client, cfg.CacheTTL, generationTag(runID))
	}
	facade := query.New(c, rt, cache, logger)

	if cfg.HTTPEnabled {
		runServer(ctx, cfg, facade, logger)
		return
	}

	runBatch(ctx, db, runID, facade, statRequests, logger)
}

func buildCatalog(cfg *config.Config) (*catalog.Catalog, catalog.RoutingSettings, []query.Request, error) {
	f, err := os.Open(cfg.IngestPath)
	if err != nil {
		return nil, catalog.RoutingSettings{}, nil, err
	}
	defer f.Close()

	switch cfg.IngestKind {
	case "csv":
		requests, err := ingest.DecodeCSV(f, nil)
		if err != nil {
			return nil, catalog.RoutingSettings{}, nil, err
		}
		settings := catalog.RoutingSettings{
			BusWaitTime: cfg.DefaultBusWaitTime,
			BusVelocity: cfg.DefaultBusVelocity,
		}
		c, err := catalog.New(requests, nil)
		return c, settings, nil, err
	default:
		env, err := ingest.DecodeJSON(f)
		if err != nil {
			return nil, catalog.RoutingSettings{}, nil, err
		}
		settings := env.RoutingSettings
		if settings == (catalog.RoutingSettings{}) {
			settings = catalog.RoutingSettings{
				BusWaitTime: cfg.DefaultBusWaitTime,
				BusVelocity: cfg.DefaultBusVelocity,
			}
		}
		c, err := catalog.New(env.BaseRequests, nil)
		return c, settings, env.StatRequests, err
	}
}

func runBatch(ctx context.Context, db *storage.DB, runID int64, facade *query.Facade, requests []query.Request, logger *slog.Logger) {
	responses := make([]query.Response, len(requests))
	for i, req := range requests {
		start := time.Now()
		resp := facade.Run(requests[i : i+1])[0]
		elapsed := time.Since(start)
		responses[i] = resp
		kind, found := describe(resp)
		if err := db.RecordQuery(ctx, storage.QueryLogEntry{
			IngestRunID: runID,
			RequestID:   req.RequestID(),
			RequestKind: kind,
			Found:       found,
			Duration:    elapsed,
		}); err != nil {
			logger.Warn("failed to record query", "error", err)
		}
	}

	if err := json.NewEncoder(os.Stdout).Encode(responses); err != nil {
		logger.Error("failed to encode responses", "error", err)
		os.Exit(1)
	}
}

func describe(resp query.Response) (kind string, found bool) {
	switch r := resp.(type) {
	case query.BusResponse:
		return "bus", r.Found
	case query.StopResponse:
		return "stop", r.Found
	case query.RouteResponse:
		return "route", r.Found
	case query.MapResponse:
		return "map", false
	default:
		return "unknown", false
	}
}

func runServer(ctx context.Context, cfg *config.Config, facade *query.Facade, logger *slog.Logger) {
	srv := server.New(cfg, facade, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		os.Exit(0)
	}()
	_ = ctx

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func generationTag(runID int64) string {
	return "run-" + strconv.FormatInt(runID, 10)
}
