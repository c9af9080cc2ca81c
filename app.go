package main

import (
	"errors"
	"fmt"

	"github.com/mtheuszin1/adscale-deploy/config"
	"github.com/mtheuszin1/adscale-deploy/database"
	"github.com/mtheuszin1/adscale-deploy/importer"
	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/metrics"
	"github.com/mtheuszin1/adscale-deploy/snapshot"
)

// app holds the components every command shares.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	metrics   *metrics.Metrics
	store     *database.Store
	snapshots *snapshot.Service
	importer  *importer.Importer

	closers []func() error
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	if err := database.InitDB(cfg.Database); err != nil {
		return nil, err
	}
	store := database.NewStore(database.GetDB())
	store.ChunkSize = cfg.Import.ChunkSize

	a := &app{cfg: cfg, log: log, metrics: metrics.Default(), store: store}

	cache, closeCache, err := newCache(cfg.Cache, store)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		a.closers = append(a.closers, closeCache)
	}
	if sqlDB, err := store.DB().DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	a.snapshots = snapshot.NewService(store, cache, log, a.metrics)
	a.importer = importer.New(store, a.snapshots, log, a.metrics, cfg.Import)

	log.Debug("Application initialized",
		logger.String("database", cfg.Database.Path),
		logger.String("cache", cfg.Cache.Driver),
	)
	return a, nil
}

// newCache builds the snapshot cache for cfg.Driver. The returned func, when not nil,
// releases the connection.
func newCache(cfg config.CacheConfig, store *database.Store) (snapshot.Cache, func() error, error) {
	switch cfg.Driver {
	case config.CacheMemory:
		return snapshot.NewMemoryCache(cfg.TTL), nil, nil
	case config.CacheDatabase:
		return database.NewSnapshotStore(store.DB(), cfg.TTL), nil, nil
	case config.CacheRedis:
		client, err := snapshot.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewRedisCache(client, cfg.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}
