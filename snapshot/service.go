package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mtheuszin1/adscale-deploy/intelligence"
	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/metrics"
	"github.com/mtheuszin1/adscale-deploy/models"
)

// CorpusSource yields the current ad corpus.
type CorpusSource interface {
	AllAds(ctx context.Context) ([]models.Ad, error)
}

// Service hands out the snapshot of the current corpus. Recomputations are
// serialized; the returned snapshot must be treated as read-only.
type Service struct {
	source  CorpusSource
	cache   Cache
	log     logger.Logger
	metrics *metrics.Metrics

	Engine *intelligence.Engine

	mu sync.Mutex
}

// NewService wires a service. A nil cache falls back to an unbounded MemoryCache and
// a nil log to a no-op logger.
func NewService(source CorpusSource, cache Cache, log logger.Logger, m *metrics.Metrics) *Service {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		source:  source,
		cache:   cache,
		log:     log,
		metrics: m,
		Engine:  intelligence.New(),
	}
}

// Current returns the snapshot for the corpus as it is now. Source errors, including
// an empty corpus, are returned unchanged.
func (s *Service) Current(ctx context.Context) (*models.LibraryIntelligence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx)
}

// Refresh drops cached snapshots and recomputes.
func (s *Service) Refresh(ctx context.Context) (*models.LibraryIntelligence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Failed to invalidate snapshot cache", logger.Error(err))
	}
	return s.current(ctx)
}

func (s *Service) current(ctx context.Context) (*models.LibraryIntelligence, error) {
	ads, err := s.source.AllAds(ctx)
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, intelligence.ErrEmptyCorpus
	}

	key := Fingerprint(ads)
	intel, err := s.cache.Get(ctx, key)
	if err == nil {
		s.metrics.RecordCacheHit()
		return intel, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.Warn("Snapshot cache read failed",
			logger.String("key", key),
			logger.Error(err),
		)
	}

	start := time.Now()
	intel, err = s.Engine.Compute(ads)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	s.metrics.RecordSnapshot(elapsed, len(ads), intel.FalsePositivePatterns.HypeAdsDetected)
	s.log.Info("Intelligence snapshot computed",
		logger.String("key", key),
		logger.Int("total_ads", len(ads)),
		logger.Int("hype_ads", intel.FalsePositivePatterns.HypeAdsDetected),
		logger.Duration("duration", elapsed),
	)

	if err := s.cache.Put(ctx, key, intel); err != nil {
		s.log.Warn("Snapshot cache write failed",
			logger.String("key", key),
			logger.Error(err),
		)
	}
	return intel, nil
}
