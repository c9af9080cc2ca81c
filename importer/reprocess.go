package importer

import (
	"context"
	"fmt"

	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/metrics"
	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/normalizer"
)

// CorpusStore reads the corpus and rewrites ads in place.
type CorpusStore interface {
	AllAds(ctx context.Context) ([]models.Ad, error)
	UpdateAds(ctx context.Context, ads []models.Ad) error
}

// ReprocessReport tells how many ads a reprocess rewrote.
type ReprocessReport struct {
	Total   int `json:"total"`
	Changed int `json:"changed"`
}

// Reprocess re-runs region, niche and status inference over the stored corpus and
// writes back the ads that changed. The snapshot is refreshed only when something did.
func Reprocess(ctx context.Context, store CorpusStore, refresher Refresher, log logger.Logger, m *metrics.Metrics) (*ReprocessReport, error) {
	if log == nil {
		log = logger.NewNop()
	}

	corpus, err := store.AllAds(ctx)
	if err != nil {
		return nil, err
	}

	changed := normalizer.ReprocessRegionAndStatus(corpus)
	report := &ReprocessReport{Total: len(corpus), Changed: len(changed)}
	if len(changed) == 0 {
		log.Info("Reprocess found nothing to update", logger.Int("total", report.Total))
		return report, nil
	}

	if err := store.UpdateAds(ctx, changed); err != nil {
		return nil, fmt.Errorf("update reprocessed ads: %w", err)
	}
	m.RecordReprocessed(len(changed))

	if refresher != nil {
		if _, err := refresher.Refresh(ctx); err != nil {
			log.Warn("Snapshot refresh after reprocess failed", logger.Error(err))
		}
	}

	log.Info("Reprocess finished",
		logger.Int("total", report.Total),
		logger.Int("changed", report.Changed),
	)
	return report, nil
}
