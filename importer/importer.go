package importer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mtheuszin1/adscale-deploy/config"
	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/media"
	"github.com/mtheuszin1/adscale-deploy/metrics"
	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/normalizer"
)

// AdWriter persists a chunk of ads.
type AdWriter interface {
	SaveAds(ctx context.Context, ads []models.Ad) error
}

// Refresher recomputes the intelligence snapshot after the corpus changed.
type Refresher interface {
	Refresh(ctx context.Context) (*models.LibraryIntelligence, error)
}

// Report summarizes one import batch.
type Report struct {
	Total    int         `json:"total"`
	Linked   int         `json:"linked"`
	Unlinked int         `json:"unlinked"`
	NoMedia  int         `json:"noMedia"`
	Ads      []models.Ad `json:"ads"`
}

type Importer struct {
	store     AdWriter
	refresher Refresher
	log       logger.Logger
	metrics   *metrics.Metrics

	Normalizer *normalizer.Normalizer
	Workers    int
	ChunkSize  int
}

// New builds an importer. refresher, log and m may be nil.
func New(store AdWriter, refresher Refresher, log logger.Logger, m *metrics.Metrics, cfg config.ImportConfig) *Importer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Importer{
		store:      store,
		refresher:  refresher,
		log:        log,
		metrics:    m,
		Normalizer: normalizer.New(),
		Workers:    max(1, cfg.Workers),
		ChunkSize:  max(1, cfg.ChunkSize),
	}
}

// Run normalizes records in parallel, keeping their order, saves the ads chunk by
// chunk and refreshes the snapshot. A failed chunk stops the import; chunks already
// written stay written.
func (im *Importer) Run(ctx context.Context, records []normalizer.RawRecord, assets *media.Library) (*Report, error) {
	start := time.Now()
	ads := make([]models.Ad, len(records))
	statuses := make([]media.LinkStatus, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.Workers)
	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ads[i], statuses[i] = im.Normalizer.Normalize(rec, assets)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("normalize records: %w", err)
	}

	report := &Report{Total: len(records), Ads: ads}
	for _, s := range statuses {
		switch s {
		case media.Linked:
			report.Linked++
		case media.Unlinked:
			report.Unlinked++
		default:
			report.NoMedia++
		}
		im.metrics.RecordNormalized(string(s))
	}

	for lo := 0; lo < len(ads); lo += im.ChunkSize {
		hi := min(lo+im.ChunkSize, len(ads))
		if err := im.store.SaveAds(ctx, ads[lo:hi]); err != nil {
			return nil, fmt.Errorf("save ads %d-%d: %w", lo, hi, err)
		}
	}

	if im.refresher != nil && len(ads) > 0 {
		if _, err := im.refresher.Refresh(ctx); err != nil {
			im.log.Warn("Snapshot refresh after import failed", logger.Error(err))
		}
	}

	im.log.Info("Import finished",
		logger.Int("total", report.Total),
		logger.Int("linked", report.Linked),
		logger.Int("unlinked", report.Unlinked),
		logger.Int("no_media", report.NoMedia),
		logger.Duration("duration", time.Since(start)),
	)
	return report, nil
}
