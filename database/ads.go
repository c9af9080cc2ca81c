package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mtheuszin1/adscale-deploy/models"
)

// DefaultChunkSize is how many ads are written per insert statement.
const DefaultChunkSize = 50

var ErrAdNotFound = errors.New("ad not found")

// AdFilter narrows ListAds. Zero values match everything.
type AdFilter struct {
	Niche    models.Niche
	Platform models.Platform
	Status   models.AdStatus
	Region   string
	Limit    int

	// VisibleOnly drops ads hidden by curation.
	VisibleOnly bool
}

// CurationUpdate changes how an ad is presented. Nil fields are left as they are.
type CurationUpdate struct {
	IsFeatured   *bool `json:"isFeatured"`
	DisplayOrder *int  `json:"displayOrder"`
	IsVisible    *bool `json:"isVisible"`
}

// curationColumns are only written by UpdateCuration, so re-importing an ad keeps them.
var curationColumns = map[string]bool{
	"is_featured":   true,
	"display_order": true,
	"is_visible":    true,
}

// Store is the gorm-backed ad corpus.
type Store struct {
	db        *gorm.DB
	ChunkSize int
	Now       func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, ChunkSize: DefaultChunkSize, Now: time.Now}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) ListAds(ctx context.Context, f AdFilter) ([]models.Ad, error) {
	query := s.db.WithContext(ctx).Model(&models.Ad{})

	if f.Niche != "" {
		query = query.Where("niche = ?", f.Niche)
	}
	if f.Platform != "" {
		query = query.Where("platform = ?", f.Platform)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Region != "" {
		query = query.Where("json_extract(targeting, '$.locations[0].code') = ?", f.Region)
	}
	if f.VisibleOnly {
		query = query.Where("is_visible = ?", true)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var ads []models.Ad
	if err := query.Order("added_at DESC").Order("id").Find(&ads).Error; err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	return ads, nil
}

// AllAds returns the whole corpus in a stable order.
func (s *Store) AllAds(ctx context.Context) ([]models.Ad, error) {
	return s.ListAds(ctx, AdFilter{})
}

func (s *Store) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	var ad models.Ad
	err := s.db.WithContext(ctx).First(&ad, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAdNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get ad %s: %w", id, err)
	}
	return &ad, nil
}

// SaveAds upserts imported ads in chunks and appends one history row per ad. Curation
// fields of ads that already exist are kept.
func (s *Store) SaveAds(ctx context.Context, ads []models.Ad) error {
	return s.upsert(ctx, ads, true)
}

// UpdateAds rewrites whole ads without touching their history.
func (s *Store) UpdateAds(ctx context.Context, ads []models.Ad) error {
	return s.upsert(ctx, ads, false)
}

func (s *Store) upsert(ctx context.Context, ads []models.Ad, imported bool) error {
	if len(ads) == 0 {
		return nil
	}
	chunk := s.ChunkSize
	if chunk < 1 {
		chunk = DefaultChunkSize
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}
		if imported {
			cols, err := importColumns(tx)
			if err != nil {
				return err
			}
			onConflict.UpdateAll = false
			onConflict.DoUpdates = clause.AssignmentColumns(cols)
		}

		if err := tx.Clauses(onConflict).CreateInBatches(ads, chunk).Error; err != nil {
			return fmt.Errorf("save ads: %w", err)
		}
		if !imported {
			return nil
		}

		now := s.Now().UTC()
		history := make([]models.AdHistory, len(ads))
		for i, ad := range ads {
			history[i] = models.AdHistory{
				ID:        uuid.NewString(),
				AdID:      ad.ID,
				AdCount:   ad.AdCount,
				Timestamp: now,
			}
		}
		if err := tx.CreateInBatches(history, chunk).Error; err != nil {
			return fmt.Errorf("save ad history: %w", err)
		}
		return nil
	})
}

func importColumns(db *gorm.DB) ([]string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&models.Ad{}); err != nil {
		return nil, fmt.Errorf("parse ad schema: %w", err)
	}
	cols := make([]string, 0, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		if name != "id" && !curationColumns[name] {
			cols = append(cols, name)
		}
	}
	return cols, nil
}

// UpdateCuration applies the non-nil fields of u to ad id.
func (s *Store) UpdateCuration(ctx context.Context, id string, u CurationUpdate) error {
	updates := make(map[string]any, 3)
	if u.IsFeatured != nil {
		updates["is_featured"] = *u.IsFeatured
	}
	if u.DisplayOrder != nil {
		updates["display_order"] = *u.DisplayOrder
	}
	if u.IsVisible != nil {
		updates["is_visible"] = *u.IsVisible
	}

	query := s.db.WithContext(ctx).Model(&models.Ad{}).Where("id = ?", id)
	if len(updates) == 0 {
		var n int64
		if err := query.Count(&n).Error; err != nil {
			return fmt.Errorf("update curation %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrAdNotFound, id)
		}
		return nil
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update curation %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrAdNotFound, id)
	}
	return nil
}

// FeaturedAds returns the visible ads in curation order: featured first by display
// order, then everything else by active ad count.
func (s *Store) FeaturedAds(ctx context.Context, limit int) ([]models.Ad, error) {
	query := s.db.WithContext(ctx).
		Where("is_visible = ?", true).
		Order("is_featured DESC").
		Order("CASE WHEN is_featured THEN display_order ELSE 0 END").
		Order("ad_count DESC").
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ads []models.Ad
	if err := query.Find(&ads).Error; err != nil {
		return nil, fmt.Errorf("featured ads: %w", err)
	}
	return ads, nil
}

func (s *Store) DeleteAd(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Ad{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete ad %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrAdNotFound, id)
		}
		if err := tx.Delete(&models.AdHistory{}, "ad_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete ad history %s: %w", id, err)
		}
		return nil
	})
}

// ClearAds removes every ad and its history.
func (s *Store) ClearAds(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.AdHistory{}).Error; err != nil {
			return fmt.Errorf("clear ad history: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Ad{}).Error; err != nil {
			return fmt.Errorf("clear ads: %w", err)
		}
		return nil
	})
}

func (s *Store) CountAds(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Ad{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count ads: %w", err)
	}
	return n, nil
}

// AdHistoryFor returns the recorded adCount samples of id, oldest first.
func (s *Store) AdHistoryFor(ctx context.Context, id string) ([]models.AdHistory, error) {
	var rows []models.AdHistory
	err := s.db.WithContext(ctx).
		Where("ad_id = ?", id).
		Order("timestamp").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ad history %s: %w", id, err)
	}
	return rows, nil
}

// AdStats are the headline counters of the dashboard.
type AdStats struct {
	Total     int64 `json:"total"`
	Scaling   int64 `json:"scaling"`
	Validated int64 `json:"validated"`
	Testing   int64 `json:"testing"`
	Niches    int64 `json:"niches"`
	Platforms int64 `json:"platforms"`
	Featured  int64 `json:"featured"`
}

func (s *Store) Stats(ctx context.Context) (AdStats, error) {
	db := s.db.WithContext(ctx)
	var st AdStats

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&st.Total, db.Model(&models.Ad{})},
		{&st.Scaling, db.Model(&models.Ad{}).Where("status = ?", models.StatusScaling)},
		{&st.Validated, db.Model(&models.Ad{}).Where("status = ?", models.StatusValidated)},
		{&st.Testing, db.Model(&models.Ad{}).Where("status = ?", models.StatusTesting)},
		{&st.Niches, db.Model(&models.Ad{}).Distinct("niche")},
		{&st.Platforms, db.Model(&models.Ad{}).Distinct("platform")},
		{&st.Featured, db.Model(&models.Ad{}).Where("is_featured = ?", true)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return AdStats{}, fmt.Errorf("ad stats: %w", err)
		}
	}
	return st, nil
}
