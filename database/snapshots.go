package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/snapshot"
)

// IntelligenceSnapshotRecord persists one snapshot keyed by corpus fingerprint.
type IntelligenceSnapshotRecord struct {
	Fingerprint string         `gorm:"primaryKey"`
	Payload     datatypes.JSON `gorm:"not null"`
	TotalAds    int
	ComputedAt  time.Time `gorm:"index"`
	ExpiresAt   *time.Time
}

func (IntelligenceSnapshotRecord) TableName() string { return "intelligence_snapshots" }

// SnapshotStore is a snapshot.Cache kept in the database, so snapshots survive restarts.
type SnapshotStore struct {
	db  *gorm.DB
	ttl time.Duration
	Now func() time.Time
}

var _ snapshot.Cache = (*SnapshotStore)(nil)

func NewSnapshotStore(db *gorm.DB, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{db: db, ttl: ttl, Now: time.Now}
}

func (s *SnapshotStore) Get(ctx context.Context, key string) (*models.LibraryIntelligence, error) {
	var rec IntelligenceSnapshotRecord
	err := s.db.WithContext(ctx).First(&rec, "fingerprint = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, snapshot.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if rec.ExpiresAt != nil && !s.Now().Before(*rec.ExpiresAt) {
		return nil, snapshot.ErrCacheMiss
	}

	var intel models.LibraryIntelligence
	if err := json.Unmarshal(rec.Payload, &intel); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &intel, nil
}

func (s *SnapshotStore) Put(ctx context.Context, key string, intel *models.LibraryIntelligence) error {
	payload, err := json.Marshal(intel)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rec := IntelligenceSnapshotRecord{
		Fingerprint: key,
		Payload:     datatypes.JSON(payload),
		TotalAds:    intel.GlobalStats.TotalAds,
		ComputedAt:  intel.LastAnalysis,
	}
	if s.ttl > 0 {
		expires := s.Now().Add(s.ttl).UTC()
		rec.ExpiresAt = &expires
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Invalidate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&IntelligenceSnapshotRecord{}).Error; err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
