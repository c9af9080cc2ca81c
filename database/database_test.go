package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtheuszin1/adscale-deploy/config"
	"github.com/mtheuszin1/adscale-deploy/database"
	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/snapshot"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	store := database.NewStore(db)
	store.Now = func() time.Time { return t0 }
	return store
}

func ad(id string, niche models.Niche, platform models.Platform, adCount int, region string, added time.Time) models.Ad {
	return models.Ad{
		ID:        id,
		Title:     "Ad " + id,
		Platform:  platform,
		Niche:     niche,
		Status:    models.StatusForAdCount(adCount),
		AdCount:   adCount,
		AddedAt:   added,
		IsVisible: true,
		Tags:      []string{string(niche), "Meta Data"},
		Performance: models.Performance{
			EstimatedCtr: 2.5,
			DaysActive:   7,
			Momentum:     []int{10, 20, 30, 40, adCount},
		},
		Targeting: models.Targeting{
			Locations: []models.AdLocation{{Country: region, Code: region, Volume: adCount * 100}},
		},
	}
}

func TestInitDB(t *testing.T) {
	require.NoError(t, database.InitDB(config.DatabaseConfig{Path: database.MemoryPath}))
	assert.NotNil(t, database.GetDB())
}

func TestSaveAndGetAd(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	want := ad("a1", models.NicheHealth, models.PlatformMeta, 45, "BR", t0)
	require.NoError(t, store.SaveAds(ctx, []models.Ad{want}))

	got, err := store.GetAd(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Tags, got.Tags)
	assert.Equal(t, want.Performance, got.Performance)
	assert.Equal(t, want.Targeting, got.Targeting)
	assert.Equal(t, "BR", got.RegionCode())
	assert.True(t, want.AddedAt.Equal(got.AddedAt))
}

func TestGetAd_NotFound(t *testing.T) {
	_, err := newStore(t).GetAd(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrAdNotFound)
}

func TestSaveAds_UpsertAppendsHistory(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveAds(ctx, []models.Ad{ad("a1", models.NicheHealth, models.PlatformMeta, 12, "BR", t0)}))
	store.Now = func() time.Time { return t0.Add(24 * time.Hour) }
	require.NoError(t, store.SaveAds(ctx, []models.Ad{ad("a1", models.NicheHealth, models.PlatformMeta, 35, "BR", t0)}))

	got, err := store.GetAd(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 35, got.AdCount)
	assert.Equal(t, models.StatusScaling, got.Status)

	n, err := store.CountAds(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	history, err := store.AdHistoryFor(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 12, history[0].AdCount)
	assert.Equal(t, 35, history[1].AdCount)
	assert.True(t, history[0].Timestamp.Before(history[1].Timestamp))
}

func TestSaveAds_Chunked(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	store.ChunkSize = 50

	ads := make([]models.Ad, 120)
	for i := range ads {
		ads[i] = ad(fmt.Sprintf("ad-%03d", i), models.NicheFinance, models.PlatformTikTok, i, "US", t0)
	}
	require.NoError(t, store.SaveAds(ctx, ads))

	n, err := store.CountAds(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120), n)
}

func TestSaveAds_Empty(t *testing.T) {
	assert.NoError(t, newStore(t).SaveAds(context.Background(), nil))
}

func TestUpdateAds_NoHistory(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := ad("a1", models.NicheHealth, models.PlatformMeta, 12, "BR", t0)
	require.NoError(t, store.SaveAds(ctx, []models.Ad{a}))

	a.Status = models.StatusTesting
	require.NoError(t, store.UpdateAds(ctx, []models.Ad{a}))

	got, err := store.GetAd(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTesting, got.Status)

	history, err := store.AdHistoryFor(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestListAds(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveAds(ctx, []models.Ad{
		ad("old", models.NicheHealth, models.PlatformMeta, 40, "BR", t0),
		ad("mid", models.NicheFinance, models.PlatformTikTok, 15, "US", t0.Add(time.Hour)),
		ad("new", models.NicheHealth, models.PlatformTikTok, 3, "BR", t0.Add(2*time.Hour)),
	}))

	ids := func(f database.AdFilter) []string {
		ads, err := store.ListAds(ctx, f)
		require.NoError(t, err)
		out := make([]string, len(ads))
		for i, a := range ads {
			out[i] = a.ID
		}
		return out
	}

	assert.Equal(t, []string{"new", "mid", "old"}, ids(database.AdFilter{}))
	assert.Equal(t, []string{"new", "old"}, ids(database.AdFilter{Niche: models.NicheHealth}))
	assert.Equal(t, []string{"new", "mid"}, ids(database.AdFilter{Platform: models.PlatformTikTok}))
	assert.Equal(t, []string{"old"}, ids(database.AdFilter{Status: models.StatusScaling}))
	assert.Equal(t, []string{"mid"}, ids(database.AdFilter{Region: "US"}))
	assert.Equal(t, []string{"new"}, ids(database.AdFilter{Limit: 1}))
	assert.Empty(t, ids(database.AdFilter{Niche: models.NicheBetting}))

	all, err := store.AllAds(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteAd(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveAds(ctx, []models.Ad{
		ad("a1", models.NicheHealth, models.PlatformMeta, 40, "BR", t0),
		ad("a2", models.NicheHealth, models.PlatformMeta, 40, "BR", t0),
	}))

	require.NoError(t, store.DeleteAd(ctx, "a1"))

	_, err := store.GetAd(ctx, "a1")
	assert.ErrorIs(t, err, database.ErrAdNotFound)
	history, err := store.AdHistoryFor(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.ErrorIs(t, store.DeleteAd(ctx, "a1"), database.ErrAdNotFound)

	n, err := store.CountAds(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClearAds(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveAds(ctx, []models.Ad{ad("a1", models.NicheHealth, models.PlatformMeta, 40, "BR", t0)}))

	require.NoError(t, store.ClearAds(ctx))

	n, err := store.CountAds(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	history, err := store.AdHistoryFor(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	now := t0
	snapshots := database.NewSnapshotStore(store.DB(), time.Hour)
	snapshots.Now = func() time.Time { return now }

	intel := &models.LibraryIntelligence{
		GlobalStats: models.GlobalStats{TotalAds: 3, ScalingPercentage: 66.5},
		Baselines: map[models.Platform]models.PlatformBaseline{
			models.PlatformMeta: {MinCtrForScale: 5.5, MinDaysForScale: 13, MinAdCountForScale: 20, SuspiciousCtrLimit: 14.3},
		},
		LastAnalysis: t0,
	}

	_, err := snapshots.Get(ctx, "fp")
	assert.ErrorIs(t, err, snapshot.ErrCacheMiss)

	require.NoError(t, snapshots.Put(ctx, "fp", intel))
	got, err := snapshots.Get(ctx, "fp")
	require.NoError(t, err)
	assert.Equal(t, intel.GlobalStats, got.GlobalStats)
	assert.Equal(t, intel.Baselines, got.Baselines)

	intel.GlobalStats.TotalAds = 4
	require.NoError(t, snapshots.Put(ctx, "fp", intel))
	got, err = snapshots.Get(ctx, "fp")
	require.NoError(t, err)
	assert.Equal(t, 4, got.GlobalStats.TotalAds)

	now = t0.Add(2 * time.Hour)
	_, err = snapshots.Get(ctx, "fp")
	assert.ErrorIs(t, err, snapshot.ErrCacheMiss)

	now = t0
	require.NoError(t, snapshots.Invalidate(ctx))
	_, err = snapshots.Get(ctx, "fp")
	assert.ErrorIs(t, err, snapshot.ErrCacheMiss)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, database.AdStats{}, st)

	featured := ad("f", models.NicheFinance, models.PlatformTikTok, 12, "US", t0)
	featured.IsFeatured = true
	require.NoError(t, store.SaveAds(ctx, []models.Ad{
		ad("s1", models.NicheHealth, models.PlatformMeta, 40, "BR", t0),
		ad("s2", models.NicheHealth, models.PlatformMeta, 31, "BR", t0),
		featured,
		ad("t", models.NicheHealth, models.PlatformMeta, 2, "BR", t0),
	}))

	st, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, database.AdStats{
		Total:     4,
		Scaling:   2,
		Validated: 1,
		Testing:   1,
		Niches:    2,
		Platforms: 2,
		Featured:  1,
	}, st)
}

func TestListAds_VisibleOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	hidden := ad("hidden", models.NicheHealth, models.PlatformMeta, 50, "BR", t0)
	hidden.IsVisible = false
	require.NoError(t, store.SaveAds(ctx, []models.Ad{
		ad("shown", models.NicheHealth, models.PlatformMeta, 5, "BR", t0),
		hidden,
	}))

	got, err := store.GetAd(ctx, "hidden")
	require.NoError(t, err)
	assert.False(t, got.IsVisible)

	all, err := store.ListAds(ctx, database.AdFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := store.ListAds(ctx, database.AdFilter{VisibleOnly: true})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "shown", visible[0].ID)
}

func TestFeaturedAds(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	second := ad("second", models.NicheHealth, models.PlatformMeta, 3, "BR", t0)
	second.IsFeatured, second.DisplayOrder = true, 2
	first := ad("first", models.NicheHealth, models.PlatformMeta, 1, "BR", t0)
	first.IsFeatured, first.DisplayOrder = true, 1
	hidden := ad("hidden", models.NicheHealth, models.PlatformMeta, 99, "BR", t0)
	hidden.IsFeatured, hidden.IsVisible = true, false

	require.NoError(t, store.SaveAds(ctx, []models.Ad{
		ad("small", models.NicheHealth, models.PlatformMeta, 4, "BR", t0),
		second,
		ad("big", models.NicheHealth, models.PlatformMeta, 40, "BR", t0),
		first,
		hidden,
	}))

	ids := func(limit int) []string {
		ads, err := store.FeaturedAds(ctx, limit)
		require.NoError(t, err)
		out := make([]string, len(ads))
		for i, a := range ads {
			out[i] = a.ID
		}
		return out
	}
	assert.Equal(t, []string{"first", "second", "big", "small"}, ids(0))
	assert.Equal(t, []string{"first", "second", "big"}, ids(3))
}

func TestUpdateCuration(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveAds(ctx, []models.Ad{ad("a1", models.NicheHealth, models.PlatformMeta, 12, "BR", t0)}))

	featured, order, visible := true, 3, false
	require.NoError(t, store.UpdateCuration(ctx, "a1", database.CurationUpdate{
		IsFeatured:   &featured,
		DisplayOrder: &order,
		IsVisible:    &visible,
	}))

	got, err := store.GetAd(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.IsFeatured)
	assert.Equal(t, 3, got.DisplayOrder)
	assert.False(t, got.IsVisible)

	// Nil fields are left alone.
	visible = true
	require.NoError(t, store.UpdateCuration(ctx, "a1", database.CurationUpdate{IsVisible: &visible}))
	got, err = store.GetAd(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.IsFeatured)
	assert.Equal(t, 3, got.DisplayOrder)
	assert.True(t, got.IsVisible)

	assert.ErrorIs(t, store.UpdateCuration(ctx, "missing", database.CurationUpdate{IsVisible: &visible}), database.ErrAdNotFound)
	assert.ErrorIs(t, store.UpdateCuration(ctx, "missing", database.CurationUpdate{}), database.ErrAdNotFound)
	assert.NoError(t, store.UpdateCuration(ctx, "a1", database.CurationUpdate{}))
}

func TestSaveAds_KeepsCurationOnReimport(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveAds(ctx, []models.Ad{ad("a1", models.NicheHealth, models.PlatformMeta, 12, "BR", t0)}))

	featured, order, visible := true, 1, false
	require.NoError(t, store.UpdateCuration(ctx, "a1", database.CurationUpdate{
		IsFeatured:   &featured,
		DisplayOrder: &order,
		IsVisible:    &visible,
	}))

	require.NoError(t, store.SaveAds(ctx, []models.Ad{ad("a1", models.NicheHealth, models.PlatformMeta, 35, "BR", t0)}))

	got, err := store.GetAd(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 35, got.AdCount)
	assert.Equal(t, models.StatusScaling, got.Status)
	assert.True(t, got.IsFeatured)
	assert.Equal(t, 1, got.DisplayOrder)
	assert.False(t, got.IsVisible)
}
