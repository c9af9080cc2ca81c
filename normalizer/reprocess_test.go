package normalizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/normalizer"
)

func brazilLocation(adCount int) []models.AdLocation {
	return []models.AdLocation{{Country: "Brasil", Flag: "🇧🇷", Volume: adCount * 100, Code: "BR"}}
}

func TestReprocessRegionAndStatus(t *testing.T) {
	corpus := []models.Ad{
		{
			ID:        "status-drift",
			Title:     "Loja A",
			Copy:      "frete grátis hoje para você",
			AdCount:   45,
			Status:    models.StatusTesting,
			Rating:    models.RatingForAdCount(45),
			Targeting: models.Targeting{Locations: brazilLocation(45)},
		},
		{
			ID:        "consistent",
			Title:     "Loja B",
			Copy:      "comprar com frete grátis",
			AdCount:   5,
			Status:    models.StatusTesting,
			Rating:    models.RatingForAdCount(5),
			Targeting: models.Targeting{Locations: brazilLocation(5)},
		},
		{
			ID:      "unknown-to-default",
			Title:   "Loja C",
			Copy:    "oferta da loja",
			AdCount: 5,
			Status:  models.StatusTesting,
			Rating:  models.RatingForAdCount(5),
		},
		{
			ID:      "unknown-to-us",
			Title:   "Shop D",
			Copy:    "Get free shipping now and save more",
			AdCount: 5,
			Status:  models.StatusTesting,
			Rating:  models.RatingForAdCount(5),
		},
		{
			ID:        "rating-drift",
			Title:     "Loja E",
			Copy:      "oferta de hoje",
			AdCount:   100,
			Status:    models.StatusScaling,
			Rating:    3.0,
			Targeting: models.Targeting{Locations: brazilLocation(100)},
		},
		{
			ID:        "small-rating-drift",
			Title:     "Loja F",
			Copy:      "oferta de hoje",
			AdCount:   20,
			Status:    models.StatusValidated,
			Rating:    3.2,
			Targeting: models.Targeting{Locations: brazilLocation(20)},
		},
	}

	changed := normalizer.ReprocessRegionAndStatus(corpus)

	ids := make([]string, 0, len(changed))
	for _, ad := range changed {
		ids = append(ids, ad.ID)
		assert.Equal(t, models.StatusForAdCount(ad.AdCount), ad.Status, ad.ID)
		assert.Equal(t, models.RatingForAdCount(ad.AdCount), ad.Rating, ad.ID)
	}
	assert.Equal(t, []string{"status-drift", "unknown-to-us", "rating-drift"}, ids)

	byID := make(map[string]models.Ad)
	for _, ad := range changed {
		byID[ad.ID] = ad
	}
	assert.Equal(t, models.StatusScaling, byID["status-drift"].Status)
	assert.Equal(t, "US", byID["unknown-to-us"].RegionCode())
	assert.Equal(t, 1.50, byID["unknown-to-us"].Performance.EstimatedCpc)
	assert.Equal(t, 5.0, byID["rating-drift"].Rating)
}

func TestReprocessRegionAndStatus_LeavesInputUntouched(t *testing.T) {
	corpus := []models.Ad{{
		ID:        "a",
		Copy:      "frete grátis",
		AdCount:   45,
		Status:    models.StatusTesting,
		Rating:    3.1,
		Tags:      []string{"Teste"},
		Targeting: models.Targeting{Locations: brazilLocation(45)},
	}}

	changed := normalizer.ReprocessRegionAndStatus(corpus)

	require.Len(t, changed, 1)
	assert.Equal(t, models.StatusTesting, corpus[0].Status)
	assert.Equal(t, []string{"Teste"}, corpus[0].Tags)
	assert.Equal(t, models.StatusScaling, changed[0].Status)
}

func TestReprocessRegionAndStatus_RefreshesTags(t *testing.T) {
	corpus := []models.Ad{{
		ID:      "tags",
		Copy:    "curso com aula ao vivo",
		AdCount: 60,
		Niche:   models.NicheHealth,
		Status:  models.StatusTesting,
		Tags:    []string{string(models.NicheHealth), normalizer.TagTesting, normalizer.TagMetadata, "manual"},
	}}

	changed := normalizer.ReprocessRegionAndStatus(corpus)

	require.Len(t, changed, 1)
	assert.Equal(t, models.NicheEducation, changed[0].Niche)
	assert.Equal(t, []string{
		string(models.NicheEducation),
		"manual",
		normalizer.TagInferred,
		normalizer.TagHeavyScale,
	}, changed[0].Tags)
}

func TestReprocessRegionAndStatus_Empty(t *testing.T) {
	assert.Empty(t, normalizer.ReprocessRegionAndStatus(nil))
}
