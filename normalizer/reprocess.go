package normalizer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mtheuszin1/adscale-deploy/classifier"
	"github.com/mtheuszin1/adscale-deploy/models"
)

// RatingChangeThreshold is the rating delta that counts as a change worth writing.
const RatingChangeThreshold = 0.5

// ReprocessRegionAndStatus re-runs region and niche inference plus the status/rating
// rule over an existing corpus. Only ads whose region code, status or rating changed
// are returned; the input slice and its ads are left untouched.
func ReprocessRegionAndStatus(corpus []models.Ad) []models.Ad {
	var changed []models.Ad
	for _, ad := range corpus {
		if updated, ok := reprocessAd(ad); ok {
			changed = append(changed, updated)
		}
	}
	return changed
}

func reprocessAd(ad models.Ad) (models.Ad, bool) {
	currentCode := ad.RegionCode()
	det := classifier.DetectRegion(strconv.Itoa(ad.AdCount)+" ads", ad.Copy+" "+ad.Title)
	region := det.Region

	newStatus := models.StatusForAdCount(ad.AdCount)
	newRating := models.RatingForAdCount(ad.AdCount)

	// An ad that never had a region landing on the default is not a change.
	regionChanged := currentCode != region.Code && (currentCode != "UNKNOWN" || region.Code != classifier.DefaultRegion.Code)
	statusChanged := ad.Status != newStatus
	ratingChanged := math.Abs(ad.Rating-newRating) > RatingChangeThreshold
	if !regionChanged && !statusChanged && !ratingChanged {
		return models.Ad{}, false
	}

	history := MomentumHistory(ad.AdCount)
	out := ad
	out.Status = newStatus
	out.Rating = newRating
	out.Niche = classifier.ClassifyNiche(ad.Copy)
	out.Tags = refreshTags(ad.Tags, ad.Niche, out.Niche, det.InferredByAI, ad.AdCount)
	out.Insights = fmt.Sprintf("Região: %s. Status recalculado: %s (%d ativos).", region.Country, newStatus, ad.AdCount)

	out.Targeting.Locations = []models.AdLocation{location(region, ad.AdCount)}
	out.TechStack.ServerCountry = region.Country
	out.TechStack.TrackingPixels = append([]string(nil), ad.TechStack.TrackingPixels...)

	out.Performance.EstimatedCpc = regionCPC(region)
	out.Performance.EstimatedSpend = regionSpend(region)
	out.Performance.Momentum = history
	out.Performance.SaturationLevel = Saturation(ad.Performance.DaysActive, ad.AdCount)
	out.Performance.MomentumScore = MomentumScore(ad.AdCount, ad.Performance.DaysActive, history)
	return out, true
}

var derivedTags = map[string]bool{
	TagInferred:   true,
	TagMetadata:   true,
	TagHeavyScale: true,
	TagValidated:  true,
	TagTesting:    true,
}

// refreshTags replaces the niche, source and scale tags and keeps manual ones.
func refreshTags(tags []string, oldNiche, newNiche models.Niche, inferred bool, adCount int) []string {
	out := make([]string, 0, len(tags)+3)
	out = append(out, string(newNiche))
	for _, t := range tags {
		if !derivedTags[t] && t != string(oldNiche) && t != string(newNiche) {
			out = append(out, t)
		}
	}
	return append(out, SourceTag(inferred), ScaleTag(adCount))
}
