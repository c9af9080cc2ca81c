package intelligence

import (
	"cmp"
	"slices"

	"github.com/mtheuszin1/adscale-deploy/models"
)

// Score adjustments. They stack; none of them excludes another.
const (
	NeutralScore       = 50
	CtrAboveBaseline   = 20
	CtrBelowAverage    = -15
	ClickbaitPenalty   = -30
	ClickbaitMaxDays   = 4
	LongevityBonus     = 15
	LongLivedBonus     = 10
	VolumeBonus        = 25
	HeavyVolumeBonus   = 10
	LargeCorpusAds     = 10
	LargeCorpusMinDays = 15
	SmallCorpusMinDays = 10
	MinScore           = 0
	MaxScore           = 100
)

// ScoreAd rates ad from 0 to 100 against its platform's baseline. Platforms the
// snapshot has no entry for are scored against the baseline of an empty platform.
func ScoreAd(ad models.Ad, intel *models.LibraryIntelligence) int {
	baseline, insight, totalAds := lookupPlatform(ad.Platform, intel)
	ctr := ad.Performance.EstimatedCtr
	days := ad.Performance.DaysActive

	score := NeutralScore
	if ctr > baseline.MinCtrForScale {
		score += CtrAboveBaseline
	}
	if ctr < insight.AvgCtrAll {
		score += CtrBelowAverage
	}
	if clickbait(ctr, days, baseline) {
		score += ClickbaitPenalty
	}

	if days > baseline.MinDaysForScale {
		score += LongevityBonus
	}
	longLived := SmallCorpusMinDays
	if totalAds > LargeCorpusAds {
		longLived = LargeCorpusMinDays
	}
	if days > longLived {
		score += LongLivedBonus
	}

	if ad.AdCount > baseline.MinAdCountForScale {
		score += VolumeBonus
	}
	if float64(ad.AdCount) > insight.AvgAdCountScaling {
		score += HeavyVolumeBonus
	}
	return min(MaxScore, max(MinScore, score))
}

// Clickbait reports whether ad has a suspiciously high CTR for how young it is.
func Clickbait(ad models.Ad, intel *models.LibraryIntelligence) bool {
	baseline, _, _ := lookupPlatform(ad.Platform, intel)
	return clickbait(ad.Performance.EstimatedCtr, ad.Performance.DaysActive, baseline)
}

func clickbait(ctr float64, days int, baseline models.PlatformBaseline) bool {
	return ctr > baseline.SuspiciousCtrLimit && days < ClickbaitMaxDays
}

func lookupPlatform(p models.Platform, intel *models.LibraryIntelligence) (models.PlatformBaseline, models.PlatformInsight, int) {
	var empty platformAcc
	if intel == nil {
		return empty.baseline(), empty.insight(p), 0
	}
	baseline, ok := intel.Baselines[p]
	if !ok {
		baseline = empty.baseline()
	}
	insight, ok := intel.PlatformInsights[p]
	if !ok {
		insight = empty.insight(p)
	}
	return baseline, insight, intel.GlobalStats.TotalAds
}

// RankedAd pairs an ad with its contextual score.
type RankedAd struct {
	Ad    models.Ad `json:"ad"`
	Score int       `json:"score"`
}

// RankAds scores every ad and orders them best first. Equal scores keep corpus order.
func RankAds(ads []models.Ad, intel *models.LibraryIntelligence) []RankedAd {
	ranked := make([]RankedAd, len(ads))
	for i, ad := range ads {
		ranked[i] = RankedAd{Ad: ad, Score: ScoreAd(ad, intel)}
	}
	slices.SortStableFunc(ranked, func(a, b RankedAd) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}
