// Package intelligence derives per-platform baselines from the whole ad corpus and
// scores single ads against them.
package intelligence

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/textnum"
)

// ErrEmptyCorpus is returned when there is nothing to compute baselines from.
var ErrEmptyCorpus = errors.New("intelligence: empty corpus")

// Baseline factors, applied to each platform's Scaling-subset averages.
const (
	MinCtrFactor        = 0.85
	MinDaysFactor       = 0.6
	MinDaysFloor        = 3
	MinAdCountFactor    = 0.4
	MinAdCountFloor     = 5
	SuspiciousCtrFactor = 2.2
)

// Survival buckets by days active: < InfantDays, up to ValidatedDays, then legacy.
const (
	InfantDays    = 5
	ValidatedDays = 15
)

// Hype detection: a strong CTR on an ad that is both new and low volume.
const (
	ShortFormHypeLimit = 7.0
	DefaultHypeLimit   = 5.0
	HypeMaxDays        = 4
	HypeMaxAdCount     = 3
)

const (
	DefaultTimeToScale = 7.0
	SurvivalThreshold  = 5
)

// HypeLimit is the CTR above which a new, low volume ad is flagged on p.
func HypeLimit(p models.Platform) float64 {
	if p == models.PlatformTikTok {
		return ShortFormHypeLimit
	}
	return DefaultHypeLimit
}

// Engine computes snapshots. Only LastAnalysis depends on Now.
type Engine struct {
	Now func() time.Time
}

func New() *Engine {
	return &Engine{Now: time.Now}
}

var defaultEngine = New()

// ComputeIntelligence runs the default engine over corpus.
func ComputeIntelligence(corpus []models.Ad) (*models.LibraryIntelligence, error) {
	return defaultEngine.Compute(corpus)
}

// Compute makes a single pass over a copy of corpus and returns a fresh snapshot.
func (e *Engine) Compute(corpus []models.Ad) (*models.LibraryIntelligence, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}
	ads := make([]models.Ad, len(corpus))
	copy(ads, corpus)

	stats := make(map[models.Platform]*platformAcc, len(models.Platforms))
	order := make([]models.Platform, 0, len(models.Platforms))
	accFor := func(p models.Platform) *platformAcc {
		acc, ok := stats[p]
		if !ok {
			acc = &platformAcc{}
			stats[p] = acc
			order = append(order, p)
		}
		return acc
	}
	for _, p := range models.Platforms {
		accFor(p)
	}

	var (
		infant, validated, legacy int
		countToScale, daysToScale int
		hype                      int
		tickets                   []decimal.Decimal
	)

	for _, ad := range ads {
		ctr := ad.Performance.EstimatedCtr
		days := ad.Performance.DaysActive

		acc := accFor(ad.Platform)
		acc.count++
		acc.sumCtr += ctr

		if ad.Status == models.StatusScaling {
			acc.scalingCount++
			acc.scalingCtr += ctr
			acc.scalingDays += days
			acc.scalingAdCount += ad.AdCount

			countToScale++
			daysToScale += days

			if v, ok := textnum.ParseDecimal(ad.TicketPrice); ok {
				tickets = append(tickets, v)
			}
		}

		switch {
		case days < InfantDays:
			infant++
		case days <= ValidatedDays:
			validated++
		default:
			legacy++
		}

		if ctr > HypeLimit(ad.Platform) && days < HypeMaxDays && ad.AdCount < HypeMaxAdCount {
			hype++
		}
	}

	total := float64(len(ads))
	intel := &models.LibraryIntelligence{
		GlobalStats: models.GlobalStats{
			TotalAds:          len(ads),
			ScalingPercentage: 100 * float64(countToScale) / total,
			SurvivalDistribution: models.SurvivalDistribution{
				InfantMortality: 100 * float64(infant) / total,
				Validated:       100 * float64(validated) / total,
				Legacy:          100 * float64(legacy) / total,
			},
		},
		PlatformInsights: make(map[models.Platform]models.PlatformInsight, len(order)),
		Baselines:        make(map[models.Platform]models.PlatformBaseline, len(order)),
		TicketInsights:   ticketInsights(tickets),
		TimeInsights: models.TimeInsights{
			AvgTimeToScale:    DefaultTimeToScale,
			SurvivalThreshold: SurvivalThreshold,
		},
		FalsePositivePatterns: models.FalsePositivePatterns{
			ClickbaitThresholds: make(map[models.Platform]float64, len(order)),
			HypeAdsDetected:     hype,
		},
		LastAnalysis: e.Now().UTC(),
	}
	if countToScale > 0 {
		intel.TimeInsights.AvgTimeToScale = float64(daysToScale) / float64(countToScale)
	}

	for _, p := range order {
		acc := stats[p]
		baseline := acc.baseline()
		intel.PlatformInsights[p] = acc.insight(p)
		intel.Baselines[p] = baseline
		intel.FalsePositivePatterns.ClickbaitThresholds[p] = baseline.SuspiciousCtrLimit
	}
	return intel, nil
}

// platformAcc accumulates one platform's aggregates during the pass.
type platformAcc struct {
	count  int
	sumCtr float64

	scalingCount   int
	scalingCtr     float64
	scalingDays    int
	scalingAdCount int
}

func (a *platformAcc) scalingMeans() (ctr, days, adCount float64) {
	n := float64(max(1, a.scalingCount))
	return a.scalingCtr / n, float64(a.scalingDays) / n, float64(a.scalingAdCount) / n
}

func (a *platformAcc) insight(p models.Platform) models.PlatformInsight {
	total := float64(max(1, a.count))
	ctr, days, adCount := a.scalingMeans()
	return models.PlatformInsight{
		Platform:             p,
		AvgCtrAll:            a.sumCtr / total,
		AvgCtrScaling:        ctr,
		AvgDaysActiveScaling: days,
		AvgAdCountScaling:    adCount,
		ScalingRate:          100 * float64(a.scalingCount) / total,
		TotalAds:             a.count,
		EfficiencyIndex:      adCount * days / 100,
	}
}

func (a *platformAcc) baseline() models.PlatformBaseline {
	ctr, days, adCount := a.scalingMeans()
	return models.PlatformBaseline{
		MinCtrForScale:     ctr * MinCtrFactor,
		MinDaysForScale:    max(MinDaysFloor, int(math.Floor(days*MinDaysFactor))),
		MinAdCountForScale: max(MinAdCountFloor, int(math.Floor(adCount*MinAdCountFactor))),
		SuspiciousCtrLimit: ctr * SuspiciousCtrFactor,
	}
}

func ticketInsights(tickets []decimal.Decimal) models.TicketInsights {
	if len(tickets) == 0 {
		return models.TicketInsights{}
	}
	sum := decimal.Sum(tickets[0], tickets[1:]...)
	avg := sum.Div(decimal.NewFromInt(int64(len(tickets))))
	return models.TicketInsights{
		AvgTicketScaling: avg.InexactFloat64(),
		MostSuccessfulRange: models.TicketRange{
			Min: decimal.Min(tickets[0], tickets[1:]...).InexactFloat64(),
			Max: decimal.Max(tickets[0], tickets[1:]...).InexactFloat64(),
		},
	}
}
