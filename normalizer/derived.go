package normalizer

import "math"

// Saturation weights: longevity fatigues an audience faster than raw volume.
const (
	saturationTimeWeight   = 0.7
	saturationVolumeWeight = 0.3
	saturationMaxDays      = 60
	saturationMaxAdCount   = 100
)

// Momentum tuning.
const (
	momentumVelocityFactor = 2.0
	momentumMax            = 10.0
	decelerationPenalty    = 0.5
	accelerationBonus      = 1.3
	accelerationDelta      = 10
)

// Saturation returns a 0-100 audience fatigue estimate.
func Saturation(daysActive, adCount int) int {
	days := math.Min(saturationMaxDays, math.Max(0, float64(daysActive)))
	count := math.Min(saturationMaxAdCount, math.Max(0, float64(adCount)))

	timeFactor := days / saturationMaxDays
	volumeFactor := count / saturationMaxAdCount
	return int(math.Round(100 * (saturationTimeWeight*timeFactor + saturationVolumeWeight*volumeFactor)))
}

// MomentumScore returns a 0-10 growth estimate rounded to one decimal.
// The last step of history (if any) speeds it up or slows it down.
func MomentumScore(adCount, daysActive int, history []int) float64 {
	velocity := float64(adCount) / math.Max(1, float64(daysActive))
	score := math.Min(momentumMax, velocity*momentumVelocityFactor)

	if n := len(history); n > 1 {
		delta := history[n-1] - history[n-2]
		if delta < 0 {
			score *= decelerationPenalty
		} else if delta > accelerationDelta {
			score *= accelerationBonus
		}
	}

	score = math.Max(0, math.Min(momentumMax, score))
	return math.Round(score*10) / 10
}

// MomentumHistory is the synthetic curve stored for ads without scraped history.
func MomentumHistory(adCount int) []int {
	return []int{10, 20, 30, 40, adCount}
}
