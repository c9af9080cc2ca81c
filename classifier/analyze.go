package classifier

import (
	"regexp"
	"strconv"

	"github.com/mtheuszin1/adscale-deploy/models"
)

// Analysis is the coarse pre-classification an import row gets before normalization.
type Analysis struct {
	Niche models.Niche
	// Escala is a 1-10 scale estimate derived from the active-ads metadata.
	Escala int
}

const (
	minEscala = 1
	maxEscala = 10
	// adsPerEscala is how many active ads one escala step represents.
	adsPerEscala = 15
)

var firstNumber = regexp.MustCompile(`\d+`)

// QuickAnalyze classifies the niche from the description and estimates escala from infoAds.
func QuickAnalyze(description, infoAds string) Analysis {
	a := Analysis{Niche: ClassifyNiche(description), Escala: minEscala}

	if raw := firstNumber.FindString(infoAds); raw != "" {
		if count, err := strconv.Atoi(raw); err == nil {
			escala := (count + adsPerEscala - 1) / adsPerEscala
			a.Escala = max(minEscala, min(maxEscala, escala))
		}
	}
	return a
}
