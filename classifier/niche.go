// Package classifier infers niche, region and a coarse scale estimate from ad text.
// Everything here is deterministic keyword work; nothing is learned.
package classifier

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/mtheuszin1/adscale-deploy/models"
)

// DefaultNiche is returned when no rule matches.
const DefaultNiche = models.NicheBusiness

// Niche keyword lists, matched as substrings of the folded text.
var (
	HealthKeywords       = []string{"saúde", "dieta", "emagrecer", "fit", "corpo", "workout", "gym"}
	FinanceKeywords      = []string{"dinheiro", "lucro", "investimento", "milhas", "finanças", "crypto"}
	BettingKeywords      = []string{"aposta", "bet", "tiger", "cassino", "slot"}
	DropshippingKeywords = []string{"loja", "frete", "comprar", "entrega"}
	EducationKeywords    = []string{"curso", "mentor", "aula"}
)

// NicheRule pairs a predicate with the niche it yields.
type NicheRule struct {
	Niche models.Niche
	Match func(folded string) bool
}

// nicheRules is evaluated in order; the first rule that matches wins.
var nicheRules = []NicheRule{
	keywordRule(models.NicheHealth, HealthKeywords),
	keywordRule(models.NicheFinance, FinanceKeywords),
	keywordRule(models.NicheBetting, BettingKeywords),
	keywordRule(models.NicheDropshipping, DropshippingKeywords),
	keywordRule(models.NicheEducation, EducationKeywords),
}

func keywordRule(niche models.Niche, keywords []string) NicheRule {
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = Fold(kw); kw != "" {
			folded = append(folded, kw)
		}
	}
	m := ahocorasick.NewStringMatcher(folded)
	return NicheRule{
		Niche: niche,
		Match: func(text string) bool {
			return len(m.MatchThreadSafe([]byte(text))) > 0
		},
	}
}

// NicheRules returns the ordered rule chain.
func NicheRules() []NicheRule {
	out := make([]NicheRule, len(nicheRules))
	copy(out, nicheRules)
	return out
}

// ClassifyNiche never fails; text overlapping several niches gets the earliest one.
func ClassifyNiche(text string) models.Niche {
	folded := Fold(text)
	if folded == "" {
		return DefaultNiche
	}
	for _, rule := range nicheRules {
		if rule.Match(folded) {
			return rule.Niche
		}
	}
	return DefaultNiche
}

// Fold composes and lowercases text so accented keywords match regardless of encoding.
func Fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}
