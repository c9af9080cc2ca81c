package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

type Region struct {
	Country string `json:"country"`
	Flag    string `json:"flag"`
	Code    string `json:"code"`
}

var (
	RegionBrazil        = Region{Country: "Brasil", Flag: "🇧🇷", Code: "BR"}
	RegionUnitedStates  = Region{Country: "Estados Unidos", Flag: "🇺🇸", Code: "US"}
	RegionUnitedKingdom = Region{Country: "Reino Unido", Flag: "🇬🇧", Code: "GB"}
	RegionParaguay      = Region{Country: "Paraguai", Flag: "🇵🇾", Code: "PY"}
	RegionColombia      = Region{Country: "Colômbia", Flag: "🇨🇴", Code: "CO"}
	RegionPortugal      = Region{Country: "Portugal", Flag: "🇵🇹", Code: "PT"}
	RegionFrance        = Region{Country: "França", Flag: "🇫🇷", Code: "FR"}
	RegionGermany       = Region{Country: "Alemanha", Flag: "🇩🇪", Code: "DE"}
	RegionSpain         = Region{Country: "Espanha", Flag: "🇪🇸", Code: "ES"}
	RegionGlobalSpanish = Region{Country: "Global (Esp)", Flag: "🌎", Code: "ES"}
)

// DefaultRegion is kept whenever nothing more specific is found.
var DefaultRegion = RegionBrazil

type countryEntry struct {
	needles []string
	region  Region
}

// countries is checked in order with substring matching, so short needles
// like "us" can shadow later entries. Keep the order stable.
var countries = []countryEntry{
	{[]string{"brazil", "brasil"}, RegionBrazil},
	{[]string{"united states", "usa", "us"}, RegionUnitedStates},
	{[]string{"united kingdom", "uk"}, RegionUnitedKingdom},
	{[]string{"py", "paraguay"}, RegionParaguay},
	{[]string{"colombia"}, RegionColombia},
	{[]string{"portugal"}, RegionPortugal},
	{[]string{"france"}, RegionFrance},
	{[]string{"germany"}, RegionGermany},
	{[]string{"spain"}, RegionSpain},
}

// Language marker lists counted as whole words.
var (
	EnglishMarkers = []string{
		"the", "and", "to", "shipping", "free", "shop", "now", "get", "buy", "off", "sale", "order", "best",
		"new", "limited", "deal", "quality", "check", "out", "click", "link", "today", "worldwide", "save", "more",
	}
	PortugueseMarkers = []string{
		"o", "a", "e", "de", "do", "da", "frete", "grátis", "saiba", "mais", "comprar", "loja", "oferta",
		"hoje", "melhor", "qualidade", "clique", "link", "compra", "envio", "para", "com", "você", "seu", "sua",
	}
	SpanishMarkers = []string{
		"el", "la", "y", "en", "con", "envío", "gratis", "comprar", "tienda", "oferta", "hoy", "mejor",
		"calidad", "clic", "enlace", "compra", "para", "usted", "su", "ahora", "mas", "descubre",
	}
)

var infoAdsPattern = regexp.MustCompile(`(?i)(\d+)\s*ads?\s*(.*)`)

// RegionDetection is the outcome of DetectRegion.
type RegionDetection struct {
	Region Region
	// InferredByAI marks a heuristic (text-based) classification as opposed to explicit metadata.
	InferredByAI bool
	// Explicit is set when the region came from the "N ads <country>" metadata.
	Explicit bool
	EN, PT, ES int
}

// DetectRegion is best-effort: explicit metadata first, then language markers in text.
func DetectRegion(infoAds, text string) RegionDetection {
	if region, ok := regionFromInfoAds(infoAds); ok {
		return RegionDetection{Region: region, Explicit: true}
	}

	det := RegionDetection{Region: DefaultRegion}
	if strings.TrimSpace(text) == "" {
		return det
	}

	tokens := tokenize(Fold(text))
	det.EN = countMarkers(tokens, EnglishMarkers)
	det.PT = countMarkers(tokens, PortugueseMarkers)
	det.ES = countMarkers(tokens, SpanishMarkers)

	switch {
	case det.EN > det.PT && det.EN > det.ES:
		det.Region = RegionUnitedStates
	case det.ES > det.PT && det.ES > det.EN:
		det.Region = RegionGlobalSpanish
	default:
		// Portuguese wins or nobody dominates: keep the default.
		det.Region = DefaultRegion
	}
	det.InferredByAI = det.EN+det.PT+det.ES > 0
	return det
}

func regionFromInfoAds(infoAds string) (Region, bool) {
	m := infoAdsPattern.FindStringSubmatch(infoAds)
	if m == nil || len(m[2]) <= 2 {
		return Region{}, false
	}
	raw := Fold(strings.TrimSpace(m[2]))
	for _, c := range countries {
		for _, needle := range c.needles {
			if strings.Contains(raw, needle) {
				return c.region, true
			}
		}
	}
	return Region{}, false
}

func tokenize(s string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	}) {
		counts[w]++
	}
	return counts
}

func countMarkers(tokens map[string]int, markers []string) int {
	n := 0
	for _, m := range markers {
		n += tokens[Fold(m)]
	}
	return n
}
