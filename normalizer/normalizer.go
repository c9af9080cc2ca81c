// Package normalizer turns loosely structured import rows into canonical ads.
//
// It never returns an error: malformed values fall back to defaults, so the result is
// always structurally valid but only as accurate as its input.
package normalizer

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mtheuszin1/adscale-deploy/classifier"
	"github.com/mtheuszin1/adscale-deploy/media"
	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/textnum"
)

// Defaults for fields an import row does not carry.
const (
	DefaultTitle       = "Imported Ad"
	DefaultTicket      = "Consultar"
	DefaultFunnel      = "Direto"
	DefaultURL         = "#"
	DefaultCTA         = "Saiba Mais"
	DefaultCTR         = 2.5
	DefaultDaysActive  = 1
	DefaultAdCount     = 1
	AdCountPerEscala   = 12
	successProbability = 80
)

// Tags kept in sync by import and reprocessing.
const (
	TagHeavyScale = "Escala Pesada"
	TagValidated  = "Validado"
	TagTesting    = "Teste"
	TagInferred   = "IA Detect"
	TagMetadata   = "Meta Data"
)

var videoExtension = regexp.MustCompile(`\.(mp4|webm|ogg|mov)$`)

// Normalizer holds the few non-deterministic inputs so tests can pin them.
type Normalizer struct {
	Now   func() time.Time
	NewID func() string
}

// New returns a Normalizer using the wall clock and random UUIDs.
func New() *Normalizer {
	return &Normalizer{Now: time.Now, NewID: uuid.NewString}
}

var defaultNormalizer = New()

// NormalizeRecord maps one raw row to an Ad using the package default normalizer.
func NormalizeRecord(raw RawRecord, assets *media.Library) (models.Ad, media.LinkStatus) {
	return defaultNormalizer.Normalize(raw, assets)
}

// Normalize resolves the row's fields, derives a quick analysis from its copy and
// active-ads column, and builds the Ad.
func (n *Normalizer) Normalize(raw RawRecord, assets *media.Library) (models.Ad, media.LinkStatus) {
	idx := indexRecord(raw)
	description := idx.lookupOr(CopyKeys, "")
	infoAds, _ := idx.lookup(ActiveCountKeys)
	return n.build(idx, assets, classifier.QuickAnalyze(description, infoAds))
}

// NormalizeWithAnalysis is Normalize with a caller supplied niche/escala estimate.
func (n *Normalizer) NormalizeWithAnalysis(raw RawRecord, assets *media.Library, analysis classifier.Analysis) (models.Ad, media.LinkStatus) {
	return n.build(indexRecord(raw), assets, analysis)
}

func (n *Normalizer) build(idx fieldIndex, assets *media.Library, analysis classifier.Analysis) (models.Ad, media.LinkStatus) {
	id := idx.lookupOr(IDKeys, "")
	if id == "" {
		id = n.NewID()
	}
	title := idx.lookupOr(TitleKeys, DefaultTitle)
	description := idx.lookupOr(CopyKeys, "")

	// Media: link to an uploaded asset when possible, keep the raw reference otherwise
	refs, ids := idx.mediaCandidates()
	var reference, mediaURL string
	status := media.NoMedia
	if len(refs) > 0 {
		reference, mediaURL, status = refs[0], refs[0], media.Unlinked
	}
	for _, candidate := range slices.Concat(refs, ids) {
		if content, _, kind := assets.Match(candidate); kind != media.NoMatch {
			reference, mediaURL, status = candidate, content, media.Linked
			break
		}
	}

	infoAds, hasInfo := idx.lookup(ActiveCountKeys)
	region := classifier.DetectRegion(infoAds, description+" "+title)

	// A missing count defaults to one ad; a count that does not parse falls back to escala
	adCount := DefaultAdCount
	if hasInfo {
		var ok bool
		if adCount, ok = textnum.ParseCount(infoAds); !ok {
			adCount = max(1, analysis.Escala) * AdCountPerEscala
		}
	}

	daysActive, ok := textnum.ParseCount(idx.lookupOr(DaysActiveKeys, ""))
	if !ok {
		daysActive = DefaultDaysActive
	}

	ctr, ok := textnum.ParseFloat(idx.lookupOr(CTRKeys, ""))
	if !ok {
		ctr = DefaultCTR
	}

	salesPage := idx.lookupOr(SalesPageKeys, DefaultURL)
	displayURL := idx.lookupOr(DisplayURLKeys, salesPage)
	niche := analysis.Niche
	if niche == "" {
		niche = classifier.DefaultNiche
	}
	history := MomentumHistory(adCount)

	ad := models.Ad{
		ID:           id,
		Title:        title,
		BrandID:      BrandID(title),
		BrandLogo:    BrandLogo(title),
		Platform:     parsePlatform(idx.lookupOr(PlatformKeys, "")),
		Niche:        niche,
		Type:         CreativeTypeFor(reference, mediaURL),
		Status:       models.StatusForAdCount(adCount),
		Tags:         []string{string(niche), ScaleTag(adCount), SourceTag(region.InferredByAI)},
		Thumbnail:    mediaURL,
		MediaURL:     mediaURL,
		MediaHash:    mediaHash(id),
		Copy:         description,
		CTA:          idx.lookupOr(CTAKeys, DefaultCTA),
		Insights:     fmt.Sprintf("Análise AdScale: Este sinal apresenta um volume de %d ativos na região: %s.", adCount, region.Region.Country),
		Rating:       models.RatingForAdCount(adCount),
		AddedAt:      n.Now().UTC(),
		AdCount:      adCount,
		TicketPrice:  idx.lookupOr(TicketKeys, DefaultTicket),
		FunnelType:   idx.lookupOr(FunnelKeys, DefaultFunnel),
		SalesPageURL: salesPage,
		CheckoutURL:  idx.lookupOr(CheckoutKeys, DefaultURL),
		LibraryURL:   idx.lookupOr(LibraryKeys, DefaultURL),
		TLD:          topLevelDomain(displayURL),
		IsVisible:    true,
		Performance: models.Performance{
			EstimatedCtr:       ctr,
			EstimatedCpc:       regionCPC(region.Region),
			DaysActive:         daysActive,
			SuccessProbability: successProbability,
			EstimatedSpend:     regionSpend(region.Region),
			Momentum:           history,
			SaturationLevel:    Saturation(daysActive, adCount),
			MomentumScore:      MomentumScore(adCount, daysActive, history),
		},
		SiteTraffic: models.SiteTraffic{
			MonthlyVisits: "N/A",
			TopSource:     "Paid Ads",
			DeviceSplit:   models.DeviceSplit{Mobile: 95, Desktop: 5},
		},
		TechStack: models.TechStack{
			EcommercePlatform: "Monitorada",
			TrackingPixels:    []string{"FB"},
			ServerCountry:     region.Region.Country,
		},
		Targeting: models.Targeting{
			Gender:    "Todos",
			AgeRange:  "25-55",
			Locations: []models.AdLocation{location(region.Region, adCount)},
		},
	}
	return ad, status
}

// CreativeTypeFor classifies video-looking media as VSL and everything else as a
// direct (static) creative.
func CreativeTypeFor(refs ...string) models.CreativeType {
	for _, ref := range refs {
		lower := strings.ToLower(ref)
		if videoExtension.MatchString(media.StripQuery(lower)) ||
			strings.Contains(lower, "video") ||
			strings.HasPrefix(lower, "blob:") {
			return models.CreativeVSL
		}
	}
	return models.CreativeDirect
}

// ScaleTag labels the ad's volume tier.
func ScaleTag(adCount int) string {
	switch {
	case adCount > 50:
		return TagHeavyScale
	case adCount > 10:
		return TagValidated
	default:
		return TagTesting
	}
}

// SourceTag tells whether the region came from text heuristics or from metadata.
func SourceTag(inferred bool) string {
	if inferred {
		return TagInferred
	}
	return TagMetadata
}

func BrandID(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "_")
}

func BrandLogo(title string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(title) + "&background=020617&color=fff&bold=true"
}

func mediaHash(id string) string {
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "AS-" + strings.ToUpper(id)
}

func parsePlatform(v string) models.Platform {
	lower := strings.ToLower(v)
	switch {
	case strings.Contains(lower, "tiktok"):
		return models.PlatformTikTok
	case strings.Contains(lower, "google"), strings.Contains(lower, "youtube"):
		return models.PlatformGoogle
	default:
		return models.PlatformMeta
	}
}

func topLevelDomain(displayURL string) string {
	if !strings.Contains(displayURL, ".") {
		return ".com"
	}
	last := displayURL[strings.LastIndex(displayURL, ".")+1:]
	last = strings.SplitN(last, "/", 2)[0]
	last = strings.SplitN(last, "?", 2)[0]
	return "." + last
}

func regionCPC(r classifier.Region) float64 {
	if r.Code == classifier.RegionUnitedStates.Code {
		return 1.50
	}
	return 0.50
}

func regionSpend(r classifier.Region) string {
	if r.Code == classifier.RegionUnitedStates.Code {
		return "$ 2k+"
	}
	return "R$ 5k+"
}

func location(r classifier.Region, adCount int) models.AdLocation {
	return models.AdLocation{Country: r.Country, Flag: r.Flag, Volume: adCount * 100, Code: r.Code}
}
