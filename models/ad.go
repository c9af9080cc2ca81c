package models

import "time"

type Platform string

const (
	PlatformMeta   Platform = "Meta Ads"
	PlatformTikTok Platform = "TikTok Ads"
	PlatformGoogle Platform = "Google Ads"
)

// Platforms lists the platforms every intelligence snapshot reports on, even without data.
var Platforms = []Platform{PlatformMeta, PlatformTikTok, PlatformGoogle}

type Niche string

const (
	NicheHealth        Niche = "Saúde & Bem-estar"
	NicheFinance       Niche = "Finanças & Milhas"
	NicheBetting       Niche = "Apostas"
	NicheDropshipping  Niche = "Dropshipping"
	NicheInfoproducts  Niche = "Info-produtos"
	NicheRealEstate    Niche = "Imobiliário"
	NicheEducation     Niche = "Educacao & Carreira"
	NicheSpirituality  Niche = "Espiritualidade"
	NicheFashion       Niche = "Moda & Estética"
	NicheBusiness      Niche = "Negócios & SaaS"
	NicheEntertainment Niche = "Lazer & Entretenimento"
)

type CreativeType string

const (
	CreativeUGC          CreativeType = "UGC"
	CreativeVSL          CreativeType = "VSL"
	CreativeDirect       CreativeType = "Criativo Direto"
	CreativeStorytelling CreativeType = "Storytelling"
)

// IsVideo reports whether the creative type is video-like.
func (t CreativeType) IsVideo() bool {
	return t == CreativeVSL || t == CreativeUGC || t == CreativeStorytelling
}

type AdStatus string

const (
	StatusTesting   AdStatus = "Teste"
	StatusValidated AdStatus = "Validado"
	StatusScaling   AdStatus = "Escalando"
)

// Status thresholds on adCount.
const (
	ScalingAdCount   = 30
	ValidatedAdCount = 10
)

// StatusForAdCount is the single status rule shared by import and reprocessing.
func StatusForAdCount(adCount int) AdStatus {
	switch {
	case adCount >= ScalingAdCount:
		return StatusScaling
	case adCount >= ValidatedAdCount:
		return StatusValidated
	default:
		return StatusTesting
	}
}

// RatingForAdCount returns min(5, 3 + adCount/50).
func RatingForAdCount(adCount int) float64 {
	r := 3 + float64(adCount)/50
	if r > 5 {
		return 5
	}
	return r
}

type Ad struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	Title        string       `json:"title" gorm:"index"`
	BrandID      string       `json:"brandId"`
	BrandLogo    string       `json:"brandLogo"`
	Platform     Platform     `json:"platform" gorm:"index"`
	Niche        Niche        `json:"niche" gorm:"index"`
	Type         CreativeType `json:"type"`
	Status       AdStatus     `json:"status" gorm:"index"`
	Tags         []string     `json:"tags" gorm:"serializer:json"`
	Thumbnail    string       `json:"thumbnail"`
	MediaURL     string       `json:"mediaUrl"`
	MediaHash    string       `json:"mediaHash"`
	Copy         string       `json:"copy"`
	CTA          string       `json:"cta"`
	Insights     string       `json:"insights"`
	Rating       float64      `json:"rating"`
	AddedAt      time.Time    `json:"addedAt" gorm:"index"`
	AdCount      int          `json:"adCount"`
	TicketPrice  string       `json:"ticketPrice"`
	FunnelType   string       `json:"funnelType"`
	SalesPageURL string       `json:"salesPageUrl"`
	CheckoutURL  string       `json:"checkoutUrl"`
	LibraryURL   string       `json:"libraryUrl"`
	TLD          string       `json:"tld" gorm:"index"`
	IsFeatured   bool         `json:"isFeatured"`
	DisplayOrder int          `json:"displayOrder"`
	IsVisible    bool         `json:"isVisible" gorm:"index"`

	Performance Performance `json:"performance" gorm:"serializer:json"`
	SiteTraffic SiteTraffic `json:"siteTraffic" gorm:"serializer:json"`
	TechStack   TechStack   `json:"techStack" gorm:"serializer:json"`
	Targeting   Targeting   `json:"targeting" gorm:"serializer:json"`
}

type Performance struct {
	EstimatedCtr       float64 `json:"estimatedCtr"`
	EstimatedCpc       float64 `json:"estimatedCpc"`
	DaysActive         int     `json:"daysActive"`
	SuccessProbability int     `json:"successProbability"`
	EstimatedSpend     string  `json:"estimatedSpend"`
	CloakerDetected    bool    `json:"cloakerDetected"`
	Momentum           []int   `json:"momentum"`
	SaturationLevel    int     `json:"saturationLevel"`
	MomentumScore      float64 `json:"momentumScore"`
}

type SiteTraffic struct {
	MonthlyVisits string      `json:"monthlyVisits"`
	TopSource     string      `json:"topSource"`
	DeviceSplit   DeviceSplit `json:"deviceSplit"`
}

type DeviceSplit struct {
	Mobile  int `json:"mobile"`
	Desktop int `json:"desktop"`
}

type TechStack struct {
	EcommercePlatform string   `json:"ecommercePlatform"`
	TrackingPixels    []string `json:"trackingPixels"`
	ServerCountry     string   `json:"serverCountry"`
}

type Targeting struct {
	Gender    string       `json:"gender"`
	AgeRange  string       `json:"ageRange"`
	Locations []AdLocation `json:"locations"`
}

type AdLocation struct {
	Country string `json:"country"`
	Flag    string `json:"flag"`
	Volume  int    `json:"volume"`
	Code    string `json:"code,omitempty"`
}

// RegionCode returns the ISO code of the first targeting location, or "UNKNOWN".
func (a Ad) RegionCode() string {
	if len(a.Targeting.Locations) == 0 || a.Targeting.Locations[0].Code == "" {
		return "UNKNOWN"
	}
	return a.Targeting.Locations[0].Code
}

// AdHistory records the adCount of an ad each time it is written.
type AdHistory struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	AdID      string    `json:"adId" gorm:"index;not null"`
	AdCount   int       `json:"adCount"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

func (AdHistory) TableName() string { return "ad_history" }
