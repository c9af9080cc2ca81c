package models

import "time"

// LibraryIntelligence is a full recomputation over the ad corpus. It is never updated in place.
type LibraryIntelligence struct {
	GlobalStats           GlobalStats                   `json:"globalStats" msgpack:"globalStats"`
	PlatformInsights      map[Platform]PlatformInsight  `json:"platformInsights" msgpack:"platformInsights"`
	TicketInsights        TicketInsights                `json:"ticketInsights" msgpack:"ticketInsights"`
	TimeInsights          TimeInsights                  `json:"timeInsights" msgpack:"timeInsights"`
	FalsePositivePatterns FalsePositivePatterns         `json:"falsePositivePatterns" msgpack:"falsePositivePatterns"`
	Baselines             map[Platform]PlatformBaseline `json:"baselines" msgpack:"baselines"`
	LastAnalysis          time.Time                     `json:"lastAnalysis" msgpack:"lastAnalysis"`
}

type GlobalStats struct {
	TotalAds             int                  `json:"totalAds" msgpack:"totalAds"`
	ScalingPercentage    float64              `json:"scalingPercentage" msgpack:"scalingPercentage"`
	SurvivalDistribution SurvivalDistribution `json:"survivalDistribution" msgpack:"survivalDistribution"`
}

// SurvivalDistribution holds percentages of the corpus per daysActive bucket.
type SurvivalDistribution struct {
	InfantMortality float64 `json:"infantMortality" msgpack:"infantMortality"` // < 5 days
	Validated       float64 `json:"validated" msgpack:"validated"`             // 5-15 days
	Legacy          float64 `json:"legacy" msgpack:"legacy"`                   // > 15 days
}

type PlatformInsight struct {
	Platform             Platform `json:"platform" msgpack:"platform"`
	AvgCtrAll            float64  `json:"avgCtrAll" msgpack:"avgCtrAll"`
	AvgCtrScaling        float64  `json:"avgCtrScaling" msgpack:"avgCtrScaling"`
	AvgDaysActiveScaling float64  `json:"avgDaysActiveScaling" msgpack:"avgDaysActiveScaling"`
	AvgAdCountScaling    float64  `json:"avgAdCountScaling" msgpack:"avgAdCountScaling"`
	ScalingRate          float64  `json:"scalingRate" msgpack:"scalingRate"`
	TotalAds             int      `json:"totalAds" msgpack:"totalAds"`
	EfficiencyIndex      float64  `json:"efficiencyIndex" msgpack:"efficiencyIndex"`
}

type TicketInsights struct {
	AvgTicketScaling    float64     `json:"avgTicketScaling" msgpack:"avgTicketScaling"`
	MostSuccessfulRange TicketRange `json:"mostSuccessfulRange" msgpack:"mostSuccessfulRange"`
}

type TicketRange struct {
	Min float64 `json:"min" msgpack:"min"`
	Max float64 `json:"max" msgpack:"max"`
}

type TimeInsights struct {
	AvgTimeToScale    float64 `json:"avgTimeToScale" msgpack:"avgTimeToScale"`
	SurvivalThreshold int     `json:"survivalThreshold" msgpack:"survivalThreshold"`
}

type FalsePositivePatterns struct {
	ClickbaitThresholds map[Platform]float64 `json:"clickbaitThresholds" msgpack:"clickbaitThresholds"`
	HypeAdsDetected     int                  `json:"hypeAdsDetected" msgpack:"hypeAdsDetected"`
}

type PlatformBaseline struct {
	MinCtrForScale     float64 `json:"minCtrForScale" msgpack:"minCtrForScale"`
	MinDaysForScale    int     `json:"minDaysForScale" msgpack:"minDaysForScale"`
	MinAdCountForScale int     `json:"minAdCountForScale" msgpack:"minAdCountForScale"`
	SuspiciousCtrLimit float64 `json:"suspiciousCtrLimit" msgpack:"suspiciousCtrLimit"`
}
