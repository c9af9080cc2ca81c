package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mtheuszin1/adscale-deploy/classifier"
	"github.com/mtheuszin1/adscale-deploy/intelligence"
	"github.com/mtheuszin1/adscale-deploy/models"
)

type AnalysisRequest struct {
	Language string `json:"language"`
}

// AdAnalysis is the heuristic read of one ad against the current snapshot.
type AdAnalysis struct {
	Niche        models.Niche `json:"niche"`
	Escala       int          `json:"escala"`
	Region       string       `json:"region"`
	InferredByAI bool         `json:"inferredByAI"`
	Score        int          `json:"score"`
	Clickbait    bool         `json:"clickbait"`
	Summary      string       `json:"summary"`
}

// AnalyzeAd classifies a stored ad again, scores it and saves the summary as its insights.
func (h *Handler) AnalyzeAd(c *gin.Context) {
	ctx := c.Request.Context()

	var request AnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}

	ad, err := h.store.GetAd(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	intel, err := h.snapshots.Current(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	infoAds := strconv.Itoa(ad.AdCount) + " ads"
	quick := classifier.QuickAnalyze(ad.Copy, infoAds)
	det := classifier.DetectRegion(infoAds, ad.Copy+" "+ad.Title)

	analysis := AdAnalysis{
		Niche:        quick.Niche,
		Escala:       quick.Escala,
		Region:       det.Region.Code,
		InferredByAI: det.InferredByAI,
		Score:        intelligence.ScoreAd(*ad, intel),
		Clickbait:    intelligence.Clickbait(*ad, intel),
	}
	analysis.Summary = summarize(*ad, analysis, det.Region.Country, request.Language)

	// Save the summary
	ad.Insights = analysis.Summary
	if err := h.store.UpdateAds(ctx, []models.Ad{*ad}); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func summarize(ad models.Ad, a AdAnalysis, country, language string) string {
	if language == "en" {
		s := fmt.Sprintf("Score %d/100 on %s. Niche: %s, scale %d/10. Region: %s. Status: %s (%d active).",
			a.Score, ad.Platform, a.Niche, a.Escala, country, ad.Status, ad.AdCount)
		if a.Clickbait {
			s += " Suspicious CTR for its age."
		}
		return s
	}
	s := fmt.Sprintf("Score %d/100 em %s. Nicho: %s, escala %d/10. Região: %s. Status: %s (%d ativos).",
		a.Score, ad.Platform, a.Niche, a.Escala, country, ad.Status, ad.AdCount)
	if a.Clickbait {
		s += " CTR suspeito para a idade do anúncio."
	}
	return s
}
