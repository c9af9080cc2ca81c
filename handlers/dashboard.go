package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mtheuszin1/adscale-deploy/database"
	"github.com/mtheuszin1/adscale-deploy/intelligence"
	"github.com/mtheuszin1/adscale-deploy/models"
)

// DefaultTopAds is how many ranked ads the dashboard shows.
const DefaultTopAds = 10

type DashboardData struct {
	Stats       database.AdStats                           `json:"stats"`
	GlobalStats *models.GlobalStats                        `json:"globalStats"`
	Platforms   map[models.Platform]models.PlatformInsight `json:"platformInsights"`
	Tickets     *models.TicketInsights                     `json:"ticketInsights"`
	HypeAds     int                                        `json:"hypeAds"`
	TopAds      []intelligence.RankedAd                    `json:"topAds"`
	Featured    []models.Ad                                `json:"featured"`
}

// Intelligence returns the snapshot of the current corpus.
func (h *Handler) Intelligence(c *gin.Context) {
	intel, err := h.snapshots.Current(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, intel)
}

// Dashboard summarizes the library. Stats cover every ad; the ranking and the featured
// list only show visible ones. An empty library yields zero stats and no ranking.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	top, err := strconv.Atoi(c.DefaultQuery("top", strconv.Itoa(DefaultTopAds)))
	if err != nil || top < 0 {
		badRequest(c, "top must be a non-negative integer")
		return
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := DashboardData{Stats: stats, TopAds: []intelligence.RankedAd{}, Featured: []models.Ad{}}
	if top > 0 && stats.Total > 0 {
		if data.Featured, err = h.store.FeaturedAds(ctx, top); err != nil {
			h.fail(c, err)
			return
		}
	}

	intel, err := h.snapshots.Current(ctx)
	switch {
	case errors.Is(err, intelligence.ErrEmptyCorpus):
		c.JSON(http.StatusOK, data)
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	ads, err := h.store.ListAds(ctx, database.AdFilter{VisibleOnly: true})
	if err != nil {
		h.fail(c, err)
		return
	}
	ranked := intelligence.RankAds(ads, intel)
	if len(ranked) > top {
		ranked = ranked[:top]
	}

	data.GlobalStats = &intel.GlobalStats
	data.Platforms = intel.PlatformInsights
	data.Tickets = &intel.TicketInsights
	data.HypeAds = intel.FalsePositivePatterns.HypeAdsDetected
	if len(ranked) > 0 {
		data.TopAds = ranked
	}
	c.JSON(http.StatusOK, data)
}
