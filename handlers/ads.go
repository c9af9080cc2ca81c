package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mtheuszin1/adscale-deploy/database"
	"github.com/mtheuszin1/adscale-deploy/intelligence"
	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/models"
)

func (h *Handler) ListAds(c *gin.Context) {
	ctx := c.Request.Context()

	// Query parameters
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return
	}
	byScore := c.Query("sort") == "score"

	filter := database.AdFilter{
		Niche:       models.Niche(c.Query("niche")),
		Platform:    models.Platform(c.Query("platform")),
		Status:      models.AdStatus(c.Query("status")),
		Region:      c.Query("region"),
		VisibleOnly: c.Query("visible") == "true",
	}
	// Ranking needs the whole filtered set before cutting.
	if !byScore {
		filter.Limit = limit
	}

	ads, err := h.store.ListAds(ctx, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(ads) == 0 {
		c.JSON(http.StatusOK, []intelligence.RankedAd{})
		return
	}

	intel, err := h.snapshots.Current(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	var out []intelligence.RankedAd
	if byScore {
		out = intelligence.RankAds(ads, intel)
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
	} else {
		out = make([]intelligence.RankedAd, len(ads))
		for i, ad := range ads {
			out[i] = intelligence.RankedAd{Ad: ad, Score: intelligence.ScoreAd(ad, intel)}
		}
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAd(c *gin.Context) {
	ad, err := h.store.GetAd(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

// ScoreAd scores one stored ad against the current snapshot.
func (h *Handler) ScoreAd(c *gin.Context) {
	ctx := c.Request.Context()

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

	c.JSON(http.StatusOK, gin.H{
		"id":           ad.ID,
		"score":        intelligence.ScoreAd(*ad, intel),
		"platform":     ad.Platform,
		"baseline":     intel.Baselines[ad.Platform],
		"lastAnalysis": intel.LastAnalysis,
	})
}

func (h *Handler) AdHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := h.store.GetAd(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	history, err := h.store.AdHistoryFor(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// UpdateCuration changes whether an ad is featured or visible and where it is shown.
func (h *Handler) UpdateCuration(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req database.CurationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid curation body: "+err.Error())
		return
	}
	if err := h.store.UpdateCuration(ctx, id, req); err != nil {
		h.fail(c, err)
		return
	}

	ad, err := h.store.GetAd(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *Handler) DeleteAd(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.store.DeleteAd(ctx, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.refresh(c)
	c.Status(http.StatusNoContent)
}

// ClearAds empties the library.
func (h *Handler) ClearAds(c *gin.Context) {
	if err := h.store.ClearAds(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	h.refresh(c)
	c.Status(http.StatusNoContent)
}

// refresh recomputes the snapshot after a write. An emptied corpus is not a failure.
func (h *Handler) refresh(c *gin.Context) {
	_, err := h.snapshots.Refresh(c.Request.Context())
	if err != nil && !errors.Is(err, intelligence.ErrEmptyCorpus) {
		h.log.Warn("Snapshot refresh failed", logger.Error(err))
	}
}
