// Package handlers exposes the ad corpus and its intelligence snapshot over HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mtheuszin1/adscale-deploy/config"
	"github.com/mtheuszin1/adscale-deploy/database"
	"github.com/mtheuszin1/adscale-deploy/importer"
	"github.com/mtheuszin1/adscale-deploy/intelligence"
	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/metrics"
	"github.com/mtheuszin1/adscale-deploy/snapshot"
)

type Handler struct {
	store     *database.Store
	snapshots *snapshot.Service
	importer  *importer.Importer
	log       logger.Logger
	metrics   *metrics.Metrics
	media     config.ImportConfig
}

// New wires the API. log and m may be nil.
func New(store *database.Store, snapshots *snapshot.Service, imp *importer.Importer, log logger.Logger, m *metrics.Metrics, media config.ImportConfig) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		store:     store,
		snapshots: snapshots,
		importer:  imp,
		log:       log,
		metrics:   m,
		media:     media,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/ads", h.ListAds)
		api.DELETE("/ads", h.ClearAds)
		api.POST("/ads/import", h.ImportAds)
		api.GET("/ads/:id", h.GetAd)
		api.DELETE("/ads/:id", h.DeleteAd)
		api.PATCH("/ads/:id/curation", h.UpdateCuration)
		api.GET("/ads/:id/score", h.ScoreAd)
		api.GET("/ads/:id/history", h.AdHistory)
		api.POST("/ads/:id/analyze", h.AnalyzeAd)

		api.POST("/reprocess", h.Reprocess)
		api.GET("/intelligence", h.Intelligence)
		api.GET("/dashboard", h.Dashboard)
	}
}

// fail maps err to a status code and writes the error body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrAdNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, intelligence.ErrEmptyCorpus):
		status = http.StatusConflict
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
