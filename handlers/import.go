package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mtheuszin1/adscale-deploy/importer"
	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/media"
)

// ImportAds takes a multipart form with one "csv" file and any number of "media"
// files. Media files are stored under the media dir and matched to rows in upload order.
func (h *Handler) ImportAds(c *gin.Context) {
	ctx := c.Request.Context()

	csvHeader, err := c.FormFile("csv")
	if err != nil {
		badRequest(c, "missing csv file")
		return
	}

	var uploads []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		uploads = form.File["media"]
	}
	assets, err := h.storeMedia(c, uploads)
	if err != nil {
		h.fail(c, err)
		return
	}

	f, err := csvHeader.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open csv upload: %w", err))
		return
	}
	defer f.Close()

	records, err := importer.ReadCSV(f)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.importer.Run(ctx, records, assets)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log.Info("Ads imported",
		logger.String("csv", csvHeader.Filename),
		logger.Int("media_files", assets.Len()),
		logger.Int("ads", report.Total),
	)
	c.JSON(http.StatusOK, report)
}

func (h *Handler) storeMedia(c *gin.Context, uploads []*multipart.FileHeader) (*media.Library, error) {
	assets := media.NewLibrary()
	if len(uploads) == 0 {
		return assets, nil
	}
	if err := os.MkdirAll(h.media.MediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	for _, fh := range uploads {
		name := filepath.Base(fh.Filename)
		if name == "." || name == string(filepath.Separator) {
			continue
		}
		if err := c.SaveUploadedFile(fh, filepath.Join(h.media.MediaDir, name)); err != nil {
			return nil, fmt.Errorf("save media %s: %w", name, err)
		}
		assets.Add(name, importer.MediaURL(h.media.MediaBaseURL, name))
	}
	return assets, nil
}

// Reprocess re-runs region and status inference over the stored corpus.
func (h *Handler) Reprocess(c *gin.Context) {
	report, err := importer.Reprocess(c.Request.Context(), h.store, h.snapshots, h.log, h.metrics)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
