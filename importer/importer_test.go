package importer_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtheuszin1/adscale-deploy/config"
	"github.com/mtheuszin1/adscale-deploy/importer"
	"github.com/mtheuszin1/adscale-deploy/media"
	"github.com/mtheuszin1/adscale-deploy/models"
	"github.com/mtheuszin1/adscale-deploy/normalizer"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffPágina,Descrição,Info Ads, Extra\n" +
		"Brand X,\"Dieta, fitness e saúde\",45 ads Brazil,\n" +
		",,,\n" +
		"Brand Y,Curso online,12,x\n"

	records, err := importer.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, normalizer.RawRecord{
		"Página":    "Brand X",
		"Descrição": "Dieta, fitness e saúde",
		"Info Ads":  "45 ads Brazil",
	}, records[0])
	assert.Equal(t, "x", records[1]["Extra"])
}

func TestReadCSV_Semicolon(t *testing.T) {
	input := "Página;Preço;CTR\nBrand X;R$ 197,00;3,5%\n"

	records, err := importer.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "R$ 197,00", records[0]["Preço"])
	assert.Equal(t, "3,5%", records[0]["CTR"])
}

func TestReadCSV_ShortAndLongRows(t *testing.T) {
	input := "a,b\n1\n2,3,4\n"

	records, err := importer.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, normalizer.RawRecord{"a": "1"}, records[0])
	assert.Equal(t, normalizer.RawRecord{"a": "2", "b": "3"}, records[1])
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	records, err := importer.ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = importer.ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadMediaDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_clip.mp4", "a banner.png", ".DS_Store"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	lib, err := importer.LoadMediaDir(dir, "https://cdn.example.com/media/")
	require.NoError(t, err)

	assert.Equal(t, []string{"a banner.png", "b_clip.mp4"}, lib.Names())
	content, _, kind := lib.Match("https://ads.example.com/B_CLIP.MP4")
	assert.Equal(t, media.NormalizedMatch, kind)
	assert.Equal(t, "https://cdn.example.com/media/b_clip.mp4", content)

	content, _, _ = lib.Match("a banner.png")
	assert.Equal(t, "https://cdn.example.com/media/a%20banner.png", content)
}

func TestLoadMediaDir_Missing(t *testing.T) {
	_, err := importer.LoadMediaDir(filepath.Join(t.TempDir(), "nope"), "/media")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type recordingWriter struct {
	mu     sync.Mutex
	chunks [][]models.Ad
	failAt int
	err    error
}

func (w *recordingWriter) SaveAds(_ context.Context, ads []models.Ad) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil && len(w.chunks) == w.failAt {
		return w.err
	}
	w.chunks = append(w.chunks, append([]models.Ad(nil), ads...))
	return nil
}

type countingRefresher struct{ calls int }

func (r *countingRefresher) Refresh(context.Context) (*models.LibraryIntelligence, error) {
	r.calls++
	return &models.LibraryIntelligence{}, nil
}

func newImporter(w importer.AdWriter, r importer.Refresher, chunk int) *importer.Importer {
	im := importer.New(w, r, nil, nil, config.ImportConfig{Workers: 3, ChunkSize: chunk})
	im.Normalizer = &normalizer.Normalizer{
		Now:   func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string { return "generated" },
	}
	return im
}

func rows(n int) []normalizer.RawRecord {
	out := make([]normalizer.RawRecord, n)
	for i := range out {
		out[i] = normalizer.RawRecord{
			"id":       fmt.Sprintf("ad-%02d", i),
			"página":   fmt.Sprintf("Brand %d", i),
			"info ads": fmt.Sprintf("%d ads", i*5),
		}
	}
	return out
}

func TestRun(t *testing.T) {
	assets := media.NewLibrary()
	assets.Add("brand_one.mp4", "/media/brand_one.mp4")

	records := rows(7)
	records[0]["url criativo"] = "https://cdn.example.com/brand_one.mp4"
	records[1]["url criativo"] = "https://cdn.example.com/unknown_file.jpg"

	w := &recordingWriter{}
	r := &countingRefresher{}
	report, err := newImporter(w, r, 3).Run(context.Background(), records, assets)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Total)
	assert.Equal(t, 1, report.Linked)
	assert.Equal(t, 1, report.Unlinked)
	assert.Equal(t, 5, report.NoMedia)

	require.Len(t, report.Ads, 7)
	for i, ad := range report.Ads {
		assert.Equal(t, fmt.Sprintf("ad-%02d", i), ad.ID)
		assert.Equal(t, i*5, ad.AdCount)
		assert.Equal(t, models.StatusForAdCount(ad.AdCount), ad.Status)
	}
	assert.Equal(t, "/media/brand_one.mp4", report.Ads[0].MediaURL)
	assert.Equal(t, models.CreativeVSL, report.Ads[0].Type)

	require.Len(t, w.chunks, 3)
	assert.Len(t, w.chunks[0], 3)
	assert.Len(t, w.chunks[1], 3)
	assert.Len(t, w.chunks[2], 1)
	assert.Equal(t, "ad-06", w.chunks[2][0].ID)
	assert.Equal(t, 1, r.calls)
}

func TestRun_Empty(t *testing.T) {
	w := &recordingWriter{}
	r := &countingRefresher{}
	report, err := newImporter(w, r, 50).Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Empty(t, w.chunks)
	assert.Zero(t, r.calls)
}

func TestRun_WriteErrorStops(t *testing.T) {
	boom := errors.New("disk full")
	w := &recordingWriter{failAt: 1, err: boom}
	r := &countingRefresher{}

	_, err := newImporter(w, r, 2).Run(context.Background(), rows(5), nil)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, w.chunks, 1)
	assert.Zero(t, r.calls)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{}
	_, err := newImporter(w, nil, 2).Run(ctx, rows(4), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.chunks)
}
