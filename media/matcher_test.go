package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtheuszin1/adscale-deploy/media"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"brand_x.mp4", "brand_x"},
		{"https://cdn.example.com/path/brand_x.MP4", "brand_x"},
		{"  Creative.Final.v2.png ", "creative"},
		{"https://cdn.example.com/a/b/clip.mp4?sig=abc.def", "clip"},
		{"folder/NoExt", "noext"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, media.Normalize(tt.in))
		})
	}
}

func TestLibrary_Match(t *testing.T) {
	lib := media.NewLibrary()
	lib.Add("brand_x.mp4", "data:video/mp4;base64,AAA")
	lib.Add("summer_campaign_01.jpg", "data:image/jpeg;base64,BBB")
	lib.Add("ab.mp4", "data:video/mp4;base64,CCC")

	t.Run("exact raw value", func(t *testing.T) {
		content, name, kind := lib.Match("brand_x.mp4")
		assert.Equal(t, media.ExactMatch, kind)
		assert.Equal(t, "brand_x.mp4", name)
		assert.Equal(t, "data:video/mp4;base64,AAA", content)
	})

	t.Run("url with path and uppercase extension", func(t *testing.T) {
		content, name, kind := lib.Match("https://cdn.example.com/path/brand_x.MP4")
		assert.Equal(t, media.NormalizedMatch, kind)
		assert.Equal(t, "brand_x.mp4", name)
		assert.Equal(t, "data:video/mp4;base64,AAA", content)
	})

	t.Run("fuzzy containment either direction", func(t *testing.T) {
		_, name, kind := lib.Match("https://x.io/summer_campaign_01_final.jpg")
		assert.Equal(t, media.FuzzyMatch, kind)
		assert.Equal(t, "summer_campaign_01.jpg", name)

		_, name, kind = lib.Match("campaign_01")
		assert.Equal(t, media.FuzzyMatch, kind)
		assert.Equal(t, "summer_campaign_01.jpg", name)
	})

	t.Run("short names never fuzzy match", func(t *testing.T) {
		_, _, kind := lib.Match("xab.mp4")
		assert.Equal(t, media.NoMatch, kind)
	})

	t.Run("empty reference", func(t *testing.T) {
		_, _, kind := lib.Match("")
		assert.Equal(t, media.NoMatch, kind)
	})
}

func TestLibrary_MatchPrefersNormalizedOverFuzzy(t *testing.T) {
	lib := media.NewLibrary()
	lib.Add("product_video_long.mp4", "first")
	lib.Add("product_video.mov", "second")

	content, _, kind := lib.Match("product_video.mp4")
	require.Equal(t, media.NormalizedMatch, kind)
	assert.Equal(t, "second", content)
}

func TestLibrary_FirstUploadWins(t *testing.T) {
	lib := media.NewLibrary()
	lib.Add("holiday_sale_a.png", "a")
	lib.Add("holiday_sale_b.png", "b")

	content, _, kind := lib.Match("holiday_sale")
	require.Equal(t, media.FuzzyMatch, kind)
	assert.Equal(t, "a", content)
}

func TestLibrary_AddKeepsOrder(t *testing.T) {
	lib := media.NewLibrary()
	lib.Add("one.png", "1")
	lib.Add("two.png", "2")
	lib.Add("one.png", "1b")

	assert.Equal(t, []string{"one.png", "two.png"}, lib.Names())
	content, _, _ := lib.Match("one.png")
	assert.Equal(t, "1b", content)
}

func TestLibrary_NilIsEmpty(t *testing.T) {
	var lib *media.Library
	assert.Zero(t, lib.Len())
	_, _, kind := lib.Match("anything.mp4")
	assert.Equal(t, media.NoMatch, kind)
}
