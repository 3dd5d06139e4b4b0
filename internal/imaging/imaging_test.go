package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	return img
}

func TestFitDownscalesToBounds(t *testing.T) {
	resized := Fit(solidImage(1024, 1024), StickerMaxWidth, StickerMaxHeight)
	bounds := resized.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), StickerMaxWidth)
	assert.LessOrEqual(t, bounds.Dy(), StickerMaxHeight)
	// Square input is limited by the shorter edge.
	assert.Equal(t, StickerMaxHeight, bounds.Dy())
	assert.Equal(t, StickerMaxHeight, bounds.Dx())
}

func TestFitPreservesAspectRatio(t *testing.T) {
	resized := Fit(solidImage(1000, 500), StickerMaxWidth, StickerMaxHeight)
	bounds := resized.Bounds()
	assert.Equal(t, StickerMaxWidth, bounds.Dx())
	assert.Equal(t, 185, bounds.Dy())
}

func TestFitNeverUpscales(t *testing.T) {
	small := solidImage(100, 80)
	resized := Fit(small, StickerMaxWidth, StickerMaxHeight)
	assert.Equal(t, small.Bounds(), resized.Bounds())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encoded, err := EncodePNG(solidImage(10, 10))
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, 10, decoded.Bounds().Dx())
	assert.Equal(t, 10, decoded.Bounds().Dy())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	assert.Error(t, err)
}
