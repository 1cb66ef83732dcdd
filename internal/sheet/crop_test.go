package sheet

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func TestCenterCropWide(t *testing.T) {
	img := solidImage(400, 100)
	got := centerCrop(img, 2)

	b := got.Bounds()
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 100, b.Dy())
	assert.Equal(t, 100, b.Min.X, "crop is centered")
}

func TestCenterCropTall(t *testing.T) {
	img := solidImage(100, 400)
	got := centerCrop(img, 1)

	b := got.Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 100, b.Dy())
	assert.Equal(t, 150, b.Min.Y)
}

func TestCenterCropExactRatio(t *testing.T) {
	img := solidImage(200, 100)
	got := centerCrop(img, 2)
	assert.Equal(t, image.Image(img), got, "image at the target ratio passes through")
}

func TestPrepareDownscales(t *testing.T) {
	// 63mm wide at 300dpi is 744 pixels; a 2000px source must shrink.
	img := solidImage(2000, 2800)
	got := prepare(img, 63, 88.2)

	require.Equal(t, 744, got.Bounds().Dx())
	ratio := float64(got.Bounds().Dx()) / float64(got.Bounds().Dy())
	assert.InDelta(t, 63.0/88.2, ratio, 0.01)
}

func TestPrepareKeepsSmallImages(t *testing.T) {
	img := solidImage(300, 420)
	got := prepare(img, 63, 88.2)
	assert.LessOrEqual(t, got.Bounds().Dx(), 300, "small sources are never upscaled")
}
