package sheet

import (
	"image"

	"github.com/nfnt/resize"
)

// Target print resolution.
const sheetDPI = 300

// subImager is implemented by the stdlib image types we decode into.
type subImager interface {
	image.Image
	SubImage(r image.Rectangle) image.Image
}

// centerCrop trims an image to the given aspect ratio (width over height),
// keeping the center. An image already at the ratio is returned unchanged.
func centerCrop(img image.Image, aspect float64) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	cropW, cropH := w, h
	if float64(w)/float64(h) > aspect {
		cropW = int(float64(h) * aspect)
	} else {
		cropH = int(float64(w) / aspect)
	}
	if cropW == w && cropH == h {
		return img
	}

	x0 := b.Min.X + (w-cropW)/2
	y0 := b.Min.Y + (h-cropH)/2
	crop := image.Rect(x0, y0, x0+cropW, y0+cropH)

	if si, ok := img.(subImager); ok {
		return si.SubImage(crop)
	}

	out := image.NewRGBA(image.Rect(0, 0, cropW, cropH))
	for y := 0; y < cropH; y++ {
		for x := 0; x < cropW; x++ {
			out.Set(x, y, img.At(crop.Min.X+x, crop.Min.Y+y))
		}
	}
	return out
}

// prepare crops an image to fill a slot of the given size (millimeters) and
// downscales anything above the print resolution. Images below the target
// resolution are kept as is; the PDF viewer upscales them.
func prepare(img image.Image, widthMM, heightMM float64) image.Image {
	img = centerCrop(img, widthMM/heightMM)

	targetW := int(widthMM / 25.4 * sheetDPI)
	if targetW > 0 && img.Bounds().Dx() > targetW {
		img = resize.Resize(uint(targetW), 0, img, resize.Lanczos3)
	}
	return img
}
