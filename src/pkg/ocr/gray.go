package ocr

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var white = image.NewUniform(color.Gray{Y: 255})

// toGray flattens img onto a white background and returns it as a zero-origin *image.Gray.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	if gray, ok := img.(*image.Gray); ok && bounds.Min == (image.Point{}) {
		return gray
	}

	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), white, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Over)
	return out
}

func cloneGray(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, y):img.PixOffset(bounds.Max.X, y)]
		copy(out.Pix[out.PixOffset(bounds.Min.X, y):], src)
	}
	return out
}
