package ocr

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

/*
Canonicalize converts a decoded captcha into the pipeline's working form.

The steps are:
  - Convert to grayscale.
  - Resize to exactly width x height with a Gaussian filter. The captcha
    generator always emits the same aspect ratio, so no padding is needed.
*/
func Canonicalize(img image.Image, width, height int) *image.Gray {
	grayscaleImage := imaging.Grayscale(img)
	resizedImage := imaging.Resize(grayscaleImage, width, height, imaging.Gaussian)
	return toGray(resizedImage)
}

/*
Rotate renders img rotated by degrees around its center, keeping the original
canvas size. Areas uncovered by the rotation are filled white.
*/
func Rotate(img *image.Gray, degrees float64) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	draw.Draw(out, bounds, white, image.Point{}, draw.Src)

	if degrees == 0 {
		draw.Draw(out, bounds, img, bounds.Min, draw.Src)
		return out
	}

	sin, cos := math.Sincos(degrees * math.Pi / 180)
	cx := float64(bounds.Min.X) + float64(bounds.Dx())/2
	cy := float64(bounds.Min.Y) + float64(bounds.Dy())/2

	// source -> destination: translate center to origin, rotate, translate back
	transform := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(out, transform, img, bounds, draw.Over, nil)

	return out
}

/*
CorrectRotation renders one candidate per angle and keeps the clearest one.

The unrotated image is the baseline; a candidate replaces the current best only
when its clarity is strictly higher. It returns the winning image and its angle.
*/
func CorrectRotation(img *image.Gray, angles []float64) (best *image.Gray, bestAngle float64) {
	best = img
	bestScore := Clarity(img)

	for _, angle := range angles {
		candidate := Rotate(img, angle)
		score := Clarity(candidate)
		if score > bestScore {
			best, bestScore, bestAngle = candidate, score, angle
		}
	}

	return best, bestAngle
}

// Clarity is the variance of the intensity histogram. Only meaningful when
// comparing renderings of the same captcha.
func Clarity(img *image.Gray) float64 {
	var histogram [256]int
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			histogram[img.GrayAt(x, y).Y]++
		}
	}

	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return 0
	}

	var mean float64
	for level, count := range histogram {
		mean += float64(level) * float64(count) / total
	}

	var variance float64
	for level, count := range histogram {
		diff := float64(level) - mean
		variance += diff * diff * float64(count) / total
	}

	return variance
}
