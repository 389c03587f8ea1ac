package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeResizesToWorkingResolution(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 250, 170))
	for y := src.Bounds().Min.Y; y < src.Bounds().Max.Y; y++ {
		for x := src.Bounds().Min.X; x < src.Bounds().Max.X; x++ {
			src.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	out := Canonicalize(src, 120, 80)

	assert.Equal(t, image.Rect(0, 0, 120, 80), out.Bounds())
}

func TestRotateByZeroCopies(t *testing.T) {
	img := syntheticCaptcha(10, 35, 60)

	out := Rotate(img, 0)

	assert.Equal(t, img.Pix, out.Pix)
	assert.NotSame(t, img, out)
}

func TestRotateFillsUncoveredAreaWhite(t *testing.T) {
	img := filled(40, 40, 0)

	for _, angle := range []float64{-20, 20} {
		out := Rotate(img, angle)

		require.Equal(t, img.Bounds(), out.Bounds())
		assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y, "corner at %v degrees", angle)
		assert.Equal(t, uint8(0), out.GrayAt(20, 20).Y, "center at %v degrees", angle)
	}
}

func TestRotateIsAngleSensitive(t *testing.T) {
	img := syntheticCaptcha(30)

	left := Rotate(img, -10)
	right := Rotate(img, 10)

	assert.NotEqual(t, img.Pix, left.Pix)
	assert.NotEqual(t, img.Pix, right.Pix)
	assert.NotEqual(t, left.Pix, right.Pix)
}

func TestCorrectRotationKeepsBaselineWithoutImprovement(t *testing.T) {
	img := filled(60, 40, 255)

	best, angle := CorrectRotation(img, DefaultValueConfig().RotationAngles)

	assert.Same(t, img, best)
	assert.Zero(t, angle)
}

func TestClarity(t *testing.T) {
	assert.Zero(t, Clarity(filled(10, 10, 90)))

	half := filled(10, 10, 255)
	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			half.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	assert.InDelta(t, 255.0*255.0/4, Clarity(half), 1e-6)
}
