package ocr

import (
	"image"
	"image/color"

	"chat-captcha/src/pkg/util"
)

/*
Clean applies the contrast and noise stage to a canonical captcha.

The steps are:
  - Adaptive local threshold, which flattens the uneven background.
  - Isolated-pixel removal, which flips the random dots the generator adds.
  - Erosion followed by dilation, which closes gaps inside broken strokes.
*/
func Clean(img *image.Gray, cfg Config) *image.Gray {
	thresholded := AdaptiveThreshold(img, cfg.ThresholdRadius)
	denoised := RemoveIsolatedPixels(thresholded, cfg.NoiseSplit)
	eroded := Erode(denoised, cfg.MorphologyRadius)
	return Dilate(eroded, cfg.MorphologyRadius)
}

/*
AdaptiveThreshold maps every pixel to white when it is at least as bright as
the mean of the (2*radius+1)^2 window around it, and to black otherwise.
Windows are clipped at the image border.
*/
func AdaptiveThreshold(img *image.Gray, radius int) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	stride := width + 1

	// summed-area table with a zero first row and column
	table := make([]int64, stride*(height+1))
	for y := 0; y < height; y++ {
		var rowSum int64
		for x := 0; x < width; x++ {
			rowSum += int64(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			table[(y+1)*stride+x+1] = table[y*stride+x+1] + rowSum
		}
	}

	out := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		y0 := util.Clamp(y-radius, 0, height)
		y1 := util.Clamp(y+radius+1, 0, height)
		for x := 0; x < width; x++ {
			x0 := util.Clamp(x-radius, 0, width)
			x1 := util.Clamp(x+radius+1, 0, width)

			sum := table[y1*stride+x1] - table[y0*stride+x1] - table[y1*stride+x0] + table[y0*stride+x0]
			count := int64((x1 - x0) * (y1 - y0))
			value := int64(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)

			if value*count >= sum {
				out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: 255})
			}
		}
	}

	return out
}

/*
RemoveIsolatedPixels inverts interior pixels that have fewer than two
8-connected neighbors on the same side of split.

Neighbors are always read from the input, so a flip never influences another
decision in the same pass. Border pixels are copied unchanged.
*/
func RemoveIsolatedPixels(img *image.Gray, split uint8) *image.Gray {
	out := cloneGray(img)
	bounds := img.Bounds()

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			value := img.GrayAt(x, y).Y
			bright := value > split

			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if (img.GrayAt(x+dx, y+dy).Y > split) == bright {
						neighbors++
					}
				}
			}

			if neighbors < 2 {
				out.SetGray(x, y, color.Gray{Y: 255 - value})
			}
		}
	}

	return out
}

// Erode grows dark strokes: each pixel takes the minimum over its L1 neighborhood.
func Erode(img *image.Gray, radius int) *image.Gray {
	return morph(img, radius, func(a, b uint8) bool { return b < a })
}

// Dilate shrinks dark strokes: each pixel takes the maximum over its L1 neighborhood.
func Dilate(img *image.Gray, radius int) *image.Gray {
	return morph(img, radius, func(a, b uint8) bool { return b > a })
}

func morph(img *image.Gray, radius int, replace func(current, candidate uint8) bool) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			value := img.GrayAt(x, y).Y
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if abs(dx)+abs(dy) > radius {
						continue
					}
					p := image.Pt(x+dx, y+dy)
					if !p.In(bounds) {
						continue
					}
					if candidate := img.GrayAt(p.X, p.Y).Y; replace(value, candidate) {
						value = candidate
					}
				}
			}
			out.SetGray(x, y, color.Gray{Y: value})
		}
	}

	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
