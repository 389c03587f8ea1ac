package ocr

import (
	"errors"
	"fmt"
	"image"
	"math"
	"unicode/utf8"

	"github.com/disintegration/imaging"
)

// UnknownMarker stands in for a character nothing could identify.
const UnknownMarker = '?'

// ErrValidationFailure means the assembled text is too short or has characters
// outside [0-9A-Za-z?].
var ErrValidationFailure = errors.New("recognized text failed validation")

// Recognizer labels character crops against a TemplateStore.
type Recognizer struct {
	store    *TemplateStore
	fallback FallbackRules
	cfg      Config
}

func NewRecognizer(store *TemplateStore, fallback FallbackRules, cfg Config) *Recognizer {
	return &Recognizer{store: store, fallback: fallback, cfg: cfg}
}

/*
Identify returns the best label for crop.

Every template is scored with Compare; the lowest score wins when it is below
the acceptance threshold (matched is true). Otherwise the fallback rules pick
a label from the crop's dark-pixel distribution. Ties go to the smaller label.
*/
func (r *Recognizer) Identify(crop *image.Gray) (label rune, score float64, matched bool) {
	score = math.MaxFloat64
	label = UnknownMarker

	for _, candidate := range r.store.Labels() {
		template, _ := r.store.Template(candidate)
		candidateScore := Compare(crop, template, r.cfg.CompareWidth, r.cfg.CompareHeight)
		if candidateScore < score {
			label, score = candidate, candidateScore
		}
	}

	if score < r.cfg.AcceptThreshold {
		return label, score, true
	}

	return r.fallback.Estimate(MeasureDistribution(crop, r.cfg.DarkBelow)), score, false
}

// Read labels every region of a cleaned captcha and validates the result.
func (r *Recognizer) Read(img *image.Gray, regions []Region, sink Sink) (text string, err error) {
	labels := make([]rune, 0, len(regions))
	for i, region := range regions {
		crop := CropRegion(img, region)
		sink.Character(i, crop)

		label, _, _ := r.Identify(crop)
		labels = append(labels, label)
	}

	text = string(labels)
	if !ValidText(text) {
		return "", fmt.Errorf("%w: %q", ErrValidationFailure, text)
	}
	return text, nil
}

// CropRegion cuts the full-height column range of region out of img.
func CropRegion(img *image.Gray, region Region) *image.Gray {
	bounds := img.Bounds()
	rect := image.Rect(bounds.Min.X+region.Start, bounds.Min.Y, bounds.Min.X+region.End, bounds.Max.Y)
	return toGray(imaging.Crop(img, rect))
}

/*
Compare resamples both images to width x height (nearest neighbor) and returns
the mean absolute difference of their normalized intensities: 0 for identical
images, 1 for exact inverses.
*/
func Compare(a, b *image.Gray, width, height int) float64 {
	resizedA := toGray(imaging.Resize(a, width, height, imaging.NearestNeighbor))
	resizedB := toGray(imaging.Resize(b, width, height, imaging.NearestNeighbor))

	var diffSum float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pa := float64(resizedA.GrayAt(x, y).Y) / 255
			pb := float64(resizedB.GrayAt(x, y).Y) / 255
			diffSum += math.Abs(pa - pb)
		}
	}

	return diffSum / float64(width*height)
}

// ValidText reports whether text is at least three characters of [0-9A-Za-z?].
func ValidText(text string) bool {
	if utf8.RuneCountInString(text) < 3 {
		return false
	}
	for _, c := range text {
		if !isAlphanumeric(c) && c != UnknownMarker {
			return false
		}
	}
	return true
}

func isAlphanumeric(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
