package ocr

import (
	"errors"
	"fmt"
	"image"
)

// ErrFormatMismatch means segmentation found an implausible number of characters.
var ErrFormatMismatch = errors.New("implausible character count")

// Region is a column range [Start, End) believed to hold one character.
type Region struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Region) Width() int {
	return r.End - r.Start
}

// Projection counts, per column, the pixels darker than darkBelow.
func Projection(img *image.Gray, darkBelow uint8) []int {
	bounds := img.Bounds()
	projection := make([]int, bounds.Dx())
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			if img.GrayAt(x, y).Y < darkBelow {
				projection[x-bounds.Min.X]++
			}
		}
	}
	return projection
}

// FindRegions returns the maximal runs of columns whose projection exceeds
// minProjection and that are at least minWidth wide.
func FindRegions(projection []int, minProjection, minWidth int) []Region {
	var regions []Region
	start := -1

	for x, count := range projection {
		inChar := count > minProjection
		switch {
		case inChar && start < 0:
			start = x
		case !inChar && start >= 0:
			if x-start >= minWidth {
				regions = append(regions, Region{Start: start, End: x})
			}
			start = -1
		}
	}
	if start >= 0 && len(projection)-start >= minWidth {
		regions = append(regions, Region{Start: start, End: len(projection)})
	}

	return regions
}

// MergeRegions joins neighbors separated by at most maxGap columns, which is
// how touching characters usually show up.
func MergeRegions(regions []Region, maxGap int) []Region {
	if len(regions) == 0 {
		return nil
	}

	merged := make([]Region, 0, len(regions))
	current := regions[0]
	for _, next := range regions[1:] {
		if next.Start-current.End <= maxGap {
			current.End = next.End
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

/*
Segment splits a cleaned captcha into character regions using its vertical
projection.

It returns ErrFormatMismatch when the merged region count falls outside
[cfg.MinChars, cfg.MaxChars]; a partial read is never returned.
*/
func Segment(img *image.Gray, cfg Config) (regions []Region, err error) {
	projection := Projection(img, cfg.DarkBelow)
	raw := FindRegions(projection, cfg.MinProjection, cfg.MinCharWidth)
	regions = MergeRegions(raw, cfg.MergeGap)

	if len(regions) < cfg.MinChars || len(regions) > cfg.MaxChars {
		return nil, fmt.Errorf("%w: %d regions, want %d-%d", ErrFormatMismatch, len(regions), cfg.MinChars, cfg.MaxChars)
	}

	return regions, nil
}
