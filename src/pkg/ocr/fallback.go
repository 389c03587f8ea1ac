package ocr

import "image"

// Distribution describes where the dark pixels of a character crop sit.
// Ratios are fractions of Dark.
type Distribution struct {
	Dark   int
	Top    float64
	Middle float64
	Bottom float64
	Left   float64
}

// MeasureDistribution splits the crop into horizontal thirds and vertical halves
// and reports the share of dark pixels in each.
func MeasureDistribution(img *image.Gray, darkBelow uint8) Distribution {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var top, middle, bottom, left int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y >= darkBelow {
				continue
			}
			switch {
			case y < height/3:
				top++
			case y < 2*height/3:
				middle++
			default:
				bottom++
			}
			if x < width/2 {
				left++
			}
		}
	}

	d := Distribution{Dark: top + middle + bottom}
	if d.Dark == 0 {
		return d
	}
	total := float64(d.Dark)
	d.Top = float64(top) / total
	d.Middle = float64(middle) / total
	d.Bottom = float64(bottom) / total
	d.Left = float64(left) / total
	return d
}

// FallbackRule maps a distinctive distribution to a label.
type FallbackRule struct {
	Label rune
	Match func(d Distribution) bool
}

// FallbackRules is evaluated in order; the first matching rule wins and
// Default is used when none match.
type FallbackRules struct {
	Rules   []FallbackRule
	Default rune
}

func DefaultFallbackRules() FallbackRules {
	return FallbackRules{
		Rules: []FallbackRule{
			{Label: '8', Match: func(d Distribution) bool { return d.Top > 0.4 && d.Bottom > 0.4 && d.Middle < 0.2 }},
			{Label: 'E', Match: func(d Distribution) bool { return d.Top > 0.4 && d.Middle > 0.3 }},
			{Label: 'C', Match: func(d Distribution) bool { return d.Left > 0.7 }},
			{Label: 'J', Match: func(d Distribution) bool { return d.Top < 0.2 && d.Bottom > 0.5 }},
			{Label: 'H', Match: func(d Distribution) bool { return d.Middle > 0.5 }},
		},
		Default: 'A',
	}
}

// Estimate labels a distribution. A crop with no dark pixels is UnknownMarker.
func (f FallbackRules) Estimate(d Distribution) rune {
	if d.Dark == 0 {
		return UnknownMarker
	}
	for _, rule := range f.Rules {
		if rule.Match(d) {
			return rule.Label
		}
	}
	return f.Default
}
