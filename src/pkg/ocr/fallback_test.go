package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureDistribution(t *testing.T) {
	crop := CropRegion(syntheticCaptcha(10), Region{Start: 10, End: 22})

	d := MeasureDistribution(crop, 128)

	// rows 20-25 fall in the top third, 26-52 in the middle, 53-59 in the bottom
	assert.Equal(t, glyphWidth*(glyphBottom-glyphTop), d.Dark)
	assert.InDelta(t, 6.0/40, d.Top, 1e-9)
	assert.InDelta(t, 27.0/40, d.Middle, 1e-9)
	assert.InDelta(t, 7.0/40, d.Bottom, 1e-9)
	assert.InDelta(t, 0.5, d.Left, 1e-9)
}

func TestMeasureDistributionBlankCrop(t *testing.T) {
	d := MeasureDistribution(filled(10, 30, 255), 128)

	assert.Equal(t, Distribution{}, d)
}

func TestFallbackEstimate(t *testing.T) {
	rules := DefaultFallbackRules()

	tests := []struct {
		name string
		d    Distribution
		want rune
	}{
		{name: "no ink", d: Distribution{}, want: UnknownMarker},
		{name: "loops top and bottom", d: Distribution{Dark: 10, Top: 0.45, Middle: 0.1, Bottom: 0.45, Left: 0.5}, want: '8'},
		{name: "heavy top and middle", d: Distribution{Dark: 10, Top: 0.45, Middle: 0.35, Bottom: 0.2, Left: 0.6}, want: 'E'},
		{name: "left heavy", d: Distribution{Dark: 10, Top: 0.3, Middle: 0.3, Bottom: 0.4, Left: 0.8}, want: 'C'},
		{name: "bottom heavy", d: Distribution{Dark: 10, Top: 0.1, Middle: 0.3, Bottom: 0.6, Left: 0.5}, want: 'J'},
		{name: "middle heavy", d: Distribution{Dark: 10, Top: 0.2, Middle: 0.6, Bottom: 0.2, Left: 0.5}, want: 'H'},
		{name: "nothing distinctive", d: Distribution{Dark: 10, Top: 0.33, Middle: 0.34, Bottom: 0.33, Left: 0.5}, want: 'A'},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, string(tc.want), string(rules.Estimate(tc.d)))
		})
	}
}

func TestFallbackRulesFirstMatchWins(t *testing.T) {
	// matches both the 8 rule and the C rule
	d := Distribution{Dark: 10, Top: 0.45, Middle: 0.1, Bottom: 0.45, Left: 0.9}

	assert.Equal(t, '8', DefaultFallbackRules().Estimate(d))
}
