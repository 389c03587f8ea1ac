package ocr

import (
	"fmt"
	"image"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// Result is a successful read of one captcha.
type Result struct {
	Text      string      `json:"text"`
	Angle     float64     `json:"angle"`
	Regions   []Region    `json:"regions"`
	Processed *image.Gray `json:"-"`
}

// Pipeline turns decoded captcha images into text. It is safe for concurrent use.
type Pipeline struct {
	cfg        Config
	recognizer *Recognizer
	sink       Sink
}

// NewPipeline builds a pipeline over store. A nil sink disables side products.
func NewPipeline(cfg Config, store *TemplateStore, sink Sink) *Pipeline {
	if sink == nil {
		sink = NopSink{}
	}
	return &Pipeline{
		cfg:        cfg,
		recognizer: NewRecognizer(store, DefaultFallbackRules(), cfg),
		sink:       sink,
	}
}

/*
Run reads the text of a decoded captcha.

It performs the following steps:
 1. Grayscale and resize to the canonical resolution.
 2. Pick the clearest of the candidate rotations.
 3. Threshold, remove isolated pixels, erode and dilate.
 4. Split into character regions by vertical projection.
 5. Label each region against the templates (or the fallback rules).
 6. Validate the assembled text.

It returns ErrFormatMismatch or ErrValidationFailure when the captcha cannot be
read; the caller only ever sees "no result" for either.
*/
func (p *Pipeline) Run(img image.Image) (result Result, err error) {
	result.Processed, result.Angle = p.Preprocess(img)
	p.sink.Processed(result.Processed)

	result.Regions, err = Segment(result.Processed, p.cfg)
	if err != nil {
		tl.Log(tl.Verbose, palette.PurpleDim, "Segmentation rejected captcha: '%s'", err)
		return result, err
	}

	result.Text, err = p.recognizer.Read(result.Processed, result.Regions, p.sink)
	if err != nil {
		tl.Log(tl.Verbose, palette.PurpleDim, "Recognition rejected captcha: '%s'", err)
		return result, err
	}

	tl.Log(
		tl.Info1, palette.Green, "Read captcha as '%s' (regions: %s, rotation: %s degrees)",
		result.Text, fmt.Sprintf("%d", len(result.Regions)), fmt.Sprintf("%g", result.Angle),
	)

	return result, nil
}

// Preprocess produces the cleaned canonical image and the rotation it chose.
func (p *Pipeline) Preprocess(img image.Image) (processed *image.Gray, angle float64) {
	canonical := Canonicalize(img, p.cfg.CanonicalWidth, p.cfg.CanonicalHeight)
	rotated, angle := CorrectRotation(canonical, p.cfg.RotationAngles)
	return Clean(rotated, p.cfg), angle
}
