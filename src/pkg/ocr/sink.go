package ocr

import "image"

// Sink receives the side products of a solve: debug artifacts and training
// samples. Implementations must not fail the caller; errors stay inside.
type Sink interface {
	Processed(img *image.Gray)
	Character(index int, img *image.Gray)
	Sample(text string, img *image.Gray)
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) Processed(*image.Gray)      {}
func (NopSink) Character(int, *image.Gray) {}
func (NopSink) Sample(string, *image.Gray) {}
