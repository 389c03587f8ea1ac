package ocr

import (
	"testing"

	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineReadsSyntheticCaptcha(t *testing.T) {
	sink := &recordingSink{}
	pipeline := NewPipeline(testConfig(), NewTemplateStoreFS(memfs.New(), "."), sink)

	result, err := pipeline.Run(syntheticCaptcha(10, 35, 60, 85))

	require.NoError(t, err)
	assert.Equal(t, "HHHH", result.Text)
	assert.Zero(t, result.Angle)
	assert.Len(t, result.Regions, 4)
	require.NotNil(t, result.Processed)
	assert.Equal(t, 1, sink.processed)
	assert.Equal(t, []int{0, 1, 2, 3}, sink.characters)
	assert.Empty(t, sink.samples, "samples are the caller's business")
}

func TestPipelineIsDeterministic(t *testing.T) {
	pipeline := NewPipeline(DefaultValueConfig(), NewTemplateStoreFS(memfs.New(), "."), nil)
	img := syntheticCaptcha(8, 30, 52, 74, 96)

	first, firstErr := pipeline.Run(img)
	second, secondErr := pipeline.Run(img)

	assert.Equal(t, firstErr, secondErr)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Angle, second.Angle)
	assert.Equal(t, first.Processed.Pix, second.Processed.Pix)
}

func TestPipelineUsesCuratedTemplates(t *testing.T) {
	crop := CropRegion(syntheticCaptcha(10), Region{Start: 10, End: 22})
	fsys := templateFS(t, map[string][]byte{"W.png": encodePNG(t, crop)})
	pipeline := NewPipeline(testConfig(), NewTemplateStoreFS(fsys, "templates"), nil)

	result, err := pipeline.Run(syntheticCaptcha(10, 35, 60))

	require.NoError(t, err)
	assert.Equal(t, "WWW", result.Text)
}

func TestPipelineRejectsBlankCaptcha(t *testing.T) {
	pipeline := NewPipeline(testConfig(), NewTemplateStoreFS(memfs.New(), "."), nil)

	_, err := pipeline.Run(filled(120, 80, 255))

	require.ErrorIs(t, err, ErrFormatMismatch)
}
