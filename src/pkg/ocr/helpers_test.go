package ocr

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/psanford/memfs"
	"github.com/stretchr/testify/require"
)

const (
	glyphWidth  = 12
	glyphTop    = 20
	glyphBottom = 60
)

// syntheticCaptcha draws one solid black glyph per start column on a white
// 120x80 canvas.
func syntheticCaptcha(starts ...int) *image.Gray {
	img := filled(120, 80, 255)
	for _, start := range starts {
		for y := glyphTop; y < glyphBottom; y++ {
			for x := start; x < start+glyphWidth; x++ {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func filled(width, height int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

func countBelow(img *image.Gray, level uint8) int {
	count := 0
	for _, v := range img.Pix {
		if v < level {
			count++
		}
	}
	return count
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

// templateFS builds an in-memory template directory at "templates".
func templateFS(t *testing.T, files map[string][]byte) *memfs.FS {
	t.Helper()
	fsys := memfs.New()
	require.NoError(t, fsys.MkdirAll("templates", 0o755))
	for name, data := range files {
		require.NoError(t, fsys.WriteFile("templates/"+name, data, 0o644))
	}
	return fsys
}

func testConfig() Config {
	cfg := DefaultValueConfig()
	cfg.RotationAngles = nil
	return cfg
}

type recordingSink struct {
	processed  int
	characters []int
	samples    []string
}

func (s *recordingSink) Processed(*image.Gray)              { s.processed++ }
func (s *recordingSink) Character(index int, _ *image.Gray) { s.characters = append(s.characters, index) }
func (s *recordingSink) Sample(text string, _ *image.Gray)  { s.samples = append(s.samples, text) }
