package captcha

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 16, 12))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(3, 4, color.Gray{Y: 0})
	return img
}

func encode(t *testing.T, img image.Image, format imaging.Format) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestStripDataURI(t *testing.T) {
	tests := map[string]string{
		"iVBORw0KGgo=":                         "iVBORw0KGgo=",
		"data:image/png;base64,iVBORw0KGgo=":   "iVBORw0KGgo=",
		"  data:image/gif;base64,R0lGOD==  \n": "R0lGOD==",
		"":                                     "",
	}

	for input, want := range tests {
		assert.Equal(t, want, StripDataURI(input), "StripDataURI(%q)", input)
	}
}

func TestFingerprint(t *testing.T) {
	payload := encode(t, testImage(), imaging.PNG)

	fingerprint := Fingerprint(payload)

	assert.Len(t, fingerprint, 16)
	assert.Equal(t, fingerprint, Fingerprint(payload))
	assert.Equal(t, fingerprint, Fingerprint(StripDataURI("data:image/png;base64,"+payload)))
	assert.NotEqual(t, fingerprint, Fingerprint(payload+"AAAA"))
}

func TestDecodeImage(t *testing.T) {
	png := encode(t, testImage(), imaging.PNG)

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, testImage(), nil))
	gifPayload := base64.StdEncoding.EncodeToString(gifBuf.Bytes())

	for name, encoded := range map[string]string{
		"png":          png,
		"png data uri": "data:image/png;base64," + png,
		"gif":          gifPayload,
	} {
		t.Run(name, func(t *testing.T) {
			img, err := DecodeImage(encoded)

			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 16, 12), img.Bounds())
		})
	}
}

func TestDecodeImageFailures(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"only prefix":   "data:image/png;base64,",
		"not base64":    "%%%%",
		"not an image":  base64.StdEncoding.EncodeToString([]byte("hello captcha")),
		"unsupported":   encode(t, testImage(), imaging.JPEG),
		"truncated png": encode(t, testImage(), imaging.PNG)[:40],
	}

	for name, encoded := range tests {
		t.Run(name, func(t *testing.T) {
			img, err := DecodeImage(encoded)

			require.ErrorIs(t, err, ErrDecodeFailure)
			assert.Nil(t, img)
		})
	}
}
