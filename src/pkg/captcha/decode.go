package captcha

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ErrDecodeFailure means the payload is not valid base64 or not a PNG/GIF image.
var ErrDecodeFailure = errors.New("captcha image could not be decoded")

var supportedMimeTypes = []string{"image/png", "image/gif"}

/*
DecodeImage turns an optionally MIME-prefixed base64 string into an image.

The payload is sniffed before decoding so anything but PNG or GIF is rejected
without handing it to an image decoder. All failures wrap ErrDecodeFailure.
*/
func DecodeImage(encoded string) (img image.Image, err error) {
	return decodePayload(StripDataURI(encoded))
}

func decodePayload(payload string) (img image.Image, err error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecodeFailure)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	mime := mimetype.Detect(data)
	if !slices.Contains(supportedMimeTypes, mime.String()) {
		return nil, fmt.Errorf("%w: unsupported mime type %s", ErrDecodeFailure, mime.String())
	}

	img, err = imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	return img, nil
}
