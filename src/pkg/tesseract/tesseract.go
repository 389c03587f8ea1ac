// Package tesseract labels single character crops with Tesseract. It needs
// libtesseract at build time, so only the template curation tool imports it.
package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"chat-captcha/src/pkg/ocr"
)

/*
LabelCharacter runs Tesseract on a single character crop.

The client is configured for English in single-character mode with an
alphanumeric whitelist, so the output is at most one of [0-9A-Za-z]. It
returns a *xerr.Error if Tesseract fails or reads nothing.
*/
func LabelCharacter(crop *image.Gray) (label rune, e *xerr.Error) {
	var encoded bytes.Buffer
	encodeErr := imaging.Encode(&encoded, crop, imaging.PNG)
	if encodeErr != nil {
		return 0, xerr.NewError(encodeErr, "encode crop as PNG", fmt.Sprintf("%v", crop.Bounds()))
	}

	client := gosseract.NewClient()
	defer func() {
		_ = client.Close()
	}()

	err := client.SetLanguage("eng")
	if err != nil {
		return 0, xerr.NewError(err, "unable to client.SetLanguage(\"eng\")", "")
	}

	err = client.SetVariable("tessedit_char_whitelist", ocr.Alphanumerics)
	if err != nil {
		return 0, xerr.NewError(err, "unable to SetVariable(tessedit_char_whitelist)", ocr.Alphanumerics)
	}

	err = client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR)
	if err != nil {
		return 0, xerr.NewError(err, "unable to client.SetPageSegMode(PSM_SINGLE_CHAR)", "")
	}

	err = client.SetImageFromBytes(encoded.Bytes())
	if err != nil {
		return 0, xerr.NewError(err, "unable to client.SetImageFromBytes", fmt.Sprintf("%d bytes", encoded.Len()))
	}

	text, ocrErr := client.Text()
	if ocrErr != nil {
		return 0, xerr.NewError(ocrErr, "unable to run OCR on crop", "")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return 0, xerr.NewError(fmt.Errorf("empty OCR output"), "tesseract read nothing", "")
	}

	label, _ = utf8.DecodeRuneInString(text)
	tl.Log(tl.Verbose, palette.Cyan, "Tesseract labeled crop as '%s'", string(label))

	return label, nil
}
