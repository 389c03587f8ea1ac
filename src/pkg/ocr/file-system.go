package ocr

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

/*
FileSink writes solve side products to disk.

  - Debug artifacts (debug_processed.png, debug_char_<i>.png) go to DebugDir
    and are overwritten on every solve. They are only written when Debug is set.
  - Training samples go to TrainingDir as <text>.png. Two captchas read as the
    same text overwrite each other.

Every write is best-effort: failures are logged and dropped.
*/
type FileSink struct {
	DebugDir    string
	TrainingDir string
	Debug       bool
}

func (s FileSink) Processed(img *image.Gray) {
	if !s.Debug {
		return
	}
	s.write(filepath.Join(s.DebugDir, "debug_processed.png"), img)
}

func (s FileSink) Character(index int, img *image.Gray) {
	if !s.Debug {
		return
	}
	s.write(filepath.Join(s.DebugDir, fmt.Sprintf("debug_char_%d.png", index)), img)
}

func (s FileSink) Sample(text string, img *image.Gray) {
	if s.TrainingDir == "" {
		return
	}
	e := ensureOutputDirectory(s.TrainingDir)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Dropping training sample '%s': '%s'", text, e)
		return
	}
	s.write(filepath.Join(s.TrainingDir, text+".png"), img)
}

func (s FileSink) write(destinationPath string, img *image.Gray) {
	if img == nil {
		return
	}
	e := savePNG(destinationPath, img)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Best-effort write failed: '%s'", e)
	}
}

/*
ensureOutputDirectory creates the target directory (and parents) if needed.

It uses os.MkdirAll and returns a *xerr.Error if creation fails.
*/
func ensureOutputDirectory(outputDirPath string) (e *xerr.Error) {
	err := os.MkdirAll(outputDirPath, 0o755)
	if err != nil {
		e = xerr.NewError(err, "create output directory", outputDirPath)
		return e
	}

	tl.Log(tl.Debug, palette.BlueDim, "Ensured output directory '%s'", outputDirPath)

	return e
}

// savePNG encodes img as PNG at destinationPath, replacing any existing file.
func savePNG(destinationPath string, img image.Image) (e *xerr.Error) {
	saveErr := imaging.Save(img, destinationPath)
	if saveErr != nil {
		e = xerr.NewError(saveErr, "save PNG image", destinationPath)
		return e
	}

	tl.Log(tl.Verbose, palette.GreenDim, "Saved image to '%s'", destinationPath)

	return e
}
