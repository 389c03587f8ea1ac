package ocr

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Labeler names a single character crop. Used when sample file names cannot
// be trusted.
type Labeler func(crop *image.Gray) (label rune, e *xerr.Error)

/*
CurateTemplates turns solved training samples into character templates.

Each <text>.png in trainingDir is a cleaned captcha. It is segmented again and,
when labeler is nil, crop i is labeled with rune i of the file name; samples
whose region count differs from the name length are skipped. With a labeler,
every crop is labeled by it instead. Crops labeled with anything but [0-9A-Za-z]
are dropped. Existing templates are kept unless overwrite is set.

It returns how many template files were written.
*/
func CurateTemplates(trainingDir, templateDir string, cfg Config, labeler Labeler, overwrite bool) (written int, e *xerr.Error) {
	entries, readErr := os.ReadDir(trainingDir)
	if readErr != nil {
		e = xerr.NewError(readErr, "read training directory", trainingDir)
		return 0, e
	}

	e = ensureOutputDirectory(templateDir)
	if e != nil {
		return 0, e
	}

	tl.Log(
		tl.Notice, palette.BlueBold, "%s templates from '%s' into '%s'",
		"Curating", trainingDir, templateDir,
	)

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}
		samplePath := filepath.Join(trainingDir, entry.Name())
		text := []rune(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))

		sample, openErr := imaging.Open(samplePath)
		if openErr != nil {
			tl.Log(tl.Warning, palette.Yellow, "Skipping unreadable sample '%s': '%s'", samplePath, openErr)
			continue
		}
		processed := toGray(imaging.Grayscale(sample))

		regions, segmentErr := Segment(processed, cfg)
		if segmentErr != nil {
			tl.Log(tl.Info, palette.Purple, "Skipping sample '%s': '%s'", samplePath, segmentErr)
			continue
		}
		if labeler == nil && len(regions) != len(text) {
			tl.Log(
				tl.Info, palette.Purple, "Skipping sample '%s': '%s' regions for '%s' characters",
				samplePath, fmt.Sprintf("%d", len(regions)), fmt.Sprintf("%d", len(text)),
			)
			continue
		}

		for i, region := range regions {
			crop := CropRegion(processed, region)

			var label rune
			if labeler != nil {
				var labelErr *xerr.Error
				label, labelErr = labeler(crop)
				if labelErr != nil {
					tl.Log(tl.Warning, palette.Yellow, "Unable to label crop '%s' of '%s': '%s'", fmt.Sprintf("%d", i), samplePath, labelErr)
					continue
				}
			} else {
				label = text[i]
			}
			if !isAlphanumeric(label) {
				continue
			}

			templatePath := filepath.Join(templateDir, string(label)+".png")
			if !overwrite {
				if _, statErr := os.Stat(templatePath); !errors.Is(statErr, fs.ErrNotExist) {
					continue
				}
			}

			saveErr := savePNG(templatePath, crop)
			if saveErr != nil {
				tl.Log(tl.Warning, palette.Yellow, "Unable to write template '%s': '%s'", templatePath, saveErr)
				continue
			}
			written++
		}
	}

	tl.Log(tl.Notice1, palette.GreenBold, "Wrote '%s' templates into '%s'", fmt.Sprintf("%d", written), templateDir)

	return written, nil
}
