package main

import (
	"flag"
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"chat-captcha/src/pkg/captcha"
	"chat-captcha/src/pkg/config"
	"chat-captcha/src/pkg/ocr"
	"chat-captcha/src/pkg/tesseract"
	"chat-captcha/src/pkg/util"
)

/*
main builds character templates from the training samples a solver collected.

By default every crop is labeled with the matching character of the sample's
file name. With -tesseract the crops are labeled by Tesseract instead, which
helps when the solver misread some samples.
*/
func main() {
	config.CheckIfEnvVarsPresent()

	// Common flags.
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	// Program-specific flags.
	trainingDir := flag.String("training", "", "Directory of <text>.png training samples. Defaults to the captcha config.")
	templateDir := flag.String("templates", "", "Directory to write <c>.png templates into. Defaults to the ocr config.")
	useTesseract := flag.Bool("tesseract", false, "Label crops with Tesseract instead of the sample file names.")
	overwrite := flag.Bool("overwrite", false, "Replace templates that already exist.")

	// Parse and initialize config.
	flag.Parse()
	config.InitializeConfig(*configPath)

	if *trainingDir == "" {
		*trainingDir = captcha.Cfg.TrainingDir
	}
	if *templateDir == "" {
		*templateDir = ocr.Cfg.TemplateDir
	}
	util.RequiredFlag(trainingDir, "training")
	util.RequiredFlag(templateDir, "templates")
	util.EnsureFlags()

	var labeler ocr.Labeler
	if *useTesseract {
		labeler = tesseract.LabelCharacter
		tl.Log(tl.Info1, palette.Cyan, "%s crops with %s", "Labeling", "tesseract")
	}

	written, e := ocr.CurateTemplates(*trainingDir, *templateDir, ocr.Cfg, labeler, *overwrite)
	e.QuitIf(xerr.ErrorTypeError)

	tl.Log(tl.Notice1, palette.GreenBold, "%s. '%s' templates in '%s'", "Curation completed", fmt.Sprintf("%d", written), *templateDir)
}
