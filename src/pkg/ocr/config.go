package ocr

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"chat-captcha/src/pkg/util"
)

// Config holds the empirical constants of the recognition pipeline.
// None of them are part of any contract; they are tuned against captured captchas.
type Config struct {
	// Canonical working resolution every captcha is resized to.
	CanonicalWidth  int `json:"canonical_width,omitempty"`
	CanonicalHeight int `json:"canonical_height,omitempty"`

	// Candidate rotations in degrees, each scored against the unrotated image.
	RotationAngles []float64 `json:"rotation_angles,omitempty"`

	ThresholdRadius  int   `json:"threshold_radius,omitempty"`
	NoiseSplit       uint8 `json:"noise_split,omitempty"`
	MorphologyRadius int   `json:"morphology_radius,omitempty"`

	// Pixels darker than DarkBelow count as foreground.
	DarkBelow     uint8 `json:"dark_below,omitempty"`
	MinProjection int   `json:"min_projection,omitempty"`
	MinCharWidth  int   `json:"min_char_width,omitempty"`
	MergeGap      int   `json:"merge_gap,omitempty"`
	MinChars      int   `json:"min_chars,omitempty"`
	MaxChars      int   `json:"max_chars,omitempty"`

	CompareWidth    int     `json:"compare_width,omitempty"`
	CompareHeight   int     `json:"compare_height,omitempty"`
	AcceptThreshold float64 `json:"accept_threshold,omitempty"`

	TemplateDir string `json:"template_dir,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		CanonicalWidth:   120,
		CanonicalHeight:  80,
		RotationAngles:   []float64{-20, -15, -10, -5, 0, 5, 10, 15, 20},
		ThresholdRadius:  15,
		NoiseSplit:       127,
		MorphologyRadius: 1,
		DarkBelow:        128,
		MinProjection:    3,
		MinCharWidth:     3,
		MergeGap:         3,
		MinChars:         3,
		MaxChars:         8,
		CompareWidth:     20,
		CompareHeight:    30,
		AcceptThreshold:  0.4,
		TemplateDir:      "captcha_templates",
	}
}

// create config with default values before config gets initialized
var Cfg Config = DefaultValueConfig() // this one we use to access config values from anywhere

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "ocr", "not provided", "default ocr config")
		return
	}

	defaultConfig := DefaultValueConfig()

	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", util.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "ocr", "provided", "local ocr config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", util.GetPackageName()), Cfg)
}
