package captcha

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"chat-captcha/src/pkg/util"
)

// Config of the Solver. Zero values are replaced by defaults on load, so
// switches that turn something off are explicit booleans.
type Config struct {
	CacheFile       string `json:"cache_file,omitempty"`
	FlushEvery      int    `json:"flush_every,omitempty"`
	TrainingDir     string `json:"training_dir,omitempty"`
	DisableTraining bool   `json:"disable_training,omitempty"`
	DebugDir        string `json:"debug_dir,omitempty"`
	DebugArtifacts  bool   `json:"debug_artifacts,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		CacheFile:       "captcha_cache.json",
		FlushEvery:      5,
		TrainingDir:     "captcha_training",
		DisableTraining: false,
		DebugDir:        ".",
		DebugArtifacts:  false,
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
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "captcha", "not provided", "default captcha config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "captcha", "provided", "local captcha config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", util.GetPackageName()), Cfg)
}
