package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"chat-captcha/src/pkg/captcha"
	echomw "chat-captcha/src/pkg/echo-middleware"
	"chat-captcha/src/pkg/ocr"
)

// Config is the layout of the JSON config file. Every section is optional.
type Config struct {
	Captcha        *captcha.Config `json:"captcha,omitempty"`
	OCR            *ocr.Config     `json:"ocr,omitempty"`
	EchoMiddleware *echomw.Config  `json:"echo_middleware,omitempty"`
}

/*
InitializeConfig reads the config file at configPath and hands every section
to its package's InitializeConfig.

A missing file keeps every package on its defaults. A file that exists but
cannot be read or parsed is fatal.
*/
func InitializeConfig(configPath string) {
	var localConfig Config

	fileBytes, readErr := os.ReadFile(configPath)
	switch {
	case errors.Is(readErr, fs.ErrNotExist):
		tl.Log(tl.Notice, palette.Purple, "Config file '%s' %s, using %s", configPath, "not found", "defaults")
	case readErr != nil:
		xerr.QuitIfError(readErr, "read config file '"+configPath+"'")
	default:
		parseErr := json.Unmarshal(fileBytes, &localConfig)
		xerr.QuitIfError(parseErr, "parse config file '"+configPath+"'")
	}

	captcha.InitializeConfig(localConfig.Captcha)
	ocr.InitializeConfig(localConfig.OCR)
	echomw.InitializeConfig(localConfig.EchoMiddleware)
}

// CheckIfEnvVarsPresent exits if any of the named environment variables is unset or blank.
func CheckIfEnvVarsPresent(names ...string) {
	missing := false
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			tl.Log(tl.Warning, palette.YellowBold, "%s environment variable is %s", name, "required")
			missing = true
		}
	}
	if missing {
		os.Exit(1)
	}
}
