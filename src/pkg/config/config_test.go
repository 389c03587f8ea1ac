package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-captcha/src/pkg/captcha"
	echomw "chat-captcha/src/pkg/echo-middleware"
	"chat-captcha/src/pkg/ocr"
)

func resetConfigs(t *testing.T) {
	t.Helper()
	captcha.Cfg = captcha.DefaultValueConfig()
	ocr.Cfg = ocr.DefaultValueConfig()
	echomw.Cfg = echomw.DefaultValueConfig()
	t.Cleanup(func() {
		captcha.Cfg = captcha.DefaultValueConfig()
		ocr.Cfg = ocr.DefaultValueConfig()
		echomw.Cfg = echomw.DefaultValueConfig()
	})
}

func TestInitializeConfigMissingFileKeepsDefaults(t *testing.T) {
	resetConfigs(t)

	InitializeConfig(filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, captcha.DefaultValueConfig(), captcha.Cfg)
	assert.Equal(t, ocr.DefaultValueConfig(), ocr.Cfg)
	assert.Equal(t, echomw.DefaultValueConfig(), echomw.Cfg)
}

func TestInitializeConfigFillsMissingFields(t *testing.T) {
	resetConfigs(t)
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"captcha": {"cache_file": "/var/lib/captcha/cache.json"},
		"ocr": {"accept_threshold": 0.3},
		"echo_middleware": {"port": 9000}
	}`), 0o644))

	InitializeConfig(configPath)

	assert.Equal(t, "/var/lib/captcha/cache.json", captcha.Cfg.CacheFile)
	assert.Equal(t, 5, captcha.Cfg.FlushEvery)
	assert.Equal(t, "captcha_training", captcha.Cfg.TrainingDir)

	assert.InDelta(t, 0.3, ocr.Cfg.AcceptThreshold, 1e-9)
	assert.Equal(t, 120, ocr.Cfg.CanonicalWidth)
	assert.Equal(t, "captcha_templates", ocr.Cfg.TemplateDir)

	assert.Equal(t, 9000, echomw.Cfg.Port)
	assert.Equal(t, "127.0.0.1", echomw.Cfg.Address)
}
