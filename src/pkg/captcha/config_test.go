package captcha

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitializeConfigKeepsDisableTraining(t *testing.T) {
	t.Cleanup(func() { Cfg = DefaultValueConfig() })

	InitializeConfig(&Config{DisableTraining: true})

	assert.True(t, Cfg.DisableTraining)
	assert.Equal(t, "captcha_training", Cfg.TrainingDir)
	assert.Equal(t, 5, Cfg.FlushEvery)
}
