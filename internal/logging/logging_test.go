package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/shoplist/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		cfg   config.LoggerConfig
		level zapcore.Level
	}{
		{config.LoggerConfig{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{config.LoggerConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{config.LoggerConfig{Level: "error", Format: "console"}, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Level+"/"+tt.cfg.Format, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, log.Desugar().Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, log.Desugar().Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
