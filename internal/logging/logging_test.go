package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Shiki0138/leadfive-sub000/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       config.LogConfig
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{"info console", config.LogConfig{Level: "info", Encoding: "console"}, false, false, true},
		{"warn json", config.LogConfig{Level: "warn", Encoding: "json"}, false, false, false},
		{"verbose overrides level", config.LogConfig{Level: "error", Encoding: "json"}, true, true, true},
		{"empty encoding", config.LogConfig{Level: "debug"}, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.verbose)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.wantInfo, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := New(config.LogConfig{Level: "loud", Encoding: "json"}, false)
	assert.Error(t, err)

	_, err = New(config.LogConfig{Level: "info", Encoding: "xml"}, false)
	assert.Error(t, err)
}
