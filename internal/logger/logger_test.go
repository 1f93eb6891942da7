package logger_test

import (
	"testing"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	app := &config.AppConfig{Name: "DealerConnect", Environment: "development"}

	log, err := logger.NewLogger(&config.LoggingConfig{Level: "debug", Format: "console"}, app)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = logger.NewLogger(&config.LoggingConfig{Level: "bogus", Format: "json"}, app)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
