package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
	"github.com/andrescamacho/routing-go/internal/infrastructure/logging"
)

func TestSetup_ConfiguresLevelAndFormat(t *testing.T) {
	// Act
	logger, err := logging.Setup(&config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestSetup_WritesToFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "routing.log")

	// Act
	logger, err := logging.Setup(&config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: path})

	// Assert
	require.NoError(t, err)
	logger.Info("daemon started")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "daemon started")
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	// Act
	_, err := logging.Setup(&config.LoggingConfig{Level: "noisy", Format: "json", Output: "stdout"})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse log level")
}

func TestSetup_RequiresFilePathForFileOutput(t *testing.T) {
	// Act
	_, err := logging.Setup(&config.LoggingConfig{Level: "info", Format: "json", Output: "file"})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_path is empty")
}
