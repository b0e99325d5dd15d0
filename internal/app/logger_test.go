package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gorm-trashbin/pkg/logger"
)

func TestConfigureLoggingDefaultsToInfo(t *testing.T) {
	require.NoError(t, ConfigureLogging(ServerConfig{}))
	require.NotNil(t, logger.Logger())
}

func TestConfigureLoggingWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trashbin.log")

	require.NoError(t, ConfigureLogging(ServerConfig{
		LogLevel: "debug",
		LogFile: LogFileConfig{
			Enabled:   true,
			Path:      path,
			MaxSizeMB: 1,
		},
	}))

	logger.Info("file sink smoke test")
	_ = logger.Sync() // stdout sync can fail on some platforms; the file write is unbuffered

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "file sink smoke test")
}
