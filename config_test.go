package searchsimilar

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(MapLookup(map[string]string{
		EnvBucketName:         "vectors",
		EnvHeaderKey:          "db/v1/header.bin",
		EnvAttributeTable:     "content-ids",
		EnvLogLevel:           "debug",
		EnvMaxConcurrentReads: "4",
		EnvMemoryLimitBytes:   "1048576",
	}))
	require.NoError(t, err)

	assert.Equal(t, Config{
		BucketName:         "vectors",
		HeaderKey:          "db/v1/header.bin",
		AttributeTable:     "content-ids",
		LogLevel:           slog.LevelDebug,
		MaxConcurrentReads: 4,
		MemoryLimitBytes:   1 << 20,
	}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(MapLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Zero(t, cfg.MaxConcurrentReads)
	assert.Zero(t, cfg.MemoryLimitBytes)
	assert.Empty(t, cfg.AttributeTable)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"log level":    {EnvLogLevel: "loud"},
		"reads":        {EnvMaxConcurrentReads: "many"},
		"memory":       {EnvMemoryLimitBytes: "1GB"},
		"negative cap": {EnvMemoryLimitBytes: "-1"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(MapLookup(env))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigurationMissing)

			var invalid *ErrInvalidConfiguration
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		missing string
	}{
		{"nothing set", nil, EnvBucketName},
		{"bucket only", map[string]string{EnvBucketName: "b"}, EnvHeaderKey},
		{"key only", map[string]string{EnvHeaderKey: "a/b"}, EnvBucketName},
		{"empty counts as absent", map[string]string{EnvBucketName: "b", EnvHeaderKey: ""}, EnvHeaderKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(MapLookup(tt.env))
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigurationMissing)
			assert.Equal(t, KindConfigurationMissing, KindOf(err))

			var missing *ErrMissingConfiguration
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.missing, missing.Name)
		})
	}
}
