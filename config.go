package searchsimilar

import (
	"log/slog"
	"strconv"
)

// Environment variables read by LoadConfig.
const (
	EnvBucketName         = "DATABASE_BUCKET_NAME"
	EnvHeaderKey          = "DATABASE_HEADER_KEY"
	EnvAttributeTable     = "ATTRIBUTE_TABLE_NAME"
	EnvLogLevel           = "LOG_LEVEL"
	EnvMaxConcurrentReads = "MAX_CONCURRENT_READS"
	EnvMemoryLimitBytes   = "MEMORY_LIMIT_BYTES"
)

// Search parameters used for every query.
const (
	// K is the number of nearest neighbors requested.
	K = 30
	// NProbe is the number of partitions searched.
	NProbe = 1
)

// ContentIDAttribute is the attribute that maps a hit to its content id.
const ContentIDAttribute = "content_id"

// Config is the deployment configuration of a Handler.
type Config struct {
	// BucketName is the storage container holding the database. Required.
	BucketName string
	// HeaderKey locates the header blob as <base-path>/<file-name>. Required.
	HeaderKey string

	// AttributeTable optionally names a DynamoDB table to resolve content ids
	// from instead of the database's attribute blobs.
	AttributeTable string
	// LogLevel defaults to info.
	LogLevel slog.Level

	// MaxConcurrentReads limits blob reads in flight (0 = unlimited).
	MaxConcurrentReads int64
	// MemoryLimitBytes limits decoded partition data (0 = unlimited).
	MemoryLimitBytes int64
}

// LoadConfig reads the configuration through lookup, typically os.LookupEnv.
// Empty values count as absent. Required values are checked by Validate, so a
// Config with missing values is still returned without error.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	get := func(name string) string {
		v, _ := lookup(name)
		return v
	}

	cfg := Config{
		BucketName:     get(EnvBucketName),
		HeaderKey:      get(EnvHeaderKey),
		AttributeTable: get(EnvAttributeTable),
		LogLevel:       slog.LevelInfo,
	}

	if v := get(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, &ErrInvalidConfiguration{Name: EnvLogLevel, Value: v, cause: err}
		}
	}

	var err error
	if cfg.MaxConcurrentReads, err = parseLimit(EnvMaxConcurrentReads, get(EnvMaxConcurrentReads)); err != nil {
		return Config{}, err
	}
	if cfg.MemoryLimitBytes, err = parseLimit(EnvMemoryLimitBytes, get(EnvMemoryLimitBytes)); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseLimit(name, v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err == nil && n < 0 {
		err = strconv.ErrRange
	}
	if err != nil {
		return 0, &ErrInvalidConfiguration{Name: name, Value: v, cause: err}
	}
	return n, nil
}

// Validate reports the first absent required value.
func (c Config) Validate() error {
	if c.BucketName == "" {
		return &ErrMissingConfiguration{Name: EnvBucketName}
	}
	if c.HeaderKey == "" {
		return &ErrMissingConfiguration{Name: EnvHeaderKey}
	}
	return nil
}

// MapLookup adapts a map to the lookup function taken by LoadConfig.
func MapLookup(m map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}
