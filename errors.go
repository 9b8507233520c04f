package searchsimilar

import (
	"errors"
	"fmt"

	"github.com/hupe1980/searchsimilar/index"
)

var (
	// ErrConfigurationMissing is returned when a required configuration value
	// is absent or a configuration value cannot be used.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrMalformedKey is returned when the header key cannot be split into a
	// base path and a file name.
	ErrMalformedKey = errors.New("malformed header key")

	// ErrIndexUnavailable is returned when the database cannot be opened.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrQueryFailed is returned when the query or an attribute lookup fails.
	ErrQueryFailed = errors.New("query failed")

	// ErrAttributeMissing is returned when a hit has no content_id.
	ErrAttributeMissing = errors.New("attribute missing")

	// ErrAttributeTypeMismatch is returned when a hit's content_id is not a string.
	ErrAttributeTypeMismatch = errors.New("attribute type mismatch")
)

// Kind names reported by KindOf.
const (
	KindConfigurationMissing  = "ConfigurationMissing"
	KindMalformedKey          = "MalformedKey"
	KindIndexUnavailable      = "IndexUnavailable"
	KindQueryFailed           = "QueryFailed"
	KindAttributeMissing      = "AttributeMissing"
	KindAttributeTypeMismatch = "AttributeTypeMismatch"
	KindUnknown               = "Unknown"
)

// ErrMissingConfiguration indicates an absent required configuration value.
type ErrMissingConfiguration struct {
	Name string
}

func (e *ErrMissingConfiguration) Error() string {
	return fmt.Sprintf("configuration missing: %s is not set", e.Name)
}

func (e *ErrMissingConfiguration) Unwrap() error { return ErrConfigurationMissing }

// ErrInvalidConfiguration indicates a configuration value that cannot be parsed.
//
// It matches ErrConfigurationMissing, and the parse error through errors.Unwrap.
type ErrInvalidConfiguration struct {
	Name  string
	Value string
	cause error
}

func (e *ErrInvalidConfiguration) Error() string {
	return fmt.Sprintf("configuration invalid: %s=%q: %v", e.Name, e.Value, e.cause)
}

func (e *ErrInvalidConfiguration) Unwrap() []error { return []error{ErrConfigurationMissing, e.cause} }

// ErrMalformedHeaderKey indicates a header key that violates the
// <base-path>/<file-name> layout.
type ErrMalformedHeaderKey struct {
	Key    string
	Reason string
}

func (e *ErrMalformedHeaderKey) Error() string {
	return fmt.Sprintf("malformed header key %q: %s", e.Key, e.Reason)
}

func (e *ErrMalformedHeaderKey) Unwrap() error { return ErrMalformedKey }

// ErrUnresolvedAttribute indicates a hit whose attribute is absent or has the
// wrong type. Kind is ErrAttributeMissing or ErrAttributeTypeMismatch.
type ErrUnresolvedAttribute struct {
	Name     string
	VectorID uint64
	// Actual is the stored type; AttributeAbsent when the value is missing.
	Actual index.AttributeType
	Kind   error
}

func (e *ErrUnresolvedAttribute) Error() string {
	if e.Kind == ErrAttributeMissing {
		return fmt.Sprintf("attribute missing: vector %d has no %s", e.VectorID, e.Name)
	}
	return fmt.Sprintf("attribute type mismatch: %s of vector %d is %s, want string", e.Name, e.VectorID, e.Actual)
}

func (e *ErrUnresolvedAttribute) Unwrap() error { return e.Kind }

// KindOf returns the name of the error kind err belongs to, or KindUnknown.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfigurationMissing
	case errors.Is(err, ErrMalformedKey):
		return KindMalformedKey
	case errors.Is(err, ErrIndexUnavailable):
		return KindIndexUnavailable
	case errors.Is(err, ErrAttributeMissing):
		return KindAttributeMissing
	case errors.Is(err, ErrAttributeTypeMismatch):
		return KindAttributeTypeMismatch
	case errors.Is(err, ErrQueryFailed):
		return KindQueryFailed
	default:
		return KindUnknown
	}
}

// stageError tags err with the kind of the stage it came from.
func stageError(kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", kind, fmt.Sprintf(format, args...), err)
}
