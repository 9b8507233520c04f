package searchsimilar

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/searchsimilar/index"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		err  error
		kind string
	}{
		{nil, ""},
		{cause, KindUnknown},
		{&ErrMissingConfiguration{Name: EnvBucketName}, KindConfigurationMissing},
		{&ErrInvalidConfiguration{Name: EnvLogLevel, Value: "loud", cause: cause}, KindConfigurationMissing},
		{&ErrMalformedHeaderKey{Key: "x", Reason: "no '/' separator"}, KindMalformedKey},
		{stageError(ErrIndexUnavailable, cause, "open %q", "h.bin"), KindIndexUnavailable},
		{stageError(ErrQueryFailed, cause, "query"), KindQueryFailed},
		{&ErrUnresolvedAttribute{Name: ContentIDAttribute, Kind: ErrAttributeMissing}, KindAttributeMissing},
		{&ErrUnresolvedAttribute{Name: ContentIDAttribute, Actual: index.AttributeBool, Kind: ErrAttributeTypeMismatch}, KindAttributeTypeMismatch},
		{fmt.Errorf("wrapped: %w", &ErrUnresolvedAttribute{Kind: ErrAttributeMissing}), KindAttributeMissing},
	}

	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestStageError_KeepsCause(t *testing.T) {
	err := stageError(ErrIndexUnavailable, index.ErrNotFound, "open %q", "h.bin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
	assert.ErrorIs(t, err, index.ErrNotFound)
	assert.Contains(t, err.Error(), "index unavailable")

	assert.NoError(t, stageError(ErrQueryFailed, nil, "query"))
}

func TestErrInvalidConfiguration_Unwrap(t *testing.T) {
	_, parseErr := strconv.Atoi("x")
	err := &ErrInvalidConfiguration{Name: EnvMemoryLimitBytes, Value: "x", cause: parseErr}

	assert.ErrorIs(t, err, ErrConfigurationMissing)
	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr)
	assert.Contains(t, err.Error(), EnvMemoryLimitBytes)
}

func TestErrUnresolvedAttribute_Message(t *testing.T) {
	missing := &ErrUnresolvedAttribute{Name: "content_id", VectorID: 4, Kind: ErrAttributeMissing}
	assert.Equal(t, "attribute missing: vector 4 has no content_id", missing.Error())

	mismatch := &ErrUnresolvedAttribute{Name: "content_id", VectorID: 4, Actual: index.AttributeUint64, Kind: ErrAttributeTypeMismatch}
	assert.Equal(t, "attribute type mismatch: content_id of vector 4 is uint64, want string", mismatch.Error())
}
