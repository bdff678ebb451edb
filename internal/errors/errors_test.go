package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Classification
// ============================================================================

func TestClassificationDerivedFromCode(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		retryable bool
	}{
		{ErrCodeConfigNotFound, CategoryConfig, false},
		{ErrCodeQuotaExceeded, CategoryIO, false},
		{ErrCodeNetworkTimeout, CategoryNetwork, true},
		{ErrCodeManifestFetch, CategoryNetwork, true},
		{ErrCodeDimensionMismatch, CategoryValidation, false},
		{ErrCodeInternal, CategoryInternal, false},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			err := New(tc.code, "boom", nil)
			assert.Equal(t, tc.category, err.Category())
			assert.Equal(t, tc.retryable, err.Retryable())
		})
	}
}

func TestErrorStringCarriesCode(t *testing.T) {
	err := New(ErrCodePackCorrupt, "bad blob", nil)
	assert.Equal(t, "[ERR_204_PACK_CORRUPT] bad blob", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Wrap(ErrCodeAssetDownload, cause)
	require.NotNil(t, err)

	assert.Equal(t, "disk on fire", err.Message)
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeAssetDownload, nil))
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	a := New(ErrCodeChecksumMismatch, "file a", nil)
	b := New(ErrCodeChecksumMismatch, "file b", nil)
	c := New(ErrCodeQuotaExceeded, "quota", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

// ============================================================================
// Domain Helpers
// ============================================================================

func TestQuotaErrorReportsMegabytes(t *testing.T) {
	err := QuotaError(12_000_000, 5_000_000)

	assert.Contains(t, err.Error(), "need ~12 MB")
	assert.Contains(t, err.Error(), "free ~5 MB")
	assert.Equal(t, "12000000", err.Details["needed_bytes"])
	assert.NotEmpty(t, err.Suggestion)
}

func TestChecksumErrorNamesFileAndDigests(t *testing.T) {
	err := ChecksumError("vectors/pack.db", "abc123", "def456")

	assert.Equal(t, ErrCodeChecksumMismatch, err.Code)
	assert.Contains(t, err.Error(), "vectors/pack.db")
	assert.Equal(t, "abc123", err.Details["expected"])
	assert.Equal(t, "def456", err.Details["actual"])
}

func TestWithDetailChains(t *testing.T) {
	err := New(ErrCodeInvalidPath, "escape", nil).
		WithDetail("path", "../x").
		WithSuggestion("use a relative path inside the pack dir")

	assert.Equal(t, "../x", err.Details["path"])
	assert.Equal(t, "use a relative path inside the pack dir", err.Suggestion)
}

func TestPredicatesOnForeignErrors(t *testing.T) {
	plain := fmt.Errorf("plain")

	assert.False(t, IsRetryable(plain))
	assert.False(t, IsRetryable(nil))
	assert.Empty(t, GetCode(plain))
	assert.Equal(t, ErrCodeNetworkUnavailable, GetCode(New(ErrCodeNetworkUnavailable, "offline", nil)))
}
