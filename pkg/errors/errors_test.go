package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrInternal, ErrServiceUnavail,
		ErrRateLimited, ErrCorruptState,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withInner := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("redis down")}
	assert.Contains(t, withInner.Error(), "INTERNAL_ERROR")
	assert.Contains(t, withInner.Error(), "redis down")

	bare := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "7")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "product with id 7 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("quantity must be at least 1")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, "quantity must be at least 1", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestInternal(t *testing.T) {
	err := Internal(fmt.Errorf("segfault"))
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "segfault")
}

func TestUnavailable(t *testing.T) {
	inner := fmt.Errorf("dial tcp: refused")
	err := Unavailable("cart storage", inner)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Message, "cart storage")
	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, inner))
}

func TestRateLimited(t *testing.T) {
	err := RateLimited()
	assert.Equal(t, "RATE_LIMITED", err.Code)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestCorrupt(t *testing.T) {
	inner := fmt.Errorf("unexpected end of JSON input")
	err := Corrupt("decode cart", inner)
	assert.True(t, errors.Is(err, ErrCorruptState))
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "decode cart")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("item", "1"), http.StatusNotFound},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrServiceUnavail, http.StatusServiceUnavailable},
		{fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{ErrCorruptState, http.StatusInternalServerError},
		{fmt.Errorf("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
