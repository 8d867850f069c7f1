package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidRange", ErrInvalidRange},
		{"ErrMissingCorrelation", ErrMissingCorrelation},
		{"ErrInvalidResponse", ErrInvalidResponse},
		{"ErrBackendNotConfigured", ErrBackendNotConfigured},
		{"ErrBackendUnavailable", ErrBackendUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrAuthRequired", ErrAuthRequired},
		{"ErrAccessDenied", ErrAccessDenied},
		{"ErrTokenUnavailable", ErrTokenUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrMissingCorrelation(t *testing.T) {
	assert.Equal(t, "missing requestId or agentCode", ErrMissingCorrelation.Error())
	assert.False(t, errors.Is(ErrMissingCorrelation, ErrInvalidInput))
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("fetch logs: %w", ErrAuthRequired)
	assert.True(t, errors.Is(wrapped, ErrAuthRequired))
	assert.False(t, errors.Is(wrapped, ErrAccessDenied))
}
