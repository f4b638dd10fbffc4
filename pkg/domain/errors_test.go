package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"not found", NewNotFoundError("Booking", 7), CodeNotFound},
		{"validation", NewValidationError("bad"), CodeValidation},
		{"unknown state", NewUnknownStateError("X"), CodeUnknownState},
		{"conflict", NewConflictError("stale"), CodeConflict},
		{"wrapped", fmt.Errorf("outer: %w", NewNotFoundError("Item", 1)), CodeNotFound},
		{"plain", fmt.Errorf("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestUnknownStateMessage(t *testing.T) {
	err := NewUnknownStateError("UNSUPPORTED_STATUS")
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Message)
	assert.True(t, IsUnknownState(err))
	assert.False(t, IsValidation(err))
}
