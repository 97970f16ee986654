package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelChecks(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
	}{
		{"not found", ErrNotFound, IsNotFound},
		{"validation", ErrValidation, IsValidation},
		{"duplicate", ErrDuplicate, IsDuplicate},
		{"invalid state", ErrInvalidState, IsInvalidState},
		{"persistence", ErrPersistence, IsPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.checker(tt.err))

			// Wrapped errors must still match.
			wrapped := fmt.Errorf("moving invoice: %w", tt.err)
			assert.True(t, tt.checker(wrapped))

			// Unrelated errors must not match.
			assert.False(t, tt.checker(fmt.Errorf("other")))
			assert.False(t, tt.checker(nil))
		})
	}
}
