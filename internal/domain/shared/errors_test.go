package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := NewDomainErrorf("NOT_FOUND", "location %d not found", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "location 7 not found", err.Error())

	var de *DomainError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &de))
	assert.Equal(t, "NOT_FOUND", de.Code)
}
