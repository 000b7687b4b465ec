package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrPeriodClosed, "Periode minggu ke-2 sudah ditutup")
	assert.True(t, errors.Is(cloned, ErrPeriodClosed))
	assert.Equal(t, "Periode minggu ke-2 sudah ditutup", cloned.Message)
	assert.Equal(t, "periode sudah ditutup", ErrPeriodClosed.Message)
}

func TestWrappedCacheMiss(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrCacheMiss)
	assert.True(t, errors.Is(err, ErrCacheMiss))
	assert.False(t, errors.Is(err, ErrNotFound))
}
