package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormat(t *testing.T) {
	err := New(ErrMissingFactor, `no emission factor found for "Diesel"`)
	assert.Equal(t, `[MISSING_FACTOR] no emission factor found for "Diesel"`, err.Error())
}

func TestAppErrorWrapAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrStorage, "insert failed", cause)

	assert.Contains(t, err.Error(), "STORAGE_ERROR")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, cause)
}

func TestIs(t *testing.T) {
	err := New(ErrValidation, "unit is required")

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrMissingFactor))
	assert.False(t, Is(errors.New("plain"), ErrValidation))
}
