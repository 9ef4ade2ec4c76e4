package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("joining: %w", conflict("You have already joined this trip!"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "You have already joined this trip!", MessageOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := newError(KindExternal, "AI Generation Failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrExternal)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestPlainErrorsHaveNoKind(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, Kind(""), KindOf(err))
	assert.Empty(t, MessageOf(err))
}
