package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Upstream("Saving drawing failed.", cause)

	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Saving drawing failed.: disk full", err.Error())
}

func TestError_WithoutCause(t *testing.T) {
	err := Forbidden("Not yours.")

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "Not yours.", err.Error())
}

func TestLookup(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Lookup(nil, "missing", "failed"))
	})

	t.Run("not found", func(t *testing.T) {
		err := Lookup(fmt.Errorf("drawing 1: %w", ErrNotFound), "missing", "failed")
		var typed *Error
		require.True(t, errors.As(err, &typed))
		assert.Equal(t, ErrNotFound, typed.Kind)
		assert.Equal(t, "missing", typed.Message)
	})

	t.Run("other failure", func(t *testing.T) {
		err := Lookup(errors.New("connection reset"), "missing", "failed")
		var typed *Error
		require.True(t, errors.As(err, &typed))
		assert.Equal(t, ErrUpstream, typed.Kind)
		assert.Equal(t, "failed", typed.Message)
	})

	t.Run("typed passes through", func(t *testing.T) {
		orig := Validation("bad")
		assert.Same(t, orig, Lookup(orig, "missing", "failed"))
	})
}
