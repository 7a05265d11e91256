package dcctest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestFailureError(t *testing.T) {
	err := NewTestFailureError("2 failed test files")
	assert.Equal(t, "test failure: 2 failed test files", err.Error())
	assert.True(t, IsTestFailureError(err))
}

func TestIsTestFailureErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("run aborted: %w", NewTestFailureError("flaky suite"))
	assert.True(t, IsTestFailureError(wrapped))

	assert.False(t, IsTestFailureError(nil))
	assert.False(t, IsTestFailureError(errors.New("disk full")))
}
