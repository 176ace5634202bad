package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryConfig, SeverityWarning, "override file unreadable")
	assert.Equal(t, "config (warning): override file unreadable", e.Error())

	cause := stderrors.New("permission denied")
	w := Wrap(cause, CategoryState, SeverityError, "state write failed")
	assert.Equal(t, "state (error): state write failed: permission denied", w.Error())
	assert.ErrorIs(t, w, cause)
}

func TestFatalClassification(t *testing.T) {
	e := Fatal(CategoryExec, "ddcutil not found on PATH")

	assert.True(t, IsFatal(e))
	assert.True(t, IsCategory(e, CategoryExec))
	assert.False(t, IsFatal(stderrors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestIsFatalSeesThroughWrapping(t *testing.T) {
	fatal := Fatal(CategoryExec, "ddcutil not found on PATH")

	// A lower-severity wrapper on the way out must not strip the
	// do-not-restart signal.
	assert.True(t, IsFatal(Wrap(fatal, CategoryDaemon, SeverityError, "supervised task failed")))
	assert.True(t, IsFatal(fmt.Errorf("round ended: %w", fatal)))
	assert.False(t, IsFatal(Wrap(stderrors.New("plain"), CategoryDaemon, SeverityError, "supervised task failed")))
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, CategoryDaemon, GetCategory(New(CategoryDaemon, SeverityError, "x")))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestWithContext(t *testing.T) {
	e := Fatal(CategoryExec, "missing binary").WithContext("command", "ddcutil")
	assert.Equal(t, "ddcutil", e.Context["command"])
}
