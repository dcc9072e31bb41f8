package errors

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestNewIOError(t *testing.T) {
	err := NewIOError(os.ErrPermission, "copy %s", "report.pdf")

	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.True(t, Is(err, os.ErrPermission), "cause must stay reachable")
	assert.Contains(t, err.Error(), "copy report.pdf")
	assert.NotContains(t, err.Error(), "io error", "marker must not leak into the message")
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("File not found: %s", "missing.pdf")

	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, "File not found: missing.pdf", err.Error())
	assert.False(t, IsIOError(err))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrUnsupported, ErrDuplicate, ErrVanished, ErrIO, ErrInvalidConfig}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestMarkSurvivesWrapping(t *testing.T) {
	err := Mark(New("gone"), ErrVanished)
	err = Wrap(err, "stabilize")

	assert.True(t, Is(err, ErrVanished))
	assert.Equal(t, "stabilize: gone", err.Error())
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.False(t, IsIOError(nil))
	assert.False(t, IsNotFoundError(nil))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("watch folder missing"), "mount the shared volume")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "mount the shared volume", hints[0])
}

func ExampleWrap() {
	baseErr := New("permission denied")
	err := Wrap(baseErr, "failed to copy invoice.pdf")
	fmt.Println(err)
	// Output: failed to copy invoice.pdf: permission denied
}
