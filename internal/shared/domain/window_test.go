package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindowRejectsZeroStart(t *testing.T) {
	_, err := NewWindow(time.Time{}, nil)
	assert.Error(t, err)
}

func TestWindowKeepsBothBounds(t *testing.T) {
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(time.Hour)

	w, err := NewWindow(since, &until)
	require.NoError(t, err)

	assert.True(t, w.Since().Equal(since))
	got, ok := w.Until()
	require.True(t, ok)
	assert.True(t, got.Equal(until))
}

func TestOpenWindowHasNoUpperBound(t *testing.T) {
	since := time.Date(2024, 5, 1, 3, 30, 0, 0, time.FixedZone("IRST", 12600))

	w, err := NewWindow(since, nil)
	require.NoError(t, err)

	_, ok := w.Until()
	assert.False(t, ok)
	assert.Equal(t, time.UTC, w.Since().Location())
	assert.True(t, w.Since().Equal(since))
}
