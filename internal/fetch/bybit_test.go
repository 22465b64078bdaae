package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKlinesToBars(t *testing.T) {
	// Newest-first rows as the kline endpoint returns them
	list := [][]string{
		{"1704326400000", "102", "103", "101", "102.5", "500", "51000"},
		{"1704240000000", "101", "102", "100", "101.5", "400", "40000"},
		{"1704153600000", "100", "101", "99", "0", "0", "0"},
		{"1704067200000", "99"},
	}

	bars := klinesToBars(list)

	// The zero-close row and the short row are dropped
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Date.Equal(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, bars[1].Date.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 102.5, bars[0].Close)
	assert.Equal(t, 400.0, bars[1].Volume)
}

func TestKlinesToBars_Empty(t *testing.T) {
	assert.Empty(t, klinesToBars(nil))
}
