package punish

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int64) *int64 { return &n }

func TestComputeEndAtNoExpiry(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, ComputeEndAt(start, nil))
	assert.Nil(t, ComputeEndAt(start, days(-1)))
}

func TestComputeEndAtZeroDays(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	end := ComputeEndAt(start, days(0))
	require.NotNil(t, end)
	assert.True(t, end.Equal(start))
}

func TestComputeEndAtCalendarDays(t *testing.T) {
	start := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

	end := ComputeEndAt(start, days(30))
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC), *end)
}

func TestComputeEndAtAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Spans the March DST transition; the expiry keeps the same wall-clock
	// time rather than shifting by an hour.
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)
	end := ComputeEndAt(start, days(30))
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2025, 3, 31, 12, 0, 0, 0, loc), *end)
}
