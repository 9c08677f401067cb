package punish

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueLineFormat(t *testing.T) {
	at := time.Date(2025, 4, 9, 15, 0, 0, 0, time.UTC)

	line := IssueLine(at, "Tier 3 Suspension", "exploiting", 100042)
	assert.Equal(t, "• 4/9/2025 - Tier 3 Suspension #100042 - exploiting", line)
}

func TestAppendHistory(t *testing.T) {
	assert.Equal(t, "first", AppendHistory("", "first"))
	assert.Equal(t, "first\nsecond", AppendHistory("first", "second"))
}

func TestStripRecordLinesExactToken(t *testing.T) {
	at := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)
	history := AppendHistory("", IssueLine(at, "Strike", "spam", 12))
	history = AppendHistory(history, IssueLine(at, "Strike", "spam again", 123))
	history = AppendHistory(history, RemoveLine(at, 12, "appealed"))

	stripped := StripRecordLines(history, 12)

	// Only #12 lines go; #123 stays even though "#12" is its prefix.
	assert.NotContains(t, stripped, "#12 ")
	assert.Contains(t, stripped, "#123")
	assert.Len(t, strings.Split(stripped, "\n"), 1)
}

func TestStripRecordLinesPreservesOrder(t *testing.T) {
	at := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)
	history := AppendHistory("", IssueLine(at, "Reminder", "a", 1))
	history = AppendHistory(history, IssueLine(at, "Warning", "b", 2))
	history = AppendHistory(history, IssueLine(at, "Strike", "c", 3))

	stripped := StripRecordLines(history, 2)

	lines := strings.Split(stripped, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "#1")
	assert.Contains(t, lines[1], "#3")
}

func TestStripRecordLinesEmpty(t *testing.T) {
	assert.Equal(t, "", StripRecordLines("", 5))
}

func TestParseSelector(t *testing.T) {
	sel, err := ParseSelector("tier:3")
	assert.NoError(t, err)
	assert.Equal(t, Selector{Kind: SelectorTier, Tier: 3}, sel)

	sel, err = ParseSelector("category:scamming")
	assert.NoError(t, err)
	assert.Equal(t, Selector{Kind: SelectorCategory, Category: "scamming"}, sel)

	for _, raw := range []string{"", "none", "invalid"} {
		sel, err = ParseSelector(raw)
		assert.NoError(t, err)
		assert.Equal(t, SelectorNone, sel.Kind)
	}

	_, err = ParseSelector("tier:abc")
	assert.ErrorIs(t, err, ErrInvalidTierOrCategory)

	_, err = ParseSelector("bogus")
	assert.ErrorIs(t, err, ErrInvalidTierOrCategory)
}
