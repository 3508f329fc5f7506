package contract

import (
	"testing"

	"github.com/pulseboard/pulseboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCellWithoutColors(t *testing.T) {
	assert.Equal(t, "true", FormatCell(schema.BoolValue(true), false))
	assert.Equal(t, "false", FormatCell(schema.BoolValue(false), false))
	assert.Equal(t, "42", FormatCell(schema.IntValue(42), false))
	assert.Equal(t, "-", FormatCell(schema.Null(), false))
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", TruncateCell("short", 10))
	assert.Equal(t, "exact", TruncateCell("exact", 5))
	assert.Equal(t, "a ve...", TruncateCell("a very long cell value", 7))
	// Widths too small for an ellipsis leave the value alone.
	assert.Equal(t, "abcdef", TruncateCell("abcdef", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, got, s)
	}
	for _, s := range []string{"no", "No", "false", "0"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, got, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
