package book

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseRange_All verifies "all" selects the full chapter list
func TestParseRange_All(t *testing.T) {
	for _, total := range []int{1, 2, 17, 500} {
		r, err := ParseRange("all", total)
		require.NoError(t, err)
		assert.Equal(t, Range{Start: 1, End: total}, r, "all should span 1-%d", total)
	}
}

// TestParseRange_AllIsCaseInsensitive verifies "ALL" works too
func TestParseRange_AllIsCaseInsensitive(t *testing.T) {
	r, err := ParseRange("ALL", 3)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 1, End: 3}, r)
}

// TestParseRange_Single verifies a single chapter number
func TestParseRange_Single(t *testing.T) {
	total := 10
	for n := 1; n <= total; n++ {
		r, err := ParseRange(fmt.Sprintf("%d", n), total)
		require.NoError(t, err)
		assert.Equal(t, Range{Start: n, End: n}, r)
		assert.Equal(t, 1, r.Count())
	}
}

// TestParseRange_Span verifies inclusive A-B spans
func TestParseRange_Span(t *testing.T) {
	r, err := ParseRange("2-5", 10)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 2, End: 5}, r)
	assert.Equal(t, 4, r.Count())

	r, err = ParseRange("1-10", 10)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 1, End: 10}, r)

	r, err = ParseRange("7-7", 10)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 7, End: 7}, r)
}

// TestParseRange_TrimsWhitespace verifies surrounding spaces are ignored
func TestParseRange_TrimsWhitespace(t *testing.T) {
	r, err := ParseRange("  3 ", 5)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 3, End: 3}, r)
}

// TestValidateRangeExpr verifies the total-independent checks
func TestValidateRangeExpr(t *testing.T) {
	for _, expr := range []string{"all", "ALL", "1", "7", " 3 ", "2-5", "7-7", "1-9999"} {
		assert.NoError(t, ValidateRangeExpr(expr), "%q", expr)
	}

	for _, expr := range []string{"", "abc", "0", "-3", "5-2", "0-3", "1-2-3", "99999999999999999999"} {
		err := ValidateRangeExpr(expr)
		require.Error(t, err, "%q", expr)
		assert.ErrorIs(t, err, ErrInvalidRange, "%q", expr)
	}
}

// TestValidateRangeExpr_AcceptsOutOfBounds verifies bounds stay with
// ParseRange: a well-formed span passes even if no book is that long
func TestValidateRangeExpr_AcceptsOutOfBounds(t *testing.T) {
	require.NoError(t, ValidateRangeExpr("500-600"))

	_, err := ParseRange("500-600", 10)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

// TestParseRange_Invalid verifies the documented failure cases
func TestParseRange_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		expr  string
		total int
	}{
		{"zero chapter", "0", 10},
		{"reversed span", "5-2", 10},
		{"garbage", "abc", 10},
		{"out of bounds single", "11", 10},
		{"out of bounds span end", "2-11", 10},
		{"out of bounds span start", "0-3", 10},
		{"negative", "-3", 10},
		{"empty expression", "", 10},
		{"empty chapter list", "all", 0},
		{"huge number", "99999999999999999999", 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRange(tc.expr, tc.total)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}
