package book

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidRange indicates a chapter range expression that cannot be
// applied to the discovered chapter list.
var ErrInvalidRange = errors.New("book: invalid chapter range")

// Range is a 1-based inclusive chapter selection satisfying
// 1 <= Start <= End <= total.
type Range struct {
	Start int
	End   int
}

// Count returns the number of chapters selected by the range.
func (r Range) Count() int {
	return r.End - r.Start + 1
}

var (
	singleRe = regexp.MustCompile(`^\d+$`)
	spanRe   = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// ValidateRangeExpr checks everything about a range expression that
// does not depend on the discovered chapter total: its shape and the
// total-independent constraints (positive numbers, start before end).
// Callers use it to reject a bad expression before any network request
// is made; ParseRange still applies the chapter bounds afterwards.
func ValidateRangeExpr(expr string) error {
	expr = strings.TrimSpace(expr)

	if strings.EqualFold(expr, "all") {
		return nil
	}

	if singleRe.MatchString(expr) {
		n, err := strconv.Atoi(expr)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: chapter %s is not a positive number", ErrInvalidRange, expr)
		}
		return nil
	}

	if m := spanRe.FindStringSubmatch(expr); m != nil {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || start < 1 || end < 1 {
			return fmt.Errorf("%w: %q is not a span of positive numbers", ErrInvalidRange, expr)
		}
		if start > end {
			return fmt.Errorf("%w: start %d is after end %d", ErrInvalidRange, start, end)
		}
		return nil
	}

	return fmt.Errorf("%w: %q (use \"all\", \"N\", or \"A-B\")", ErrInvalidRange, expr)
}

// ParseRange parses a chapter range expression ("all", "N", or "A-B")
// against the total number of discovered chapters. It is a pure
// function: no side effects, same output for the same inputs.
func ParseRange(expr string, total int) (Range, error) {
	if total < 1 {
		return Range{}, fmt.Errorf("%w: no chapters available", ErrInvalidRange)
	}

	expr = strings.TrimSpace(expr)

	if strings.EqualFold(expr, "all") {
		return Range{Start: 1, End: total}, nil
	}

	if singleRe.MatchString(expr) {
		n, err := strconv.Atoi(expr)
		if err != nil || n < 1 || n > total {
			return Range{}, fmt.Errorf("%w: chapter %s is outside 1-%d", ErrInvalidRange, expr, total)
		}
		return Range{Start: n, End: n}, nil
	}

	if m := spanRe.FindStringSubmatch(expr); m != nil {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || start < 1 || end < 1 || start > total || end > total {
			return Range{}, fmt.Errorf("%w: %q is outside 1-%d", ErrInvalidRange, expr, total)
		}
		if start > end {
			return Range{}, fmt.Errorf("%w: start %d is after end %d", ErrInvalidRange, start, end)
		}
		return Range{Start: start, End: end}, nil
	}

	return Range{}, fmt.Errorf("%w: %q (use \"all\", \"N\", or \"A-B\")", ErrInvalidRange, expr)
}
