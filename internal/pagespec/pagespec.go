// Package pagespec parses the page selections accepted by the HTTP API:
// comma-separated lists where a bare number denotes a single page and a
// dash-joined pair denotes an inclusive 1-based range.
package pagespec

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a closed interval [Start, End] over 1-based page numbers.
// Start <= End is assumed, not validated.
type Range struct {
	Start int
	End   int
}

// ParseRanges parses a string like "1-3,5,7-8" into ranges, preserving order.
// An empty or blank string yields a nil slice.
func ParseRanges(s string) ([]Range, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var ranges []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if start, end, ok := strings.Cut(part, "-"); ok {
			from, err := strconv.Atoi(strings.TrimSpace(start))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q: %v", part, err)
			}
			to, err := strconv.Atoi(strings.TrimSpace(end))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q: %v", part, err)
			}
			ranges = append(ranges, Range{Start: from, End: to})
			continue
		}

		page, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q: %v", part, err)
		}
		ranges = append(ranges, Range{Start: page, End: page})
	}

	return ranges, nil
}

// ParsePages parses a comma-separated list of 1-based page numbers,
// preserving order and duplicates.
func ParsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		page, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q: %v", part, err)
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// Clamp restricts r to [1, totalPages]. The second return value reports
// whether anything of the range survived clamping.
func (r Range) Clamp(totalPages int) (Range, bool) {
	if r.Start < 1 {
		r.Start = 1
	}
	if r.End > totalPages {
		r.End = totalPages
	}
	return r, r.Start <= r.End && r.Start <= totalPages && r.End >= 1
}
