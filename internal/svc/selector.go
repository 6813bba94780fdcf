package svc

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/airbusgeo/gridio/internal/gridio"
)

// Selector chooses the sub-datasets of a container file to be imported.
// An empty selection means that the user declined all of them.
type Selector interface {
	Select(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error)
}

// SelectorFunc is a function implementing Selector
type SelectorFunc func(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error)

func (f SelectorFunc) Select(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error) {
	return f(ctx, file, subDatasets)
}

// SelectAll selects every sub-dataset
var SelectAll = SelectorFunc(func(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error) {
	return subDatasets, nil
})

// RegexpSelector selects the sub-datasets whose name or description matches the regexp
type RegexpSelector struct {
	Regexp *regexp.Regexp
}

// NewRegexpSelector compiles the pattern into a RegexpSelector
func NewRegexpSelector(pattern string) (*RegexpSelector, error) {
	r, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("NewRegexpSelector: %w", err)
	}
	return &RegexpSelector{Regexp: r}, nil
}

func (s *RegexpSelector) Select(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error) {
	var selected []gridio.SubDataset
	for _, sd := range subDatasets {
		if s.Regexp.MatchString(sd.Name) || s.Regexp.MatchString(sd.Description) {
			selected = append(selected, sd)
		}
	}
	return selected, nil
}

// IndexRange is an inclusive range of sub-dataset indices
type IndexRange struct {
	First, Last int
}

// IndexSelector selects the sub-datasets by their index (as found in the metadata, starting at 1)
type IndexSelector []IndexRange

// ParseIndexSelector parses a comma-separated list of indices or ranges (e.g. "1,3-5")
func ParseIndexSelector(s string) (IndexSelector, error) {
	var ranges IndexSelector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", part, err)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", part, err)
			}
			if last < first {
				return nil, fmt.Errorf("invalid range %q", part)
			}
		}
		ranges = append(ranges, IndexRange{First: first, Last: last})
	}
	return ranges, nil
}

// Contains returns true if i is in one of the ranges
func (s IndexSelector) Contains(i int) bool {
	for _, r := range s {
		if i >= r.First && i <= r.Last {
			return true
		}
	}
	return false
}

func (s IndexSelector) Select(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error) {
	var selected []gridio.SubDataset
	for _, sd := range subDatasets {
		if s.Contains(sd.Index) {
			selected = append(selected, sd)
		}
	}
	return selected, nil
}
