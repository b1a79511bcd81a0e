package model

import (
	"sort"
	"strings"
)

// Filter narrows a collection. Empty fields impose no constraint.
type Filter struct {
	Category string
	Code     string
	Name     string
}

func (f Filter) IsEmpty() bool {
	return f.Category == "" && f.Code == "" && f.Name == ""
}

func (f Filter) Match(r Record) bool {
	if f.Category != "" && !strings.EqualFold(r.CategoryName(), f.Category) {
		return false
	}
	if f.Code != "" && !strings.HasPrefix(r.Identifier(), f.Code) {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToUpper(r.DisplayName()), strings.ToUpper(f.Name)) {
		return false
	}
	return true
}

// Apply keeps collection order.
func Apply[T Record](records []T, f Filter) []T {
	result := make([]T, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			result = append(result, r)
		}
	}
	return result
}

// Categories lists the distinct non-empty categories, sorted.
func Categories[T Record](records []T) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, r := range records {
		c := r.CategoryName()
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}
