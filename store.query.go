package main

import (
	"sort"
	"strings"
)

// The query layer: derived, read-only views over the catalog. Results are
// recomputed on every call from current state and the transient query
// parameters; at O(n) there is nothing worth caching.

// SetSearchQuery sets the transient free-text filter.
func (cs *CatalogStore) SetSearchQuery(q string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.searchQuery = q
}

// SetCategoryFilter sets the transient category facet. Empty means all.
func (cs *CatalogStore) SetCategoryFilter(c string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.categoryFilter = c
}

func (cs *CatalogStore) SearchQuery() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.searchQuery
}

func (cs *CatalogStore) CategoryFilter() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.categoryFilter
}

// FilteredBooks returns the catalog filtered by the current search query
// and category. The search matches case-insensitively against title,
// author or isbn; an empty query matches all.
func (cs *CatalogStore) FilteredBooks() []Book {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	query := strings.ToLower(cs.searchQuery)
	out := []Book{}
	for _, b := range cs.books {
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Title), query) &&
			!strings.Contains(strings.ToLower(b.Author), query) &&
			!strings.Contains(strings.ToLower(b.ISBN), query) {
			continue
		}
		if cs.categoryFilter != "" && b.Category != cs.categoryFilter {
			continue
		}
		out = append(out, b.clone())
	}
	return out
}

// Categories returns the sorted set of distinct categories present in the catalog.
func (cs *CatalogStore) Categories() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	seen := make(map[string]struct{}, len(cs.books))
	out := []string{}
	for _, b := range cs.books {
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		out = append(out, b.Category)
	}
	sort.Strings(out)
	return out
}
