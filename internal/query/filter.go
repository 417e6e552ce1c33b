// Package query turns raw list-endpoint query parameters into a validated,
// typed filter. The contract is deliberately lenient: unknown sort keys and
// invalid enum values fall back silently instead of erroring.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	maxPageSize = 100
	minPageSize = 1
)

// ListQuery is the normalized filter a list operation runs with.
type ListQuery struct {
	Search string

	// Fields holds validated equality filters keyed by bson field name.
	// Values for Expand-ed enums are canonical; the executor widens them
	// to every stored spelling.
	Fields map[string]string

	// BoolFields holds validated boolean filters keyed by bson field name.
	BoolFields map[string]bool

	Tags []string // resource must carry all of them

	DateFrom *time.Time
	DateTo   *time.Time

	// InactiveSince is the computed activity cutoff: only resources whose
	// last activity is at or before it match.
	InactiveSince *time.Time

	SortBy  string
	SortAsc bool

	Page     int
	PageSize int
}

// Skip returns the number of documents to skip for the requested page.
func (q ListQuery) Skip() int {
	return (q.Page - 1) * q.PageSize
}

// Pages derives the page count for a total: always at least 1.
func Pages(total, pageSize int) int {
	if total <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Parse normalizes raw query parameters against a resource descriptor.
// now anchors the inactive-for-N-days cutoff.
func Parse(values url.Values, d Descriptor, now time.Time) ListQuery {
	q := ListQuery{
		Fields:     map[string]string{},
		BoolFields: map[string]bool{},
		SortBy:     d.DefaultSort,
		Page:       1,
		PageSize:   d.DefaultPageSize,
	}

	q.Search = strings.TrimSpace(values.Get("q"))

	for _, f := range d.Enums {
		v := strings.TrimSpace(values.Get(f.Param))
		if v == "" {
			continue
		}
		if alias, ok := f.Aliases[v]; ok {
			v = alias
		}
		if f.Allowed != nil && !contains(f.Allowed, v) {
			continue // invalid values are ignored, not rejected
		}
		if f.Bool {
			q.BoolFields[f.Field] = v == "true"
			continue
		}
		q.Fields[f.Field] = v
	}

	if d.TagParam != "" {
		seen := map[string]struct{}{}
		for _, t := range values[d.TagParam] {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			q.Tags = append(q.Tags, t)
		}
	}

	if d.DateField != "" {
		q.DateFrom = parseDate(values.Get(d.DateFromParam))
		q.DateTo = parseDate(values.Get(d.DateToParam))
	}

	if d.InactiveParam != "" {
		if days, err := strconv.Atoi(values.Get(d.InactiveParam)); err == nil && days > 0 {
			cutoff := now.AddDate(0, 0, -days)
			q.InactiveSince = &cutoff
		}
	}

	if sortBy := values.Get("sortBy"); d.sortable(sortBy) {
		q.SortBy = sortBy
	}
	q.SortAsc = values.Get("sortDir") == "asc"

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 1 {
		q.Page = page
	}
	if size, err := strconv.Atoi(values.Get("pageSize")); err == nil {
		if size < minPageSize {
			size = minPageSize
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		q.PageSize = size
	}

	return q
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, c := range values {
		if c == v {
			return true
		}
	}
	return false
}
