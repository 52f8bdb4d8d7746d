package store

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// DefaultPageSize is used when Query.PageSize is not positive.
const DefaultPageSize = 20

// GetAll filters, sorts and paginates the stored identities. Results bypass
// the lookup cache.
func (s *Store) GetAll(q Query) Page {
	s.mu.Lock()
	var candidates []Identity
	if q.Status != "" {
		candidates = s.collect(s.byStatus[q.Status])
	} else {
		candidates = make([]Identity, 0, len(s.byID))
		for _, rec := range s.byID {
			candidates = append(candidates, rec)
		}
		slices.SortFunc(candidates, func(a, b Identity) int {
			return compareStrings(a.ID, b.ID)
		})
	}
	s.mu.Unlock()

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		candidates = slices.DeleteFunc(candidates, func(rec Identity) bool {
			return !strings.Contains(strings.ToLower(rec.Alias), search) &&
				!strings.Contains(strings.ToLower(rec.DisplayName), search) &&
				!strings.Contains(strings.ToLower(rec.Contact), search)
		})
	}

	if less := sortFunc(q.SortBy); less != nil {
		desc := strings.EqualFold(q.SortOrder, SortDesc)
		slices.SortStableFunc(candidates, func(a, b Identity) int {
			if desc {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	page := max(q.Page, 1)
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(candidates)
	totalPages := 0
	if total > 0 {
		totalPages = (total-1)/pageSize + 1
	}

	// Pages past the end are empty; checking before multiplying keeps
	// (page-1)*pageSize from overflowing.
	start := total
	if page-1 < totalPages {
		start = (page - 1) * pageSize
	}
	end := start + min(pageSize, total-start)

	return Page{
		Items:      slices.Clone(candidates[start:end]),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func sortFunc(field string) func(a, b Identity) int {
	switch field {
	case "alias":
		return func(a, b Identity) int { return compareStrings(a.Alias, b.Alias) }
	case "displayName":
		return func(a, b Identity) int { return compareStrings(a.DisplayName, b.DisplayName) }
	case "contact":
		return func(a, b Identity) int { return compareStrings(a.Contact, b.Contact) }
	case "status":
		return func(a, b Identity) int { return compareStrings(string(a.Status), string(b.Status)) }
	case "loginCount":
		return func(a, b Identity) int { return cmp.Compare(a.LoginCount, b.LoginCount) }
	case "createdAt":
		return func(a, b Identity) int { return compareTimes(a.CreatedAt, b.CreatedAt) }
	case "updatedAt":
		return func(a, b Identity) int { return compareTimes(a.UpdatedAt, b.UpdatedAt) }
	case "lastAccessed":
		return func(a, b Identity) int { return compareTimes(a.LastAccessed, b.LastAccessed) }
	default:
		return nil
	}
}

func compareStrings(a, b string) int {
	return strings.Compare(a, b)
}

func compareTimes(a, b time.Time) int {
	return a.Compare(b)
}
