package services

import (
	"strings"

	"eventregistration/internal/domain"
)

// FilterRegistrants returns the registrants matching query as a case-insensitive substring
// of any searchable field, preserving order. A blank query returns the input unchanged.
func FilterRegistrants(registrants []*domain.Registrant, query string) []*domain.Registrant {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return registrants
	}
	out := make([]*domain.Registrant, 0, len(registrants))
	for _, r := range registrants {
		for _, field := range r.SearchText() {
			if strings.Contains(field, q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
