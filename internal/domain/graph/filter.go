// Package graph holds the relation graph and timeline projections over a
// snapshot of pages. Every function is pure and never mutates its input.
package graph

import "github.com/ersonp/watlas/internal/domain/entities"

// AllUniverses selects every universe; only the canonical flag applies.
const AllUniverses = ""

// Scope selects the working set of pages. A nil Universe means no universe
// has been chosen yet.
type Scope struct {
	Canonical bool
	Universe  *string
}

// NewScope returns a scope restricted to universe.
func NewScope(canonical bool, universe string) Scope {
	return Scope{Canonical: canonical, Universe: &universe}
}

// Selected reports whether a universe choice has been made.
func (s Scope) Selected() bool {
	return s.Universe != nil
}

// Filter partitions pages by the canonical flag and universe tag. When no
// universe is selected it returns (nil, false) regardless of pages.
func Filter(pages []entities.Page, scope Scope) ([]entities.Page, bool) {
	if scope.Universe == nil {
		return nil, false
	}
	universe := *scope.Universe

	out := make([]entities.Page, 0, len(pages))
	for i := range pages {
		if pages[i].Canonical != scope.Canonical {
			continue
		}
		if universe != AllUniverses && pages[i].Universe != universe {
			continue
		}
		out = append(out, pages[i])
	}
	return out, true
}
