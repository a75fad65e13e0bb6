package graph

import "github.com/ersonp/watlas/internal/domain/entities"

// ResolvedRelation is one entry of a relation list. Page is nil when the id
// does not match any page in the working set.
type ResolvedRelation struct {
	ID   string         `json:"id"`
	Page *entities.Page `json:"page,omitempty"`
}

// Found reports whether the id resolved to a page.
func (r ResolvedRelation) Found() bool {
	return r.Page != nil
}

// Label is the display text: the page name, or the raw id when dangling.
func (r ResolvedRelation) Label() string {
	if r.Page == nil {
		return r.ID
	}
	return r.Page.Name
}

// Index maps page ids to positions in pages. The first page wins on
// duplicate ids.
func Index(pages []entities.Page) map[string]int {
	idx := make(map[string]int, len(pages))
	for i := range pages {
		if _, ok := idx[pages[i].ID]; !ok {
			idx[pages[i].ID] = i
		}
	}
	return idx
}

// Resolve looks up each id in pages, preserving order and repeats.
func Resolve(ids []string, pages []entities.Page) []ResolvedRelation {
	idx := Index(pages)

	out := make([]ResolvedRelation, len(ids))
	for i, id := range ids {
		out[i] = ResolvedRelation{ID: id}
		if pos, ok := idx[id]; ok {
			p := pages[pos].Clone()
			out[i].Page = &p
		}
	}
	return out
}
