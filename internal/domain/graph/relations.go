package graph

import "github.com/ersonp/watlas/internal/domain/entities"

// ToggleRelation adds or removes target from a relation list. Adding an id
// that is already present is a no-op; removing drops every occurrence.
// The input slice is never modified.
func ToggleRelation(current []string, target string, include bool) []string {
	if include {
		for _, id := range current {
			if id == target {
				return append([]string{}, current...)
			}
		}
		out := make([]string, 0, len(current)+1)
		out = append(out, current...)
		return append(out, target)
	}

	out := make([]string, 0, len(current))
	for _, id := range current {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Dedupe drops repeated ids, keeping the first occurrence of each.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Candidates returns the pages an editor may link from the page selfID:
// the working set minus the page itself.
func Candidates(pages []entities.Page, selfID string) []entities.Page {
	out := make([]entities.Page, 0, len(pages))
	for i := range pages {
		if pages[i].ID == selfID {
			continue
		}
		out = append(out, pages[i])
	}
	return out
}

// IsCandidate reports whether target is offered as a relation from selfID.
func IsCandidate(pages []entities.Page, selfID, target string) bool {
	if target == selfID {
		return false
	}
	_, ok := Index(pages)[target]
	return ok
}

// Inbound returns the pages whose relation lists reference id.
func Inbound(pages []entities.Page, id string) []entities.Page {
	out := make([]entities.Page, 0)
	for i := range pages {
		if pages[i].References(id) {
			out = append(out, pages[i])
		}
	}
	return out
}
