package graph

import (
	"sort"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// TimelineGroup is a year anchor with the pages that reference it.
type TimelineGroup struct {
	Anchor  entities.Page   `json:"anchor"`
	Members []entities.Page `json:"members"`
}

// ProjectTimeline groups pages under every year page they reference.
//
// Anchors are ordered by name using plain string comparison, so year names
// must sort lexically (zero-padded) to read chronologically. Ties fall back
// to the id to keep the output stable. Anchors without members are kept.
func ProjectTimeline(pages []entities.Page) []TimelineGroup {
	anchors := make([]entities.Page, 0)
	for i := range pages {
		if pages[i].Kind == entities.KindYear {
			anchors = append(anchors, pages[i])
		}
	}

	sort.SliceStable(anchors, func(i, j int) bool {
		if anchors[i].Name != anchors[j].Name {
			return anchors[i].Name < anchors[j].Name
		}
		return anchors[i].ID < anchors[j].ID
	})

	groups := make([]TimelineGroup, 0, len(anchors))
	for _, anchor := range anchors {
		members := make([]entities.Page, 0)
		for i := range pages {
			if pages[i].References(anchor.ID) {
				members = append(members, pages[i].Clone())
			}
		}
		groups = append(groups, TimelineGroup{Anchor: anchor.Clone(), Members: members})
	}
	return groups
}
