package services

import (
	"context"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// Timeline is the projection of the pages in a scope.
type Timeline struct {
	Selected bool                  `json:"selected"`
	Groups   []graph.TimelineGroup `json:"groups"`
}

// TimelineService projects pages onto their year anchors.
type TimelineService struct {
	relationalDB ports.RelationalDB
}

// NewTimelineService creates a new TimelineService.
func NewTimelineService(relationalDB ports.RelationalDB) *TimelineService {
	return &TimelineService{relationalDB: relationalDB}
}

// Timeline filters the pages by scope and groups them under year anchors.
func (s *TimelineService) Timeline(ctx context.Context, scope graph.Scope) (*Timeline, error) {
	all, err := s.relationalDB.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	visible, selected := graph.Filter(all, scope)
	if !selected {
		return &Timeline{Selected: false, Groups: []graph.TimelineGroup{}}, nil
	}
	return &Timeline{Selected: true, Groups: graph.ProjectTimeline(visible)}, nil
}
