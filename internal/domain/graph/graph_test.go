package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
)

func page(id, name string, kind entities.Kind, canonical bool, universe string, relations ...string) entities.Page {
	return entities.Page{
		ID:        id,
		Name:      name,
		Kind:      kind,
		Canonical: canonical,
		Universe:  universe,
		Relations: relations,
	}
}

func ids(pages []entities.Page) []string {
	out := make([]string, len(pages))
	for i := range pages {
		out[i] = pages[i].ID
	}
	return out
}

func strPtr(s string) *string { return &s }

func corpus() []entities.Page {
	return []entities.Page{
		page("y1990", "1990", entities.KindYear, true, "warcraft"),
		page("y0025", "0025", entities.KindYear, true, "warcraft"),
		page("thrall", "Thrall", entities.KindCharacter, true, "warcraft", "y1990", "orgrimmar"),
		page("orgrimmar", "Orgrimmar", entities.KindPlace, true, "warcraft", "y0025"),
		page("alt-thrall", "Thrall (AU)", entities.KindCharacter, false, "warcraft", "y1990"),
		page("kerrigan", "Kerrigan", entities.KindCharacter, true, "starcraft", "y1990"),
		page("drifter", "Drifter", entities.KindCharacter, true, ""),
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name         string
		scope        Scope
		wantSelected bool
		wantIDs      []string
	}{
		{
			name:         "no universe selected",
			scope:        Scope{Canonical: true},
			wantSelected: false,
			wantIDs:      []string{},
		},
		{
			name:         "all universes canon",
			scope:        NewScope(true, AllUniverses),
			wantSelected: true,
			wantIDs:      []string{"y1990", "y0025", "thrall", "orgrimmar", "kerrigan", "drifter"},
		},
		{
			name:         "all universes non-canon",
			scope:        NewScope(false, AllUniverses),
			wantSelected: true,
			wantIDs:      []string{"alt-thrall"},
		},
		{
			name:         "single universe canon",
			scope:        NewScope(true, "warcraft"),
			wantSelected: true,
			wantIDs:      []string{"y1990", "y0025", "thrall", "orgrimmar"},
		},
		{
			name:         "unknown universe",
			scope:        NewScope(true, "diablo"),
			wantSelected: true,
			wantIDs:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, selected := Filter(corpus(), tt.scope)
			assert.Equal(t, tt.wantSelected, selected)
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestFilter_UnselectedIgnoresContents(t *testing.T) {
	for _, pages := range [][]entities.Page{nil, {}, corpus()} {
		got, selected := Filter(pages, Scope{Canonical: false, Universe: nil})
		assert.False(t, selected)
		assert.Nil(t, got)
	}
}

func TestFilter_UntaggedPagesExcludedFromUniverseViews(t *testing.T) {
	got, _ := Filter(corpus(), NewScope(true, "warcraft"))
	assert.NotContains(t, ids(got), "drifter")
}

func TestResolve(t *testing.T) {
	pages := corpus()

	t.Run("order and length preserved", func(t *testing.T) {
		in := []string{"orgrimmar", "ghost", "thrall", "orgrimmar"}
		got := Resolve(in, pages)
		require.Len(t, got, len(in))
		for i := range in {
			assert.Equal(t, in[i], got[i].ID)
		}
		assert.True(t, got[0].Found())
		assert.False(t, got[1].Found())
		assert.True(t, got[2].Found())
		assert.True(t, got[3].Found(), "repeated ids are resolved again")
	})

	t.Run("dangling shows raw id", func(t *testing.T) {
		got := Resolve([]string{"ghost"}, pages)
		assert.Equal(t, "ghost", got[0].Label())
		assert.Nil(t, got[0].Page)
	})

	t.Run("found shows name", func(t *testing.T) {
		got := Resolve([]string{"thrall"}, pages)
		assert.Equal(t, "Thrall", got[0].Label())
	})

	t.Run("id outside working set is dangling", func(t *testing.T) {
		filtered, _ := Filter(pages, NewScope(true, "starcraft"))
		got := Resolve([]string{"thrall", "kerrigan"}, filtered)
		assert.False(t, got[0].Found())
		assert.True(t, got[1].Found())
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Empty(t, Resolve(nil, pages))
	})
}

func TestProjectTimeline(t *testing.T) {
	filtered, _ := Filter(corpus(), NewScope(true, "warcraft"))
	groups := ProjectTimeline(filtered)

	require.Len(t, groups, 2)
	assert.Equal(t, "y0025", groups[0].Anchor.ID)
	assert.Equal(t, []string{"orgrimmar"}, ids(groups[0].Members))
	assert.Equal(t, "y1990", groups[1].Anchor.ID)
	assert.Equal(t, []string{"thrall"}, ids(groups[1].Members))
}

func TestProjectTimeline_Properties(t *testing.T) {
	pages := corpus()
	groups := ProjectTimeline(pages)

	for i, g := range groups {
		assert.Equal(t, entities.KindYear, g.Anchor.Kind)
		if i > 0 {
			assert.LessOrEqual(t, groups[i-1].Anchor.Name, g.Anchor.Name)
		}

		var want []string
		for _, p := range pages {
			if p.References(g.Anchor.ID) {
				want = append(want, p.ID)
			}
		}
		if want == nil {
			want = []string{}
		}
		assert.Equal(t, want, ids(g.Members), "members of %s", g.Anchor.ID)
	}
}

func TestProjectTimeline_EmptyAnchorKept(t *testing.T) {
	pages := []entities.Page{
		page("y1", "0001", entities.KindYear, true, ""),
		page("y2", "0002", entities.KindYear, true, ""),
		page("a", "A", entities.KindEvent, true, "", "y2"),
	}
	groups := ProjectTimeline(pages)

	require.Len(t, groups, 2)
	assert.Empty(t, groups[0].Members)
	assert.NotNil(t, groups[0].Members)
	assert.Equal(t, []string{"a"}, ids(groups[1].Members))
}

func TestProjectTimeline_LexicalOrder(t *testing.T) {
	pages := []entities.Page{
		page("a", "900", entities.KindYear, true, ""),
		page("b", "1000", entities.KindYear, true, ""),
	}
	groups := ProjectTimeline(pages)

	// "1000" < "900" as strings; names must be zero-padded to sort chronologically.
	assert.Equal(t, "b", groups[0].Anchor.ID)
	assert.Equal(t, "a", groups[1].Anchor.ID)
}

func TestProjectTimeline_MemberUnderSeveralAnchors(t *testing.T) {
	pages := []entities.Page{
		page("y1", "0001", entities.KindYear, true, ""),
		page("y2", "0002", entities.KindYear, true, ""),
		page("war", "War", entities.KindEvent, true, "", "y1", "y2"),
		page("loner", "Loner", entities.KindCharacter, true, ""),
	}
	groups := ProjectTimeline(pages)

	assert.Equal(t, []string{"war"}, ids(groups[0].Members))
	assert.Equal(t, []string{"war"}, ids(groups[1].Members))
}

func TestScenario_HeroAndGhost(t *testing.T) {
	pages := []entities.Page{
		page("y1990", "1990", entities.KindYear, true, ""),
		page("hero", "Hero", entities.KindCharacter, true, "", "y1990", "ghost"),
	}

	filtered, selected := Filter(pages, NewScope(true, AllUniverses))
	require.True(t, selected)

	groups := ProjectTimeline(filtered)
	require.Len(t, groups, 1)
	assert.Equal(t, "y1990", groups[0].Anchor.ID)
	assert.Equal(t, []string{"hero"}, ids(groups[0].Members))

	resolved := Resolve([]string{"y1990", "ghost"}, filtered)
	require.Len(t, resolved, 2)
	require.True(t, resolved[0].Found())
	assert.Equal(t, "y1990", resolved[0].Page.ID)
	assert.False(t, resolved[1].Found())
	assert.Equal(t, "ghost", resolved[1].ID)
}

func TestToggleRelation(t *testing.T) {
	tests := []struct {
		name     string
		current  []string
		target   string
		include  bool
		expected []string
	}{
		{name: "add to empty", current: nil, target: "a", include: true, expected: []string{"a"}},
		{name: "add appends last", current: []string{"a", "b"}, target: "c", include: true, expected: []string{"a", "b", "c"}},
		{name: "add existing is no-op", current: []string{"a", "b"}, target: "a", include: true, expected: []string{"a", "b"}},
		{name: "remove", current: []string{"a", "b"}, target: "a", include: false, expected: []string{"b"}},
		{name: "remove collapses duplicates", current: []string{"a", "b", "a"}, target: "a", include: false, expected: []string{"b"}},
		{name: "remove missing", current: []string{"b"}, target: "a", include: false, expected: []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToggleRelation(tt.current, tt.target, tt.include))
		})
	}
}

func TestToggleRelation_Idempotent(t *testing.T) {
	lists := [][]string{nil, {}, {"x"}, {"a", "x", "b"}, {"x", "x"}, {"a", "b"}}

	for _, l := range lists {
		once := ToggleRelation(l, "x", true)
		assert.Equal(t, once, ToggleRelation(once, "x", true))

		removed := ToggleRelation(l, "x", false)
		assert.Equal(t, removed, ToggleRelation(removed, "x", false))

		roundTrip := ToggleRelation(ToggleRelation(l, "x", true), "x", false)
		assert.NotContains(t, roundTrip, "x")
	}
}

func TestToggleRelation_DoesNotMutateInput(t *testing.T) {
	in := make([]string, 2, 10)
	in[0], in[1] = "a", "b"

	_ = ToggleRelation(in, "c", true)
	_ = ToggleRelation(in, "a", false)

	assert.Equal(t, []string{"a", "b"}, in)
	assert.Equal(t, "", in[:3][2])
}

func TestScenario_ToggleOnThenOff(t *testing.T) {
	relations := []string{}
	relations = ToggleRelation(relations, "hero", true)
	relations = ToggleRelation(relations, "hero", false)
	assert.Equal(t, []string{}, relations)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Dedupe([]string{"a", "b", "a", "c", "b"}))
	assert.Equal(t, []string{}, Dedupe(nil))
}

func TestCandidates(t *testing.T) {
	filtered, _ := Filter(corpus(), NewScope(true, "warcraft"))

	got := Candidates(filtered, "thrall")
	assert.Equal(t, []string{"y1990", "y0025", "orgrimmar"}, ids(got))

	assert.True(t, IsCandidate(filtered, "thrall", "orgrimmar"))
	assert.False(t, IsCandidate(filtered, "thrall", "thrall"))
	assert.False(t, IsCandidate(filtered, "thrall", "kerrigan"))
}

func TestInbound(t *testing.T) {
	got := Inbound(corpus(), "y1990")
	assert.Equal(t, []string{"thrall", "alt-thrall", "kerrigan"}, ids(got))
}

func TestScope_Selected(t *testing.T) {
	assert.False(t, Scope{}.Selected())
	assert.True(t, Scope{Universe: strPtr("")}.Selected())
}
