package entities

import (
	"fmt"
	"strings"
)

// Kind is the category of a page.
type Kind string

// The closed set of page kinds.
const (
	KindCharacter       Kind = "character"
	KindPlace           Kind = "place"
	KindGroup           Kind = "group"
	KindObject          Kind = "object"
	KindEvent           Kind = "event"
	KindPeriod          Kind = "period"
	KindYear            Kind = "year"
	KindNarrativeMedium Kind = "narrative_medium"
)

// KindInfo describes a built-in kind for listings and help output.
type KindInfo struct {
	Kind        Kind
	Description string
}

// Kinds lists every kind in display order.
var Kinds = []KindInfo{
	{Kind: KindCharacter, Description: "People, beings, named individuals"},
	{Kind: KindPlace, Description: "Regions, cities, buildings, landmarks"},
	{Kind: KindGroup, Description: "Factions, orders, races, organisations"},
	{Kind: KindObject, Description: "Artifacts, weapons, named items"},
	{Kind: KindEvent, Description: "Battles, ceremonies, turning points"},
	{Kind: KindPeriod, Description: "Eras and ages spanning several years"},
	{Kind: KindYear, Description: "A single year, used as a timeline anchor"},
	{Kind: KindNarrativeMedium, Description: "Games, novels, comics, cinematics"},
}

// legacyKinds maps kind names found in older exports to the current set.
var legacyKinds = map[string]Kind{
	"personnage":       KindCharacter,
	"lieu":             KindPlace,
	"groupe":           KindGroup,
	"objet":            KindObject,
	"événement":        KindEvent,
	"evenement":        KindEvent,
	"période":          KindPeriod,
	"periode":          KindPeriod,
	"année":            KindYear,
	"annee":            KindYear,
	"support_narratif": KindNarrativeMedium,
	"location":         KindPlace,
}

// KindNames returns the names of all kinds.
func KindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k.Kind)
	}
	return names
}

// IsValid reports whether k belongs to the closed set.
func (k Kind) IsValid() bool {
	for _, info := range Kinds {
		if info.Kind == k {
			return true
		}
	}
	return false
}

// ParseKind normalizes s into a Kind, accepting legacy names.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "_")
	if k := Kind(name); k.IsValid() {
		return k, nil
	}
	if k, ok := legacyKinds[name]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q (valid: %s)", ErrValidation, s, strings.Join(KindNames(), ", "))
}
