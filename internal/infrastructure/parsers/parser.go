// Package parsers reads page records from exports and backups.
//
// Records are accepted in every layout the wiki has written over time:
// legacy field names (type, canon, univers, imageUrl), French kind names and
// schema v1 records carrying a description instead of sections.
package parsers

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// DescriptionSectionTitle titles the section a v1 description migrates into.
const DescriptionSectionTitle = "Description"

// RawPage is a page record parsed from an external source before validation.
type RawPage struct {
	ID            string             `json:"id,omitempty"`
	Slug          string             `json:"slug,omitempty"`
	Name          string             `json:"name"`
	Kind          string             `json:"kind"`
	Canonical     *bool              `json:"canonical,omitempty"` // Nil means absent; defaults to true
	Universe      string             `json:"universe,omitempty"`
	Relations     []string           `json:"relations,omitempty"`
	Sections      []entities.Section `json:"sections,omitempty"`
	Description   string             `json:"description,omitempty"` // Schema v1
	ImageURL      string             `json:"image_url,omitempty"`
	SchemaVersion int                `json:"schema_version,omitempty"`
	CreatedAt     *time.Time         `json:"created_at,omitempty"`
	LineNum       int                `json:"-"` // Line number in source file (set by parser)
}

// UnmarshalJSON accepts the current field names and the legacy ones.
func (r *RawPage) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID            string             `json:"id"`
		Slug          string             `json:"slug"`
		Name          string             `json:"name"`
		Kind          string             `json:"kind"`
		Type          string             `json:"type"`
		Canonical     *bool              `json:"canonical"`
		Canon         *bool              `json:"canon"`
		Universe      string             `json:"universe"`
		Univers       string             `json:"univers"`
		Relations     []string           `json:"relations"`
		Sections      []entities.Section `json:"sections"`
		Description   string             `json:"description"`
		ImageURL      string             `json:"image_url"`
		ImageURLCamel string             `json:"imageUrl"`
		SchemaVersion int                `json:"schema_version"`
		CreatedAt     *time.Time         `json:"created_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = RawPage{
		ID:            aux.ID,
		Slug:          aux.Slug,
		Name:          aux.Name,
		Kind:          firstNonEmpty(aux.Kind, aux.Type),
		Canonical:     aux.Canonical,
		Universe:      firstNonEmpty(aux.Universe, aux.Univers),
		Relations:     aux.Relations,
		Sections:      aux.Sections,
		Description:   aux.Description,
		ImageURL:      firstNonEmpty(aux.ImageURL, aux.ImageURLCamel),
		SchemaVersion: aux.SchemaVersion,
		CreatedAt:     aux.CreatedAt,
	}
	if r.Canonical == nil {
		r.Canonical = aux.Canon
	}
	return nil
}

// Version reports the schema version of the record. Records without an
// explicit version are v1 when they carry a description and no sections.
func (r *RawPage) Version() int {
	if r.SchemaVersion > 0 {
		return r.SchemaVersion
	}
	if r.Description != "" && len(r.Sections) == 0 {
		return 1
	}
	return entities.CurrentSchemaVersion
}

// ToPage converts the record to a page, applying defaults and migrating
// older schema versions. The kind must already have been checked.
func (r *RawPage) ToPage() entities.Page {
	kind, _ := entities.ParseKind(r.Kind)

	canonical := true
	if r.Canonical != nil {
		canonical = *r.Canonical
	}

	sections := append([]entities.Section(nil), r.Sections...)
	if strings.TrimSpace(r.Description) != "" && len(sections) == 0 {
		sections = []entities.Section{{Title: DescriptionSectionTitle, Content: r.Description}}
	}

	page := entities.Page{
		ID:        strings.TrimSpace(r.ID),
		Slug:      r.Slug,
		Name:      r.Name,
		Kind:      kind,
		Canonical: canonical,
		Universe:  r.Universe,
		Relations: append([]string(nil), r.Relations...),
		Sections:  sections,
		ImageURL:  r.ImageURL,
	}
	if r.CreatedAt != nil {
		page.CreatedAt = *r.CreatedAt
	}
	page.Normalize()
	return page
}

// FromPage builds the raw record of an existing page.
func FromPage(p *entities.Page) RawPage {
	canonical := p.Canonical
	created := p.CreatedAt
	return RawPage{
		ID:            p.ID,
		Slug:          p.Slug,
		Name:          p.Name,
		Kind:          string(p.Kind),
		Canonical:     &canonical,
		Universe:      p.Universe,
		Relations:     append([]string(nil), p.Relations...),
		Sections:      append([]entities.Section(nil), p.Sections...),
		ImageURL:      p.ImageURL,
		SchemaVersion: entities.CurrentSchemaVersion,
		CreatedAt:     &created,
	}
}

// Parser defines the interface for parsing pages from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawPage, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
