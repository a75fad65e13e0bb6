package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/ports"
	"github.com/ersonp/watlas/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing pages during import.
type ConflictStrategy string

const (
	// ConflictSkip skips pages that already exist (by ID).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite overwrites existing pages with new data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ParseConflictStrategy validates a conflict strategy name.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case ConflictSkip, "":
		return ConflictSkip, nil
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	default:
		return "", entities.NewValidationError("on_conflict", fmt.Sprintf("invalid strategy %q (valid: skip, overwrite)", s))
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing pages
}

// ImportError represents an error for a specific page during import.
type ImportError struct {
	Line    int    `json:"line"`            // Line number (1-indexed, 0 if unknown)
	Field   string `json:"field,omitempty"` // Which field has the error
	Value   string `json:"value,omitempty"` // The invalid value
	Message string `json:"message"`         // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Migrated int           `json:"migrated"` // Records upgraded from an older schema
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportService loads page records from exports and backups into the store.
type ImportService struct {
	relationalDB ports.RelationalDB
	authorizer   *Authorizer
	indexer      PageIndexer
}

// NewImportService creates a new import service. indexer may be nil.
func NewImportService(relationalDB ports.RelationalDB, authorizer *Authorizer, indexer PageIndexer) *ImportService {
	return &ImportService{
		relationalDB: relationalDB,
		authorizer:   authorizer,
		indexer:      indexer,
	}
}

// Import validates and imports raw pages. Record ids are kept so relations
// between imported pages survive; records without an id get a new one.
func (s *ImportService) Import(ctx context.Context, sess *Session, rawPages []parsers.RawPage, opts ImportOptions) (*ImportResult, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermImport)
	if err != nil {
		return nil, err
	}
	result, err := s.load(ctx, rawPages, opts)
	if err != nil {
		return nil, err
	}
	if !opts.DryRun {
		recordAudit(ctx, s.relationalDB, entities.ActionPageImport, actor.ID, "", map[string]any{
			"imported": result.Imported,
			"skipped":  result.Skipped,
			"errors":   len(result.Errors),
		})
	}
	return result, nil
}

// load runs an import for a caller that has already been authorized.
func (s *ImportService) load(ctx context.Context, rawPages []parsers.RawPage, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	// Validate all pages first
	pages, migrated, validationErrors := s.validatePages(rawPages)
	result.Errors = validationErrors
	result.Migrated = migrated

	if len(pages) == 0 {
		return result, nil
	}

	// Handle conflicts and save
	imported, skipped, slugErrors, err := s.saveWithConflictHandling(ctx, pages, opts)
	if err != nil {
		return nil, fmt.Errorf("saving pages: %w", err)
	}

	result.Imported = imported
	result.Skipped = skipped
	result.Errors = append(result.Errors, slugErrors...)
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Line < result.Errors[j].Line
	})

	return result, nil
}

type importedPage struct {
	page entities.Page
	line int
}

// validatePages validates raw pages and returns valid ones with any errors.
// A repeated id keeps the first record.
func (s *ImportService) validatePages(rawPages []parsers.RawPage) ([]importedPage, int, []ImportError) {
	valid := make([]importedPage, 0, len(rawPages))
	seen := make(map[string]int)
	var errs []ImportError
	var migrated int

	for i := range rawPages {
		raw := &rawPages[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if err := validateRawPage(raw, lineNum); err != nil {
			errs = append(errs, *err)
			continue
		}

		page := raw.ToPage()
		if page.ID == "" {
			page.ID = uuid.New().String()
		}
		page.Relations = graph.Dedupe(page.Relations)

		if err := page.Validate(); err != nil {
			errs = append(errs, validationImportErrors(err, lineNum)...)
			continue
		}
		if first, ok := seen[page.ID]; ok {
			errs = append(errs, ImportError{
				Line:    lineNum,
				Field:   "id",
				Value:   page.ID,
				Message: fmt.Sprintf("duplicate id %q (first seen on line %d)", page.ID, first),
			})
			continue
		}
		seen[page.ID] = lineNum

		if raw.Version() < entities.CurrentSchemaVersion {
			migrated++
		}
		valid = append(valid, importedPage{page: page, line: lineNum})
	}

	return valid, migrated, errs
}

// validateRawPage checks the fields that cannot be defaulted.
func validateRawPage(raw *parsers.RawPage, lineNum int) *ImportError {
	if strings.TrimSpace(raw.Name) == "" {
		return &ImportError{Line: lineNum, Field: "name", Message: "missing required field: name"}
	}
	if strings.TrimSpace(raw.Kind) == "" {
		return &ImportError{Line: lineNum, Field: "kind", Message: "missing required field: kind"}
	}
	if _, err := entities.ParseKind(raw.Kind); err != nil {
		return &ImportError{
			Line:    lineNum,
			Field:   "kind",
			Value:   raw.Kind,
			Message: fmt.Sprintf("invalid kind %q (valid: %s)", raw.Kind, strings.Join(entities.KindNames(), ", ")),
		}
	}
	if raw.SchemaVersion > entities.CurrentSchemaVersion {
		return &ImportError{
			Line:    lineNum,
			Field:   "schema_version",
			Value:   fmt.Sprintf("%d", raw.SchemaVersion),
			Message: fmt.Sprintf("unsupported schema version %d (newest: %d)", raw.SchemaVersion, entities.CurrentSchemaVersion),
		}
	}
	return nil
}

func validationImportErrors(err error, lineNum int) []ImportError {
	var verr *entities.ValidationError
	if !errors.As(err, &verr) {
		return []ImportError{{Line: lineNum, Message: err.Error()}}
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]ImportError, 0, len(fields))
	for _, f := range fields {
		out = append(out, ImportError{Line: lineNum, Field: f, Message: verr.Fields[f]})
	}
	return out
}

// saveWithConflictHandling saves pages with conflict handling.
func (s *ImportService) saveWithConflictHandling(ctx context.Context, pages []importedPage, opts ImportOptions) (imported, skipped int, errs []ImportError, err error) {
	reserved := make(map[string]string, len(pages))
	now := time.Now().UTC()

	for i := range pages {
		page := &pages[i].page

		existing, err := s.relationalDB.FindPageByID(ctx, page.ID)
		switch {
		case err == nil:
			if opts.OnConflict != ConflictOverwrite {
				skipped++
				continue
			}
			// Overwrite mode: preserve CreatedAt for existing pages
			page.CreatedAt = existing.CreatedAt
		case errors.Is(err, entities.ErrNotFound):
			if page.CreatedAt.IsZero() {
				page.CreatedAt = now
			}
		default:
			return 0, 0, nil, fmt.Errorf("looking up page %s: %w", page.ID, err)
		}

		if err := assignSlug(ctx, s.relationalDB, page, reserved); err != nil {
			if errors.Is(err, entities.ErrConflict) {
				errs = append(errs, ImportError{Line: pages[i].line, Field: "slug", Value: page.Slug, Message: "slug already used by another page"})
				continue
			}
			return 0, 0, nil, err
		}
		page.UpdatedAt = now

		if opts.DryRun {
			imported++
			continue
		}
		if err := s.relationalDB.UpsertPage(ctx, page); err != nil {
			return 0, 0, nil, err
		}
		if s.indexer != nil {
			s.indexer.Index(ctx, page)
		}
		imported++
	}

	return imported, skipped, errs, nil
}
