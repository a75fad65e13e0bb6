package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/services"
	"github.com/ersonp/watlas/internal/infrastructure/parsers"
)

// ExportFormats lists the valid export formats.
var ExportFormats = []string{"json", "csv", "markdown"}

// ExportHandler writes pages in the import formats plus markdown.
type ExportHandler struct {
	pages *services.PageService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(pages *services.PageService) *ExportHandler {
	return &ExportHandler{pages: pages}
}

// ExportOptions controls what is exported.
type ExportOptions struct {
	Format string
	Scope  *graph.Scope // Nil exports every page
	Kind   string       // Empty exports every kind
}

// Handle writes the selected pages to w and returns how many were written.
// JSON and CSV output can be imported back.
func (h *ExportHandler) Handle(ctx context.Context, w io.Writer, opts ExportOptions) (int, error) {
	if !contains(ExportFormats, opts.Format) {
		return 0, entities.NewValidationError("format",
			fmt.Sprintf("invalid format %q (valid: %s)", opts.Format, strings.Join(ExportFormats, ", ")))
	}

	pages, err := h.selectPages(ctx, opts)
	if err != nil {
		return 0, err
	}

	switch opts.Format {
	case "json":
		err = formatJSON(w, pages)
	case "csv":
		err = formatCSV(w, pages)
	case "markdown":
		err = formatMarkdown(w, pages)
	}
	if err != nil {
		return 0, fmt.Errorf("formatting output: %w", err)
	}
	return len(pages), nil
}

func (h *ExportHandler) selectPages(ctx context.Context, opts ExportOptions) ([]entities.Page, error) {
	var pages []entities.Page
	if opts.Scope == nil {
		all, err := h.pages.All(ctx)
		if err != nil {
			return nil, err
		}
		pages = all
	} else {
		visible, _, err := h.pages.List(ctx, *opts.Scope)
		if err != nil {
			return nil, err
		}
		pages = visible
	}

	if opts.Kind == "" {
		return pages, nil
	}
	kind, err := parseKind(opts.Kind)
	if err != nil {
		return nil, err
	}
	filtered := make([]entities.Page, 0, len(pages))
	for _, p := range pages {
		if p.Kind == kind {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func formatJSON(w io.Writer, pages []entities.Page) error {
	records := make([]parsers.RawPage, 0, len(pages))
	for i := range pages {
		records = append(records, parsers.FromPage(&pages[i]))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

func formatCSV(w io.Writer, pages []entities.Page) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(parsers.CSVColumns); err != nil {
		return err
	}

	for i := range pages {
		row, err := parsers.EncodeCSVRecord(&pages[i])
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, pages []entities.Page) error {
	if _, err := fmt.Fprintf(w, "# Exported Pages\n\nTotal: %d pages\n\n", len(pages)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Kind | Name | Canon | Universe | Relations |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|------|-------|----------|-----------|\n"); err != nil {
		return err
	}

	for i := range pages {
		p := &pages[i]
		labels := make([]string, 0, len(p.Relations))
		for _, rel := range graph.Resolve(p.Relations, pages) {
			labels = append(labels, rel.Label())
		}
		canon := "yes"
		if !p.Canonical {
			canon = "no"
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			p.Kind,
			escapeMarkdown(p.Name),
			canon,
			escapeMarkdown(p.Universe),
			escapeMarkdown(strings.Join(labels, ", ")),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
