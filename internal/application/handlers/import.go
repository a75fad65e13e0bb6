package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
	"github.com/ersonp/watlas/internal/infrastructure/parsers"
)

// ImportHandler handles importing pages from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string                    // "json", "csv", or "auto"
	DryRun     bool                      // Validate without saving
	OnConflict services.ConflictStrategy // How to handle existing pages
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Total    int                    `json:"total"`
	Imported int                    `json:"imported"`
	Skipped  int                    `json:"skipped"`
	Migrated int                    `json:"migrated"`
	DryRun   bool                   `json:"dry_run,omitempty"`
	Errors   []services.ImportError `json:"errors,omitempty"`
}

// Handle imports pages from a file.
func (h *ImportHandler) Handle(ctx context.Context, sess *services.Session, filePath string, opts ImportOptions) (*ImportResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return h.HandleReader(ctx, sess, file, filePath, opts)
}

// HandleReader imports pages from r. With format "auto" or empty, the
// parser is chosen from the filename extension.
func (h *ImportHandler) HandleReader(ctx context.Context, sess *services.Session, r io.Reader, filename string, opts ImportOptions) (*ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filename)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, entities.NewValidationError("file", fmt.Sprintf("unsupported format for file: %s", filename))
	}

	rawPages, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w: %w", entities.ErrValidation, err)
	}

	serviceOpts := services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
	}

	serviceResult, err := h.service.Import(ctx, sess, rawPages, serviceOpts)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Total:    len(rawPages),
		Imported: serviceResult.Imported,
		Skipped:  serviceResult.Skipped,
		Migrated: serviceResult.Migrated,
		DryRun:   opts.DryRun,
		Errors:   serviceResult.Errors,
	}, nil
}
