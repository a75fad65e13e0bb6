package handlers

import (
	"github.com/ersonp/watlas/internal/domain/ports"
	"github.com/ersonp/watlas/internal/domain/services"
)

// Ports are the adapters the handlers run on.
type Ports struct {
	RelationalDB ports.RelationalDB
	Tokens       ports.TokenIssuer

	// Images is nil when image storage is not configured.
	Images ports.ImageStore

	// Search is disabled unless both Embedder and VectorDB are set.
	Embedder    ports.Embedder
	VectorDB    ports.VectorDB
	Collections ports.CollectionManager
	VectorSize  uint64
}

// App groups every handler. Search is nil when semantic search is disabled.
type App struct {
	Pages    *PageHandler
	Auth     *AuthHandler
	Comments *CommentHandler
	Backups  *BackupHandler
	Images   *ImageHandler
	Import   *ImportHandler
	Export   *ExportHandler
	Search   *SearchHandler
	Audit    *AuditHandler
}

// NewApp wires services and handlers over the given ports.
func NewApp(p Ports) *App {
	authorizer := services.NewAuthorizer(p.RelationalDB)

	var indexer services.PageIndexer
	var searchHandler *SearchHandler
	if p.Embedder != nil && p.VectorDB != nil {
		searchService := services.NewSearchService(p.RelationalDB, p.Embedder, p.VectorDB, authorizer)
		if p.Collections != nil {
			searchService.WithCollection(p.Collections, p.VectorSize)
		}
		indexer = searchService
		searchHandler = NewSearchHandler(searchService)
	}

	pageService := services.NewPageService(p.RelationalDB, authorizer, indexer)
	importService := services.NewImportService(p.RelationalDB, authorizer, indexer)

	return &App{
		Pages:    NewPageHandler(pageService, services.NewTimelineService(p.RelationalDB)),
		Auth:     NewAuthHandler(services.NewAuthService(p.RelationalDB, p.Tokens, authorizer)),
		Comments: NewCommentHandler(services.NewCommentService(p.RelationalDB, authorizer)),
		Backups:  NewBackupHandler(services.NewBackupService(p.RelationalDB, authorizer, importService)),
		Images:   NewImageHandler(services.NewImageService(p.RelationalDB, p.Images, authorizer)),
		Import:   NewImportHandler(importService),
		Export:   NewExportHandler(pageService),
		Search:   searchHandler,
		Audit:    NewAuditHandler(services.NewAuditService(p.RelationalDB, authorizer)),
	}
}
