package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

var exportContentTypes = map[string]string{
	"json":     "application/json",
	"csv":      "text/csv; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
}

var exportExtensions = map[string]string{
	"json":     "json",
	"csv":      "csv",
	"markdown": "md",
}

func (s *Server) search(c *gin.Context) {
	if s.app.Search == nil {
		failure(c, http.StatusServiceUnavailable, CodeSearchDisabled, "semantic search is not enabled", nil)
		return
	}
	scope, ok := s.scope(c)
	if !ok {
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, entities.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	result, err := s.app.Search.Handle(c.Request.Context(), c.Query("q"), scope, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

func (s *Server) reindex(c *gin.Context) {
	if s.app.Search == nil {
		failure(c, http.StatusServiceUnavailable, CodeSearchDisabled, "semantic search is not enabled", nil)
		return
	}
	recreate := false
	if v, ok := c.GetQuery("recreate"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, entities.NewValidationError("recreate", "must be true or false"))
			return
		}
		recreate = b
	}

	result, err := s.app.Search.HandleReindex(c.Request.Context(), sessionFrom(c), recreate)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

// export streams pages as a file. Without universe, all or canonical in
// the query every page is exported.
func (s *Server) export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	opts := handlers.ExportOptions{Format: format, Kind: c.Query("kind")}

	_, hasUniverse := c.GetQuery("universe")
	_, hasAll := c.GetQuery("all")
	_, hasCanonical := c.GetQuery("canonical")
	if hasUniverse || hasAll || hasCanonical {
		scope, ok := s.scope(c)
		if !ok {
			return
		}
		opts.Scope = &scope
	}

	var buf bytes.Buffer
	if _, err := s.app.Export.Handle(c.Request.Context(), &buf, opts); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "watlas-export."+exportExtensions[format]))
	c.Data(http.StatusOK, exportContentTypes[format], buf.Bytes())
}

func (s *Server) importPages(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return
	}

	strategy, err := services.ParseConflictStrategy(c.Query("on_conflict"))
	if err != nil {
		writeError(c, err)
		return
	}
	dryRun := false
	if v := c.Query("dry_run"); v != "" {
		dryRun, err = strconv.ParseBool(v)
		if err != nil {
			writeError(c, entities.NewValidationError("dry_run", "must be true or false"))
			return
		}
	}

	f, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	result, err := s.app.Import.HandleReader(c.Request.Context(), sessionFrom(c), f, header.Filename, handlers.ImportOptions{
		Format:     c.DefaultQuery("format", "auto"),
		DryRun:     dryRun,
		OnConflict: strategy,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}
