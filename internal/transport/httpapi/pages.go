package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/domain/entities"
)

type relateRequest struct {
	Target  string `json:"target"`
	Include *bool  `json:"include,omitempty"` // Defaults to true
}

func (s *Server) listPages(c *gin.Context) {
	scope, ok := s.scope(c)
	if !ok {
		return
	}
	result, err := s.app.Pages.HandleList(c.Request.Context(), scope, c.Query("kind"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

func (s *Server) showPage(c *gin.Context) {
	scope, ok := s.scope(c)
	if !ok {
		return
	}
	detail, err := s.app.Pages.HandleShow(c.Request.Context(), c.Param("id"), c.Param("kind"), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, detail)
}

func (s *Server) createPage(c *gin.Context) {
	var in handlers.PageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	page, err := s.app.Pages.HandleCreate(c.Request.Context(), sessionFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, page)
}

func (s *Server) updatePage(c *gin.Context) {
	var in handlers.PageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	page, err := s.app.Pages.HandleUpdate(c.Request.Context(), sessionFrom(c), c.Param("id"), c.Param("kind"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, page)
}

func (s *Server) deletePage(c *gin.Context) {
	id := c.Param("id")
	if err := s.app.Pages.HandleDelete(c.Request.Context(), sessionFrom(c), id, c.Param("kind")); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"id": id})
}

func (s *Server) relatePage(c *gin.Context) {
	scope, ok := s.scope(c)
	if !ok {
		return
	}
	var req relateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Target == "" {
		writeError(c, entities.NewValidationError("target", "is required"))
		return
	}
	include := req.Include == nil || *req.Include

	page, err := s.app.Pages.HandleRelate(c.Request.Context(), sessionFrom(c), c.Param("id"), c.Param("kind"), req.Target, include, scope)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, page)
}

func (s *Server) uploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "multipart field \"image\" is required")
		return
	}
	f, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	page, err := s.app.Images.HandleUpload(c.Request.Context(), sessionFrom(c), c.Param("id"), c.Param("kind"), header.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, page)
}

func (s *Server) timeline(c *gin.Context) {
	scope, ok := s.scope(c)
	if !ok {
		return
	}
	tl, err := s.app.Pages.HandleTimeline(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, tl)
}

func (s *Server) universes(c *gin.Context) {
	var registered []string
	if s.opts.Universes != nil {
		registered = s.opts.Universes()
	}
	names, err := s.app.Pages.HandleUniverses(c.Request.Context(), registered)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, names)
}

func (s *Server) sectionTitles(c *gin.Context) {
	success(c, http.StatusOK, entities.SectionTitleSuggestions)
}
