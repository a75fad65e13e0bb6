// Package httpapi serves the wiki over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/infrastructure/filestore/local"
)

// Options configures the server.
type Options struct {
	Addr            string
	Mode            string // gin mode: debug, release, test
	ShutdownTimeout time.Duration

	// DefaultScope applies when a request names no universe.
	DefaultScope graph.Scope

	// Universes returns the registered universe names. May be nil.
	Universes func() []string

	// ImagesDir is served under /images when set.
	ImagesDir string
}

// Server is the HTTP API server.
type Server struct {
	app    *handlers.App
	opts   Options
	engine *gin.Engine
}

// NewServer builds the router over app.
func NewServer(app *handlers.App, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{app: app, opts: opts}
	s.engine = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(recovery(), requestLogger())

	if s.opts.ImagesDir != "" {
		router.Static(local.DefaultURLPrefix, s.opts.ImagesDir)
	}

	v1 := router.Group("/api/v1")
	v1.Use(authenticate(s.app.Auth))
	{
		v1.GET("/health", s.health)

		auth := v1.Group("/auth")
		{
			auth.POST("/signup", s.signUp)
			auth.POST("/signin", s.signIn)
			auth.POST("/signout", s.signOut)
			auth.GET("/session", s.session)
		}

		pages := v1.Group("/pages")
		{
			pages.GET("", s.listPages)
			pages.POST("", s.createPage)
			pages.GET("/:kind/:id", s.showPage)
			pages.PUT("/:kind/:id", s.updatePage)
			pages.DELETE("/:kind/:id", s.deletePage)
			pages.POST("/:kind/:id/relations", s.relatePage)
			pages.POST("/:kind/:id/image", s.uploadImage)
		}

		v1.GET("/timeline", s.timeline)
		v1.GET("/universes", s.universes)
		v1.GET("/section-titles", s.sectionTitles)

		comments := v1.Group("/comments")
		{
			comments.GET("", s.listComments)
			comments.POST("", s.postComment)
			comments.DELETE("/:id", s.deleteComment)
		}

		backups := v1.Group("/backups")
		{
			backups.GET("", s.listBackups)
			backups.POST("", s.createBackup)
			backups.GET("/:id/download", s.downloadBackup)
			backups.DELETE("/:id", s.deleteBackup)
			backups.POST("/:id/restore", s.restoreBackup)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/users", s.listUsers)
			admin.PUT("/users/:id/role", s.setRole)
			admin.GET("/audit", s.auditLog)
		}

		v1.GET("/export", s.export)
		v1.POST("/import", s.importPages)

		v1.GET("/search", s.search)
		v1.POST("/search/reindex", s.reindex)
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()
	pages, err := s.app.Pages.HandleCount(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	data := gin.H{
		"status": "ok",
		"search": s.app.Search != nil,
		"pages":  pages,
	}
	if s.app.Search != nil {
		indexed, err := s.app.Search.HandleCount(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("counting indexed pages failed")
			data["status"] = "degraded"
		} else {
			data["indexed"] = indexed
		}
	}
	success(c, http.StatusOK, data)
}

// scope reads canonical, universe and all from the query string, falling
// back to the default scope for anything absent.
func (s *Server) scope(c *gin.Context) (graph.Scope, bool) {
	scope := s.opts.DefaultScope

	if v, ok := c.GetQuery("canonical"); ok {
		canonical, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, entities.NewValidationError("canonical", "must be true or false"))
			return graph.Scope{}, false
		}
		scope.Canonical = canonical
	}

	all := false
	if v, ok := c.GetQuery("all"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, entities.NewValidationError("all", "must be true or false"))
			return graph.Scope{}, false
		}
		all = b
	}

	switch {
	case all:
		scope = graph.NewScope(scope.Canonical, graph.AllUniverses)
	default:
		if u, ok := c.GetQuery("universe"); ok {
			scope = graph.NewScope(scope.Canonical, u)
		}
	}
	return scope, true
}
