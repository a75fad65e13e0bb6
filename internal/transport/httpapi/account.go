package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

type roleRequest struct {
	Role string `json:"role"`
}

func (s *Server) signUp(c *gin.Context) {
	var creds services.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	result, err := s.app.Auth.HandleSignUp(c.Request.Context(), creds)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, result)
}

func (s *Server) signIn(c *gin.Context) {
	var creds services.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	result, err := s.app.Auth.HandleSignIn(c.Request.Context(), creds)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

func (s *Server) signOut(c *gin.Context) {
	if err := s.app.Auth.HandleSignOut(c.Request.Context(), sessionFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, nil)
}

func (s *Server) session(c *gin.Context) {
	sess := sessionFrom(c)
	if sess == nil {
		writeError(c, entities.ErrUnauthenticated)
		return
	}
	success(c, http.StatusOK, sess)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.app.Auth.HandleListUsers(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, users)
}

func (s *Server) setRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	profile, err := s.app.Auth.HandleSetRole(c.Request.Context(), sessionFrom(c), c.Param("id"), req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, profile)
}

// auditLog lists history for ?target=<id> or ?action=<name>.
func (s *Server) auditLog(c *gin.Context) {
	q := services.AuditQuery{TargetID: c.Query("target"), Action: c.Query("action")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, entities.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		q.Limit = n
	}

	result, err := s.app.Audit.Handle(c.Request.Context(), sessionFrom(c), q)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}
