package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) listComments(c *gin.Context) {
	result, err := s.app.Comments.HandleList(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

func (s *Server) postComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	comment, err := s.app.Comments.HandlePost(c.Request.Context(), sessionFrom(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, comment)
}

func (s *Server) deleteComment(c *gin.Context) {
	id := c.Param("id")
	if err := s.app.Comments.HandleDelete(c.Request.Context(), sessionFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"id": id})
}
