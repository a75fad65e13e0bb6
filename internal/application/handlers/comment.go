package handlers

import (
	"context"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

// CommentHandler handles the comment board.
type CommentHandler struct {
	service *services.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// CommentListResult contains the comment board.
type CommentListResult struct {
	Comments []entities.Comment `json:"comments"`
	Total    int                `json:"total"`
}

// HandleList returns every comment, newest first.
func (h *CommentHandler) HandleList(ctx context.Context) (*CommentListResult, error) {
	comments, err := h.service.List(ctx)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []entities.Comment{}
	}
	return &CommentListResult{Comments: comments, Total: len(comments)}, nil
}

// HandlePost posts a comment.
func (h *CommentHandler) HandlePost(ctx context.Context, sess *services.Session, content string) (*entities.Comment, error) {
	return h.service.Post(ctx, sess, content)
}

// HandleDelete deletes a comment.
func (h *CommentHandler) HandleDelete(ctx context.Context, sess *services.Session, id string) error {
	return h.service.Delete(ctx, sess, id)
}
