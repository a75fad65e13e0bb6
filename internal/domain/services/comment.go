package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// MaxCommentLength bounds the size of a comment in characters.
const MaxCommentLength = 5000

// CommentService manages the comment board.
type CommentService struct {
	relationalDB ports.RelationalDB
	authorizer   *Authorizer
}

// NewCommentService creates a new CommentService.
func NewCommentService(relationalDB ports.RelationalDB, authorizer *Authorizer) *CommentService {
	return &CommentService{relationalDB: relationalDB, authorizer: authorizer}
}

// List returns every comment, newest first.
func (s *CommentService) List(ctx context.Context) ([]entities.Comment, error) {
	return s.relationalDB.ListComments(ctx)
}

// Post adds a comment by the signed-in user.
func (s *CommentService) Post(ctx context.Context, sess *Session, content string) (*entities.Comment, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermCommentPost)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	err = validation.Validate(content,
		validation.Required.Error("comment cannot be empty"),
		validation.RuneLength(1, MaxCommentLength),
	)
	if err != nil {
		return nil, entities.NewValidationError("content", err.Error())
	}

	comment := &entities.Comment{
		ID:        uuid.New().String(),
		Content:   content,
		AuthorID:  actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.relationalDB.InsertComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionCommentPost, actor.ID, comment.ID, nil)
	return comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, sess *Session, id string) error {
	actor, err := s.authorizer.Authorize(ctx, sess, PermCommentDelete)
	if err != nil {
		return err
	}
	if err := s.relationalDB.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	recordAudit(ctx, s.relationalDB, entities.ActionCommentDelete, actor.ID, id, nil)
	return nil
}
