package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// InsertComment stores a new comment.
func (r *Repository) InsertComment(ctx context.Context, comment *entities.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = timeNow()
	}
	query := `INSERT INTO comments (id, content, author_id, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.Content,
		nullString(comment.AuthorID),
		comment.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("comment %s: %w", comment.ID, entities.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// ListComments lists comments, newest first.
func (r *Repository) ListComments(ctx context.Context) ([]entities.Comment, error) {
	query := `SELECT id, content, author_id, created_at FROM comments ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	result := []entities.Comment{}
	for rows.Next() {
		var c entities.Comment
		var authorID sql.NullString
		if err := rows.Scan(&c.ID, &c.Content, &authorID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.AuthorID = authorID.String
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteComment deletes a comment by id.
func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return checkAffected(res, "comment", id)
}
