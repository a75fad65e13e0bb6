package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// InsertBackup stores a snapshot.
func (r *Repository) InsertBackup(ctx context.Context, backup *entities.Backup) error {
	pages := backup.Pages
	if pages == nil {
		pages = []entities.Page{}
	}
	data, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("encoding backup data: %w", err)
	}
	if backup.CreatedAt.IsZero() {
		backup.CreatedAt = timeNow()
	}

	query := `INSERT INTO backups (id, name, data, created_at) VALUES (?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, backup.ID, backup.Name, string(data), backup.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("backup %s: %w", backup.ID, entities.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("inserting backup: %w", err)
	}
	return nil
}

// ListBackups lists backups, newest first. Snapshot data is not loaded.
func (r *Repository) ListBackups(ctx context.Context) ([]entities.Backup, error) {
	query := `SELECT id, name, created_at FROM backups ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying backups: %w", err)
	}
	defer rows.Close()

	result := []entities.Backup{}
	for rows.Next() {
		var b entities.Backup
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning backup: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// FindBackup finds a backup by id, including its snapshot.
func (r *Repository) FindBackup(ctx context.Context, id string) (*entities.Backup, error) {
	query := `SELECT id, name, data, created_at FROM backups WHERE id = ?`
	var b entities.Backup
	var data string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &data, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backup %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning backup: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &b.Pages); err != nil {
		return nil, fmt.Errorf("decoding backup %s: %w", id, err)
	}
	return &b, nil
}

// DeleteBackup deletes a backup by id.
func (r *Repository) DeleteBackup(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting backup: %w", err)
	}
	return checkAffected(res, "backup", id)
}
