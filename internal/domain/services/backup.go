package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
	"github.com/ersonp/watlas/internal/infrastructure/parsers"
)

// BackupService snapshots the page collection and restores snapshots.
type BackupService struct {
	relationalDB ports.RelationalDB
	authorizer   *Authorizer
	importer     *ImportService
	now          func() time.Time
}

// NewBackupService creates a new BackupService.
func NewBackupService(relationalDB ports.RelationalDB, authorizer *Authorizer, importer *ImportService) *BackupService {
	return &BackupService{
		relationalDB: relationalDB,
		authorizer:   authorizer,
		importer:     importer,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a snapshot of every page.
func (s *BackupService) Create(ctx context.Context, sess *Session) (*entities.Backup, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermBackupCreate)
	if err != nil {
		return nil, err
	}

	pages, err := s.relationalDB.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	now := s.now()
	backup := &entities.Backup{
		ID:        uuid.New().String(),
		Name:      entities.BackupName(now),
		CreatedAt: now,
		Pages:     pages,
	}
	if err := s.relationalDB.InsertBackup(ctx, backup); err != nil {
		return nil, fmt.Errorf("saving backup: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionBackupCreate, actor.ID, backup.ID, map[string]any{
		"name":  backup.Name,
		"pages": len(pages),
	})
	return backup, nil
}

// List returns every backup, newest first.
func (s *BackupService) List(ctx context.Context, sess *Session) ([]entities.Backup, error) {
	if _, err := s.authorizer.Authorize(ctx, sess, PermBackupList); err != nil {
		return nil, err
	}
	return s.relationalDB.ListBackups(ctx)
}

// Get returns a backup with its pages.
func (s *BackupService) Get(ctx context.Context, sess *Session, id string) (*entities.Backup, error) {
	if _, err := s.authorizer.Authorize(ctx, sess, PermBackupRead); err != nil {
		return nil, err
	}
	return s.relationalDB.FindBackup(ctx, id)
}

// Write encodes a backup as indented JSON.
func (s *BackupService) Write(ctx context.Context, sess *Session, id string, w io.Writer) (*entities.Backup, error) {
	backup, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}
	return backup, nil
}

// Delete removes a backup.
func (s *BackupService) Delete(ctx context.Context, sess *Session, id string) error {
	actor, err := s.authorizer.Authorize(ctx, sess, PermBackupDelete)
	if err != nil {
		return err
	}
	if err := s.relationalDB.DeleteBackup(ctx, id); err != nil {
		return fmt.Errorf("deleting backup: %w", err)
	}
	recordAudit(ctx, s.relationalDB, entities.ActionBackupDelete, actor.ID, id, nil)
	return nil
}

// Restore loads the pages of a backup back into the store.
func (s *BackupService) Restore(ctx context.Context, sess *Session, id string, onConflict ConflictStrategy) (*ImportResult, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermBackupRestore)
	if err != nil {
		return nil, err
	}
	backup, err := s.relationalDB.FindBackup(ctx, id)
	if err != nil {
		return nil, err
	}

	raws := make([]parsers.RawPage, len(backup.Pages))
	for i := range backup.Pages {
		raws[i] = parsers.FromPage(&backup.Pages[i])
		raws[i].LineNum = i + 1
	}

	result, err := s.importer.load(ctx, raws, ImportOptions{OnConflict: onConflict})
	if err != nil {
		return nil, fmt.Errorf("restoring backup: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionBackupRestore, actor.ID, backup.ID, map[string]any{
		"name":     backup.Name,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
	return result, nil
}
