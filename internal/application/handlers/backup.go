package handlers

import (
	"context"
	"io"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

// BackupHandler handles page snapshots.
type BackupHandler struct {
	service *services.BackupService
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(service *services.BackupService) *BackupHandler {
	return &BackupHandler{service: service}
}

// BackupInfo is a backup without its pages.
type BackupInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Pages     int    `json:"pages,omitempty"`
}

func backupInfo(b *entities.Backup) BackupInfo {
	return BackupInfo{
		ID:        b.ID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Pages:     len(b.Pages),
	}
}

// HandleCreate snapshots every page.
func (h *BackupHandler) HandleCreate(ctx context.Context, sess *services.Session) (*BackupInfo, error) {
	backup, err := h.service.Create(ctx, sess)
	if err != nil {
		return nil, err
	}
	info := backupInfo(backup)
	return &info, nil
}

// HandleList lists backups, newest first.
func (h *BackupHandler) HandleList(ctx context.Context, sess *services.Session) ([]BackupInfo, error) {
	backups, err := h.service.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	infos := make([]BackupInfo, len(backups))
	for i := range backups {
		infos[i] = backupInfo(&backups[i])
	}
	return infos, nil
}

// HandleDownload writes the backup as indented JSON to w.
func (h *BackupHandler) HandleDownload(ctx context.Context, sess *services.Session, id string, w io.Writer) (*BackupInfo, error) {
	backup, err := h.service.Write(ctx, sess, id, w)
	if err != nil {
		return nil, err
	}
	info := backupInfo(backup)
	return &info, nil
}

// HandleDelete deletes a backup.
func (h *BackupHandler) HandleDelete(ctx context.Context, sess *services.Session, id string) error {
	return h.service.Delete(ctx, sess, id)
}

// HandleRestore loads a backup into the store. onConflict is "skip" or
// "overwrite"; empty means skip.
func (h *BackupHandler) HandleRestore(ctx context.Context, sess *services.Session, id, onConflict string) (*services.ImportResult, error) {
	strategy, err := services.ParseConflictStrategy(onConflict)
	if err != nil {
		return nil, err
	}
	return h.service.Restore(ctx, sess, id, strategy)
}
