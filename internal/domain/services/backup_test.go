package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
)

func newBackupService(t *testing.T) (*BackupService, *fixture) {
	t.Helper()
	f := newFixture(t)
	importer := NewImportService(f.db, f.authorizer, nil)
	svc := NewBackupService(f.db, f.authorizer, importer)
	svc.now = func() time.Time { return time.Date(2024, 2, 29, 13, 4, 5, 0, time.UTC) }
	return svc, f
}

func TestBackupService_Create(t *testing.T) {
	svc, f := newBackupService(t)
	f.addPage(t, newPage("hero", "Hero", entities.KindCharacter, true, ""))
	f.addPage(t, newPage("y1990", "1990", entities.KindYear, true, ""))

	_, err := svc.Create(context.Background(), f.viewer)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	backup, err := svc.Create(context.Background(), f.editor)
	require.NoError(t, err)
	assert.Equal(t, "backup-2024-02-29_13-04-05", backup.Name)
	assert.Len(t, backup.Pages, 2)
	assert.Contains(t, f.db.Backups, backup.ID)
	assert.Contains(t, f.db.Actions(), entities.ActionBackupCreate)
}

func TestBackupService_ListAndWrite(t *testing.T) {
	svc, f := newBackupService(t)
	ctx := context.Background()
	f.addPage(t, newPage("hero", "Hero", entities.KindCharacter, true, ""))

	backup, err := svc.Create(ctx, f.editor)
	require.NoError(t, err)

	list, err := svc.List(ctx, f.editor)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.List(ctx, nil)
	assert.ErrorIs(t, err, entities.ErrUnauthenticated)

	var buf bytes.Buffer
	_, err = svc.Write(ctx, f.editor, backup.ID, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\n  \"name\": \"backup-2024-02-29_13-04-05\"")

	var decoded entities.Backup
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Pages, 1)
	assert.Equal(t, "hero", decoded.Pages[0].ID)

	_, err = svc.Write(ctx, f.editor, "missing", &buf)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestBackupService_Delete(t *testing.T) {
	svc, f := newBackupService(t)
	ctx := context.Background()

	backup, err := svc.Create(ctx, f.editor)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, f.editor, backup.ID))
	assert.Empty(t, f.db.Backups)
	assert.ErrorIs(t, svc.Delete(ctx, f.editor, backup.ID), entities.ErrNotFound)
}

func TestBackupService_Restore(t *testing.T) {
	svc, f := newBackupService(t)
	ctx := context.Background()
	f.addPage(t, newPage("hero", "Hero", entities.KindCharacter, true, "", "y1990"))
	f.addPage(t, newPage("y1990", "1990", entities.KindYear, true, ""))

	backup, err := svc.Create(ctx, f.editor)
	require.NoError(t, err)

	delete(f.db.Pages, "y1990")
	f.db.Pages["hero"].Name = "Hero (edited)"

	_, err = svc.Restore(ctx, f.editor, backup.ID, ConflictOverwrite)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	result, err := svc.Restore(ctx, f.admin, backup.ID, ConflictSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "Hero (edited)", f.db.Pages["hero"].Name)
	assert.Contains(t, f.db.Pages, "y1990")

	result, err = svc.Restore(ctx, f.admin, backup.ID, ConflictOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, "Hero", f.db.Pages["hero"].Name)
	assert.Equal(t, []string{"y1990"}, f.db.Pages["hero"].Relations)
	assert.Contains(t, f.db.Actions(), entities.ActionBackupRestore)

	_, err = svc.Restore(ctx, f.admin, "missing", ConflictSkip)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
