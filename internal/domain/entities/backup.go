package entities

import "time"

// BackupNameLayout formats backup names from their creation time.
const BackupNameLayout = "2006-01-02_15-04-05"

// Backup is a stored snapshot of every page.
type Backup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Pages     []Page    `json:"data"`
}

// BackupName returns the name of a backup taken at t.
func BackupName(t time.Time) string {
	return "backup-" + t.Format(BackupNameLayout)
}
