package entities

import "time"

// Audited actions.
const (
	ActionPageCreate    = "page.create"
	ActionPageUpdate    = "page.update"
	ActionPageDelete    = "page.delete"
	ActionPageRelate    = "page.relate"
	ActionPageImage     = "page.image"
	ActionPageImport    = "page.import"
	ActionCommentPost   = "comment.post"
	ActionCommentDelete = "comment.delete"
	ActionBackupCreate  = "backup.create"
	ActionBackupDelete  = "backup.delete"
	ActionBackupRestore = "backup.restore"
	ActionUserSignUp    = "user.signup"
	ActionUserSignOut   = "user.signout"
	ActionUserRole      = "user.role"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actor_id,omitempty"`
	TargetID  string         `json:"target_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
