package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// recordAudit writes an audit entry. A failed write is logged and does not
// fail the operation it describes.
func recordAudit(ctx context.Context, db ports.RelationalDB, action, actorID, targetID string, details map[string]any) {
	entry := entities.AuditEntry{
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.LogAction(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", action).Str("target", targetID).Msg("audit write failed")
	}
}

// DefaultAuditLimit caps a history listing when no limit is given.
const DefaultAuditLimit = 50

// AuditQuery selects audit history, either about one target (a page,
// comment, backup or user id) or for one action.
type AuditQuery struct {
	TargetID string
	Action   string
	Limit    int
}

// AuditService reads the audit log.
type AuditService struct {
	relationalDB ports.RelationalDB
	authorizer   *Authorizer
}

// NewAuditService creates a new AuditService.
func NewAuditService(relationalDB ports.RelationalDB, authorizer *Authorizer) *AuditService {
	return &AuditService{
		relationalDB: relationalDB,
		authorizer:   authorizer,
	}
}

// History returns matching audit entries, newest first.
func (s *AuditService) History(ctx context.Context, sess *Session, q AuditQuery) ([]entities.AuditEntry, error) {
	if _, err := s.authorizer.Authorize(ctx, sess, PermAuditRead); err != nil {
		return nil, err
	}

	q.TargetID = strings.TrimSpace(q.TargetID)
	q.Action = strings.TrimSpace(q.Action)
	switch {
	case q.TargetID == "" && q.Action == "":
		return nil, entities.NewValidationError("target", "a target or an action is required")
	case q.TargetID != "" && q.Action != "":
		return nil, entities.NewValidationError("action", "cannot be combined with a target")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultAuditLimit
	}

	var (
		entries []entities.AuditEntry
		err     error
	)
	if q.TargetID != "" {
		entries, err = s.relationalDB.FindAuditLog(ctx, q.TargetID)
		if len(entries) > q.Limit {
			entries = entries[:q.Limit]
		}
	} else {
		entries, err = s.relationalDB.FindAuditLogByAction(ctx, q.Action, q.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	if entries == nil {
		entries = []entities.AuditEntry{}
	}
	return entries, nil
}
