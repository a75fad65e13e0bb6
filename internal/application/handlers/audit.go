package handlers

import (
	"context"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

// AuditHandler handles the admin history view.
type AuditHandler struct {
	service *services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// AuditResult contains audit entries, newest first.
type AuditResult struct {
	Entries []entities.AuditEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// Handle returns the history of a target or of an action.
func (h *AuditHandler) Handle(ctx context.Context, sess *services.Session, q services.AuditQuery) (*AuditResult, error) {
	entries, err := h.service.History(ctx, sess, q)
	if err != nil {
		return nil, err
	}
	return &AuditResult{Entries: entries, Total: len(entries)}, nil
}
