package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stockx-backend-go/internal/db"
	"stockx-backend-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// CreateAuditLog stores a new audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return fmt.Errorf("AuditRepository not initialized in AuditService")
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an entry and only logs on failure. Audit trouble never fails the action.
func recordAudit(ctx context.Context, audit AuditService, logger *zap.Logger, actorUID, action, targetUID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	entry := models.AuditLog{
		UserID:     actorUID,
		Action:     action,
		TargetType: models.AuditTargetUser,
		TargetID:   targetUID,
		Details:    details,
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("targetId", targetUID),
			zap.Error(err),
		)
	}
}
