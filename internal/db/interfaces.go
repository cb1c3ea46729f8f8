package db

import (
	"context"

	"stockx-backend-go/internal/models"
)

// ProfileRepository defines storage operations for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, uid string) (*models.Profile, error)
	// Update writes only the given fields and always stamps updatedAt.
	Update(ctx context.Context, uid string, fields map[string]interface{}) error
	Delete(ctx context.Context, uid string) error
	List(ctx context.Context) ([]*models.Profile, error)
	ListByRoles(ctx context.Context, roles ...models.Role) ([]*models.Profile, error)
	// RecordLogin increments the login counter and stamps the last login time.
	RecordLogin(ctx context.Context, uid string) error
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
