package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"stockx-backend-go/internal/models"
)

const auditLogsCollection = "audit_logs"

type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates an AuditRepository backed by the audit_logs collection.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

// Create stores the entry. A random ID is assigned when the entry has none.
func (r *firestoreAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	if logEntry.ID == "" {
		logEntry.ID = uuid.NewString()
	}
	if _, err := r.client.Collection(auditLogsCollection).Doc(logEntry.ID).Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log '%s': %w", logEntry.ID, err)
	}
	return nil
}
