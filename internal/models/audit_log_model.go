package models

import "time"

// Audit actions written by the admin workflow.
const (
	AuditActionApprove       = "USER_APPROVE"
	AuditActionReject        = "USER_REJECT"
	AuditActionSuspend       = "USER_SUSPEND"
	AuditActionEdit          = "USER_EDIT"
	AuditActionDelete        = "USER_DELETE"
	AuditActionExpireSuspend = "USER_PACKAGE_EXPIRED"

	AuditTargetUser = "USER"

	// AuditActorSystem marks entries written without an acting admin.
	AuditActorSystem = "system"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // Who performed the action
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
