package models

import "time"

// Role is the access level stored on a profile.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsAdmin reports whether the role can use the admin dashboard.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Status is the approval state of an account.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

// PackageStatus tracks whether the subscription window is still open.
type PackageStatus string

const (
	PackageActive  PackageStatus = "active"
	PackageExpired PackageStatus = "expired"
)

// Firestore field names used in partial updates.
const (
	FieldEmail            = "email"
	FieldDisplayName      = "displayName"
	FieldPhoneNumber      = "phoneNumber"
	FieldRole             = "role"
	FieldStatus           = "status"
	FieldPackage          = "package"
	FieldPackageStartDate = "packageStartDate"
	FieldPackageEndDate   = "packageEndDate"
	FieldPackageStatus    = "packageStatus"
	FieldCreatedAt        = "createdAt"
	FieldUpdatedAt        = "updatedAt"
	FieldApprovedAt       = "approvedAt"
	FieldApprovedBy       = "approvedBy"
	FieldLastLoginAt      = "metadata.lastLoginAt"
	FieldLoginCount       = "metadata.loginCount"
)

// ProfileMetadata holds sign-in bookkeeping.
type ProfileMetadata struct {
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" firestore:"lastLoginAt,omitempty"`
	LoginCount  int64      `json:"loginCount" firestore:"loginCount"`
}

// Profile is the per-account document stored under users/{uid}.
type Profile struct {
	UID              string          `json:"uid" firestore:"uid"` // Identity provider UID, also the document ID
	Email            string          `json:"email" firestore:"email"`
	DisplayName      string          `json:"displayName" firestore:"displayName"`
	PhoneNumber      string          `json:"phoneNumber,omitempty" firestore:"phoneNumber"`
	Role             Role            `json:"role" firestore:"role"`
	Status           Status          `json:"status" firestore:"status"`
	Package          string          `json:"package,omitempty" firestore:"package,omitempty"`
	PackageStartDate *time.Time      `json:"packageStartDate,omitempty" firestore:"packageStartDate,omitempty"`
	PackageEndDate   *time.Time      `json:"packageEndDate,omitempty" firestore:"packageEndDate,omitempty"`
	PackageStatus    PackageStatus   `json:"packageStatus,omitempty" firestore:"packageStatus,omitempty"`
	CreatedAt        time.Time       `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt        time.Time       `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
	ApprovedAt       *time.Time      `json:"approvedAt,omitempty" firestore:"approvedAt,omitempty"`
	ApprovedBy       string          `json:"approvedBy,omitempty" firestore:"approvedBy,omitempty"`
	Metadata         ProfileMetadata `json:"metadata" firestore:"metadata"`
}

// Identity is the authenticated principal as seen by the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}
