package models

import "time"

// SignUpRequest is the payload for creating an account.
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strongpassword"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
}

// SignInRequest is the payload for password sign-in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FederatedSignInRequest carries the ID token from a Google or Apple popup sign-in.
type FederatedSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// PasswordResetRequest asks the identity provider to mail a reset link.
type PasswordResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ContinueURL string `json:"continueUrl,omitempty" validate:"omitempty,url"`
}

// ConfirmPasswordResetRequest completes a reset with the emailed code.
type ConfirmPasswordResetRequest struct {
	OobCode     string `json:"oobCode" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

// ApproveRequest carries the package assigned on approval. Empty is allowed for admin targets.
type ApproveRequest struct {
	Package string `json:"package,omitempty"`
}

// EditProfileRequest is a partial update from the admin edit dialog.
// Nil fields are left untouched.
type EditProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Role        *Role   `json:"role,omitempty" validate:"omitempty,oneof=user admin superadmin"`
	Status      *Status `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected suspended"`
	Package     *string `json:"package,omitempty"`
}

// ListUsersFilter drives the admin user listing.
type ListUsersFilter struct {
	Status string // "all" or a Status value
	Search string
	Page   int
}

// NotifyAdminRequest is the signup notification task, also accepted over HTTP.
type NotifyAdminRequest struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	AdminEmails []string  `json:"adminEmails,omitempty"`
}

// DeleteUserRequest is the body of the delete relay endpoint.
type DeleteUserRequest struct {
	UID      string `json:"uid"`
	AdminUID string `json:"adminUid"`
}
