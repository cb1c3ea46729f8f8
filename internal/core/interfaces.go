// Package core holds the account services: the auth gateway, profile reads
// with package expiry, the admin dashboard actions and signup notifications.
package core

import (
	"context"
	"time"

	"stockx-backend-go/internal/models"
	"stockx-backend-go/pkg/mailer"
)

// AuthTokens are the credentials returned after a password sign-in.
type AuthTokens struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// IdentityProvider is the external account store. Failures are reported as *ProviderError.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, *AuthTokens, error)
	VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error)
	RevokeSessions(ctx context.Context, uid string) error
	DeleteAccount(ctx context.Context, uid string) error
	SendPasswordResetEmail(ctx context.Context, email, continueURL string) error
	ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error
}

// ProfileService reads profiles with the package expiry rule applied.
type ProfileService interface {
	// Get loads the profile and runs CheckAndHandleExpiry before returning it.
	Get(ctx context.Context, uid string) (*models.Profile, error)
	// CheckAndHandleExpiry suspends an approved user whose package has ended.
	// It reports expired=true even if persisting the suspension failed.
	CheckAndHandleExpiry(ctx context.Context, profile *models.Profile) bool
	Remaining(profile *models.Profile) string
}

// SignInResult is returned by a successful sign-in. Tokens is nil for a
// federated sign-in, where the client already holds them.
type SignInResult struct {
	Tokens   *AuthTokens     `json:"tokens"`
	Profile  *models.Profile `json:"profile"`
	Redirect string          `json:"redirect"`
}

// AuthService is the auth gateway for password and federated accounts.
type AuthService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.Profile, string, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*SignInResult, error)
	// SignInWithIdentity admits a Google or Apple account by its ID token. The
	// first sign-in creates a pending profile and is refused like a new signup.
	SignInWithIdentity(ctx context.Context, req models.FederatedSignInRequest) (*SignInResult, error)
	SignOut(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, req models.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req models.ConfirmPasswordResetRequest) error
}

// UserStats are counts over every profile, independent of the current filter.
type UserStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Suspended int `json:"suspended"`
}

// UserPage is one page of the admin listing.
type UserPage struct {
	Users      []*models.Profile `json:"users"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	Stats      UserStats         `json:"stats"`
}

// AdminService holds the admin dashboard actions.
type AdminService interface {
	List(ctx context.Context, filter models.ListUsersFilter) (*UserPage, error)
	Approve(ctx context.Context, actor *models.Profile, uid, pkg string) (*models.Profile, error)
	Reject(ctx context.Context, actor *models.Profile, uid string) (*models.Profile, error)
	Suspend(ctx context.Context, actor *models.Profile, uid string) (*models.Profile, error)
	Delete(ctx context.Context, actor *models.Profile, uid string) error
	Edit(ctx context.Context, actor *models.Profile, uid string, req models.EditProfileRequest) (*models.Profile, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// NotifyResult is the outcome of a notification send.
type NotifyResult struct {
	Recipients int    `json:"-"`
	Message    string `json:"message"`
}

// NotificationService delivers the admin signup notification.
type NotificationService interface {
	// Enqueue schedules a notification and returns without waiting for delivery.
	Enqueue(ctx context.Context, req models.NotifyAdminRequest) error
	// NotifyAdmins renders and sends the notification synchronously.
	NotifyAdmins(ctx context.Context, req models.NotifyAdminRequest) (*NotifyResult, error)
	// RunWorker consumes queued notifications until ctx is done.
	RunWorker(ctx context.Context) error
	// InvalidateAdminEmails drops the cached recipient list.
	InvalidateAdminEmails(ctx context.Context)
}

// Mailer sends a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Option customizes core services.
type Option func(*serviceOptions)

type serviceOptions struct {
	now func() time.Time
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.now = clock
		}
	}
}

func applyOptions(opts []Option) serviceOptions {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
