package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stockx-backend-go/internal/db"
	"stockx-backend-go/internal/models"
)

// User-facing outcomes of the auth gateway.
const (
	SignUpSuccessMessage     = "Account created successfully! Please wait for admin approval before signing in."
	msgPendingApproval       = "Your account is pending admin approval. Please wait for approval before signing in."
	msgRejected              = "Your account has been rejected. Please contact support."
	msgSuspended             = "Your account has been suspended. Please contact support."
	msgUnknownStatus         = "Unknown account status"
	msgApprovalCheckFailed   = "Failed to check approval status"
	msgFederatedEmailMissing = "Your sign-in provider did not share an email address. Please sign up with email instead."
	approvalStatusCheckError = "error"
	approvalStatusUnknown    = "unknown"
)

// Post sign-in destinations.
const (
	RedirectHome  = "/"
	RedirectAdmin = "/admin"
)

type authService struct {
	idp       IdentityProvider
	repo      db.ProfileRepository
	profiles  ProfileService
	notifier  NotificationService
	validator *InputValidator
	logger    *zap.Logger
	opts      serviceOptions
}

// NewAuthService creates the auth gateway.
func NewAuthService(
	idp IdentityProvider,
	repo db.ProfileRepository,
	profiles ProfileService,
	notifier NotificationService,
	validator *InputValidator,
	logger *zap.Logger,
	opts ...Option,
) AuthService {
	return &authService{
		idp:       idp,
		repo:      repo,
		profiles:  profiles,
		notifier:  notifier,
		validator: validator,
		logger:    logger,
		opts:      applyOptions(opts),
	}
}

// SignUp creates the identity account and a pending profile, queues the admin
// notification and ends the new session so the user waits for approval.
func (s *authService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.Profile, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", err
	}
	email := db.NormalizeEmail(req.Email)
	displayName := strings.TrimSpace(req.DisplayName)

	phone := ""
	if strings.TrimSpace(req.PhoneNumber) != "" {
		normalized, err := s.validator.NormalizePhone(req.PhoneNumber)
		if err != nil {
			return nil, "", err
		}
		phone = normalized
	}

	identity, err := s.idp.SignUp(ctx, email, req.Password, displayName)
	if err != nil {
		return nil, "", err
	}

	profile := &models.Profile{
		UID:         identity.UID,
		Email:       email,
		DisplayName: displayName,
		PhoneNumber: phone,
		Role:        models.RoleUser,
		Status:      models.StatusPending,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, "", fmt.Errorf("failed to create profile for new account '%s': %w", identity.UID, err)
	}

	s.queueSignupNotice(ctx, profile)

	if err := s.idp.RevokeSessions(ctx, profile.UID); err != nil {
		s.logger.Warn("Failed to revoke session after signup", zap.String("uid", profile.UID), zap.Error(err))
	}

	return profile, SignUpSuccessMessage, nil
}

// SignIn verifies credentials and admits only approved accounts.
func (s *authService) SignIn(ctx context.Context, req models.SignInRequest) (*SignInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	identity, tokens, err := s.idp.SignIn(ctx, db.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, identity.UID)
	if err != nil {
		s.logger.Warn("Approval check failed during sign-in", zap.String("uid", identity.UID), zap.Error(err))
		s.revoke(ctx, identity.UID)
		return nil, &NotApprovedError{Status: approvalStatusCheckError, Message: msgApprovalCheckFailed}
	}

	if notApproved := approvalError(profile.Status); notApproved != nil {
		s.revoke(ctx, identity.UID)
		return nil, notApproved
	}

	if err := s.repo.RecordLogin(ctx, identity.UID); err != nil {
		s.logger.Warn("Failed to record login", zap.String("uid", identity.UID), zap.Error(err))
	}

	return &SignInResult{Tokens: tokens, Profile: profile, Redirect: redirectFor(profile)}, nil
}

// SignInWithIdentity completes a Google or Apple popup sign-in. An unknown
// uid gets a pending profile, the admins are notified, and the session is
// ended just like SignUp.
func (s *authService) SignInWithIdentity(ctx context.Context, req models.FederatedSignInRequest) (*SignInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	identity, err := s.idp.VerifyIDToken(ctx, strings.TrimSpace(req.IDToken))
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, identity.UID)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return nil, s.registerFederated(ctx, identity)
	case err != nil:
		s.logger.Warn("Approval check failed during federated sign-in", zap.String("uid", identity.UID), zap.Error(err))
		s.revoke(ctx, identity.UID)
		return nil, &NotApprovedError{Status: approvalStatusCheckError, Message: msgApprovalCheckFailed}
	}

	if notApproved := approvalError(profile.Status); notApproved != nil {
		s.revoke(ctx, identity.UID)
		return nil, notApproved
	}
	if err := s.repo.RecordLogin(ctx, identity.UID); err != nil {
		s.logger.Warn("Failed to record login", zap.String("uid", identity.UID), zap.Error(err))
	}
	return &SignInResult{Profile: profile, Redirect: redirectFor(profile)}, nil
}

// registerFederated creates the pending profile for a first federated sign-in.
// It always returns an error: either the failure or the pending-approval refusal.
func (s *authService) registerFederated(ctx context.Context, identity *models.Identity) error {
	email := db.NormalizeEmail(identity.Email)
	if email == "" {
		s.revoke(ctx, identity.UID)
		return newValidationError("email", msgFederatedEmailMissing)
	}
	displayName := strings.TrimSpace(identity.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}
	phone := ""
	if raw := strings.TrimSpace(identity.PhoneNumber); raw != "" {
		normalized, err := s.validator.NormalizePhone(raw)
		if err != nil {
			s.logger.Debug("Dropping unparseable provider phone number", zap.String("uid", identity.UID))
		} else {
			phone = normalized
		}
	}

	profile := &models.Profile{
		UID:         identity.UID,
		Email:       email,
		DisplayName: displayName,
		PhoneNumber: phone,
		Role:        models.RoleUser,
		Status:      models.StatusPending,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		s.revoke(ctx, identity.UID)
		return fmt.Errorf("failed to create profile for federated account '%s': %w", identity.UID, err)
	}
	s.queueSignupNotice(ctx, profile)
	s.revoke(ctx, identity.UID)
	return &NotApprovedError{Status: string(models.StatusPending), Message: SignUpSuccessMessage}
}

func (s *authService) queueSignupNotice(ctx context.Context, profile *models.Profile) {
	if err := s.notifier.Enqueue(ctx, models.NotifyAdminRequest{
		UID:         profile.UID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		PhoneNumber: profile.PhoneNumber,
		Timestamp:   s.opts.now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to queue admin signup notification", zap.String("uid", profile.UID), zap.Error(err))
	}
}

func redirectFor(profile *models.Profile) string {
	if profile.Role.IsAdmin() {
		return RedirectAdmin
	}
	return RedirectHome
}

// approvalError returns nil for approved accounts.
func approvalError(status models.Status) error {
	switch status {
	case models.StatusApproved:
		return nil
	case models.StatusPending:
		return &NotApprovedError{Status: string(status), Message: msgPendingApproval}
	case models.StatusRejected:
		return &NotApprovedError{Status: string(status), Message: msgRejected}
	case models.StatusSuspended:
		return &NotApprovedError{Status: string(status), Message: msgSuspended}
	}
	return &NotApprovedError{Status: approvalStatusUnknown, Message: msgUnknownStatus}
}

func (s *authService) revoke(ctx context.Context, uid string) {
	if err := s.idp.RevokeSessions(ctx, uid); err != nil {
		s.logger.Warn("Failed to revoke session", zap.String("uid", uid), zap.Error(err))
	}
}

// SignOut revokes every refresh token of uid.
func (s *authService) SignOut(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid is required to sign out")
	}
	return s.idp.RevokeSessions(ctx, uid)
}

// SendPasswordReset mails a reset link to the normalized address.
func (s *authService) SendPasswordReset(ctx context.Context, req models.PasswordResetRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	return s.idp.SendPasswordResetEmail(ctx, db.NormalizeEmail(req.Email), req.ContinueURL)
}

// ConfirmPasswordReset sets a new password that passes the strength rule.
func (s *authService) ConfirmPasswordReset(ctx context.Context, req models.ConfirmPasswordResetRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	return s.idp.ConfirmPasswordReset(ctx, strings.TrimSpace(req.OobCode), req.NewPassword)
}
