// Package identity adapts Firebase Authentication to core.IdentityProvider.
//
// Password flows (sign-up, sign-in, reset) go through the Identity Toolkit
// REST API with the project's web API key; privileged operations (token
// verification, session revocation, account deletion) use the Admin SDK.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/models"
)

const passwordResetRequest = "PASSWORD_RESET"

// relyingParty is the subset of the Identity Toolkit API used here.
type relyingParty interface {
	signUp(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest) (*identitytoolkit.SignupNewUserResponse, error)
	verifyPassword(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest) (*identitytoolkit.VerifyPasswordResponse, error)
	sendOobCode(ctx context.Context, req *identitytoolkit.Relyingparty) error
	resetPassword(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyResetPasswordRequest) error
}

// adminAuth is the subset of the Admin SDK auth client used here.
type adminAuth interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
}

type toolkitClient struct {
	rp *identitytoolkit.RelyingpartyService
}

func (t toolkitClient) signUp(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest) (*identitytoolkit.SignupNewUserResponse, error) {
	return t.rp.SignupNewUser(req).Context(ctx).Do()
}

func (t toolkitClient) verifyPassword(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest) (*identitytoolkit.VerifyPasswordResponse, error) {
	return t.rp.VerifyPassword(req).Context(ctx).Do()
}

func (t toolkitClient) sendOobCode(ctx context.Context, req *identitytoolkit.Relyingparty) error {
	_, err := t.rp.GetOobConfirmationCode(req).Context(ctx).Do()
	return err
}

func (t toolkitClient) resetPassword(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyResetPasswordRequest) error {
	_, err := t.rp.ResetPassword(req).Context(ctx).Do()
	return err
}

// FirebaseProvider implements core.IdentityProvider.
type FirebaseProvider struct {
	toolkit relyingParty
	admin   adminAuth
	logger  *zap.Logger
}

// NewFirebaseProvider builds the Identity Toolkit client from apiKey and pairs it
// with the Admin SDK auth client.
func NewFirebaseProvider(ctx context.Context, apiKey string, authClient *auth.Client, logger *zap.Logger) (*FirebaseProvider, error) {
	if authClient == nil {
		return nil, errors.New("identity: auth client is nil")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	return &FirebaseProvider{
		toolkit: toolkitClient{rp: svc.Relyingparty},
		admin:   authClient,
		logger:  logger,
	}, nil
}

var _ core.IdentityProvider = (*FirebaseProvider)(nil)

// SignUp creates an email/password account with the given display name.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (*models.Identity, error) {
	resp, err := p.toolkit.signUp(ctx, &identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &models.Identity{UID: resp.LocalId, Email: resp.Email, DisplayName: displayName}, nil
}

// SignIn checks the password and returns the account with fresh ID and
// refresh tokens.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, *core.AuthTokens, error) {
	resp, err := p.toolkit.verifyPassword(ctx, &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, nil, mapError(err)
	}
	id := &models.Identity{UID: resp.LocalId, Email: resp.Email, DisplayName: resp.DisplayName}
	return id, &core.AuthTokens{IDToken: resp.IdToken, RefreshToken: resp.RefreshToken}, nil
}

// VerifyIDToken validates idToken, rejecting revoked sessions, and reads the
// email, name and phone_number claims. Any failure is auth/invalid-id-token.
func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error) {
	token, err := p.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, &core.ProviderError{Code: core.CodeInvalidIDToken, Message: "invalid or expired token", Err: err}
	}
	id := &models.Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	if phone, ok := token.Claims["phone_number"].(string); ok {
		id.PhoneNumber = phone
	}
	return id, nil
}

// RevokeSessions invalidates every refresh token of uid. Issued ID tokens stop
// verifying once revocation is checked.
func (p *FirebaseProvider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return mapAdminError(err)
	}
	return nil
}

// DeleteAccount removes the auth account. A missing account maps to auth/user-not-found.
func (p *FirebaseProvider) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.admin.DeleteUser(ctx, uid); err != nil {
		return mapAdminError(err)
	}
	return nil
}

// SendPasswordResetEmail mails a reset link. With continueURL set, the link
// returns the user to the app after the reset.
func (p *FirebaseProvider) SendPasswordResetEmail(ctx context.Context, email, continueURL string) error {
	req := &identitytoolkit.Relyingparty{
		RequestType: passwordResetRequest,
		Email:       email,
	}
	if continueURL != "" {
		req.ContinueUrl = continueURL
		req.CanHandleCodeInApp = true
	}
	if err := p.toolkit.sendOobCode(ctx, req); err != nil {
		return mapError(err)
	}
	return nil
}

// ConfirmPasswordReset applies newPassword using the emailed oobCode.
func (p *FirebaseProvider) ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error {
	err := p.toolkit.resetPassword(ctx, &identitytoolkit.IdentitytoolkitRelyingpartyResetPasswordRequest{
		OobCode:     oobCode,
		NewPassword: newPassword,
	})
	if err != nil {
		return mapError(err)
	}
	return nil
}

// restCodes maps Identity Toolkit error messages to auth/* codes.
var restCodes = map[string]string{
	"EMAIL_EXISTS":                core.CodeEmailAlreadyInUse,
	"INVALID_EMAIL":               core.CodeInvalidEmail,
	"OPERATION_NOT_ALLOWED":       core.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     core.CodeOperationNotAllowed,
	"WEAK_PASSWORD":               core.CodeWeakPassword,
	"USER_DISABLED":               core.CodeUserDisabled,
	"EMAIL_NOT_FOUND":             core.CodeUserNotFound,
	"USER_NOT_FOUND":              core.CodeUserNotFound,
	"INVALID_PASSWORD":            core.CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   core.CodeInvalidCredential,
	"TOO_MANY_ATTEMPTS_TRY_LATER": core.CodeTooManyRequests,
	"EXPIRED_OOB_CODE":            core.CodeExpiredActionCode,
	"INVALID_OOB_CODE":            core.CodeInvalidActionCode,
}

// mapError converts an Identity Toolkit failure into a *core.ProviderError.
// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
func mapError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &core.ProviderError{Code: core.CodeNetworkRequestFailed, Message: netErr.Error(), Err: err}
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &core.ProviderError{Code: core.CodeInternalProviderError, Err: err}
	}
	reason, detail, _ := strings.Cut(gerr.Message, ":")
	reason = strings.TrimSpace(reason)
	code, ok := restCodes[reason]
	if !ok {
		code = core.CodeInternalProviderError
	}
	msg := strings.TrimSpace(detail)
	if msg == "" {
		msg = reason
	}
	return &core.ProviderError{Code: code, Message: msg, Err: err}
}

// mapAdminError converts an Admin SDK failure into a *core.ProviderError.
func mapAdminError(err error) error {
	if auth.IsUserNotFound(err) {
		return &core.ProviderError{Code: core.CodeUserNotFound, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &core.ProviderError{Code: core.CodeNetworkRequestFailed, Message: netErr.Error(), Err: err}
	}
	return &core.ProviderError{Code: core.CodeInternalProviderError, Message: err.Error(), Err: err}
}
