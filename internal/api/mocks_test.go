package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/models"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.Profile, string, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.String(1), args.Error(2)
}

func (m *MockAuthService) SignIn(ctx context.Context, req models.SignInRequest) (*core.SignInResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*core.SignInResult)
	return r, args.Error(1)
}

func (m *MockAuthService) SignInWithIdentity(ctx context.Context, req models.FederatedSignInRequest) (*core.SignInResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*core.SignInResult)
	return r, args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockAuthService) SendPasswordReset(ctx context.Context, req models.PasswordResetRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, req models.ConfirmPasswordResetRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockProfileService struct{ mock.Mock }

func (m *MockProfileService) Get(ctx context.Context, uid string) (*models.Profile, error) {
	args := m.Called(ctx, uid)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockProfileService) CheckAndHandleExpiry(ctx context.Context, profile *models.Profile) bool {
	return m.Called(ctx, profile).Bool(0)
}

func (m *MockProfileService) Remaining(profile *models.Profile) string {
	return m.Called(profile).String(0)
}

type MockAdminService struct{ mock.Mock }

func (m *MockAdminService) List(ctx context.Context, filter models.ListUsersFilter) (*core.UserPage, error) {
	args := m.Called(ctx, filter)
	p, _ := args.Get(0).(*core.UserPage)
	return p, args.Error(1)
}

func (m *MockAdminService) Approve(ctx context.Context, actor *models.Profile, uid, pkg string) (*models.Profile, error) {
	args := m.Called(ctx, actor, uid, pkg)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockAdminService) Reject(ctx context.Context, actor *models.Profile, uid string) (*models.Profile, error) {
	args := m.Called(ctx, actor, uid)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockAdminService) Suspend(ctx context.Context, actor *models.Profile, uid string) (*models.Profile, error) {
	args := m.Called(ctx, actor, uid)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockAdminService) Delete(ctx context.Context, actor *models.Profile, uid string) error {
	return m.Called(ctx, actor, uid).Error(0)
}

func (m *MockAdminService) Edit(ctx context.Context, actor *models.Profile, uid string, req models.EditProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, actor, uid, req)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) Enqueue(ctx context.Context, req models.NotifyAdminRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockNotificationService) NotifyAdmins(ctx context.Context, req models.NotifyAdminRequest) (*core.NotifyResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*core.NotifyResult)
	return r, args.Error(1)
}

func (m *MockNotificationService) RunWorker(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNotificationService) InvalidateAdminEmails(ctx context.Context) {
	m.Called(ctx)
}

// stubVerifier maps bearer tokens to identities.
type stubVerifier map[string]*models.Identity

func (s stubVerifier) VerifyIDToken(_ context.Context, token string) (*models.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, &core.ProviderError{Code: core.CodeInvalidIDToken}
}
