package core

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stockx-backend-go/internal/models"
	"stockx-backend-go/pkg/mailer"
	"stockx-backend-go/pkg/messagequeue"
)

// MockProfileRepository is a mock implementation of db.ProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, uid string) (*models.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, uid string, fields map[string]interface{}) error {
	args := m.Called(ctx, uid, fields)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListByRoles(ctx context.Context, roles ...models.Role) ([]*models.Profile, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) RecordLogin(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of db.AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	args := m.Called(ctx, logEntry)
	return args.Error(0)
}

// MockAuditService is a mock implementation of AuditService.
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	args := m.Called(ctx, logEntry)
	return args.Error(0)
}

// MockIdentityProvider is a mock implementation of IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password, displayName string) (*models.Identity, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, *AuthTokens, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Identity), args.Get(1).(*AuthTokens), args.Error(2)
}

func (m *MockIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockIdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockIdentityProvider) DeleteAccount(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockIdentityProvider) SendPasswordResetEmail(ctx context.Context, email, continueURL string) error {
	args := m.Called(ctx, email, continueURL)
	return args.Error(0)
}

func (m *MockIdentityProvider) ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error {
	args := m.Called(ctx, oobCode, newPassword)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of NotificationService.
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Enqueue(ctx context.Context, req models.NotifyAdminRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockNotificationService) NotifyAdmins(ctx context.Context, req models.NotifyAdminRequest) (*NotifyResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NotifyResult), args.Error(1)
}

func (m *MockNotificationService) RunWorker(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockNotificationService) InvalidateAdminEmails(ctx context.Context) {
	m.Called(ctx)
}

// MockMailer is a mock implementation of Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockMessageQueue is a mock implementation of messagequeue.MessageQueue.
type MockMessageQueue struct {
	mock.Mock
}

func (m *MockMessageQueue) Publish(ctx context.Context, topic string, body []byte) error {
	args := m.Called(ctx, topic, body)
	return args.Error(0)
}

func (m *MockMessageQueue) Consume(ctx context.Context, topic string, handler messagequeue.Handler) error {
	args := m.Called(ctx, topic, handler)
	return args.Error(0)
}

func (m *MockMessageQueue) Close() error {
	args := m.Called()
	return args.Error(0)
}
