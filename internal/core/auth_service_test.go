package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockx-backend-go/internal/db"
	"stockx-backend-go/internal/models"
)

type authFixture struct {
	idp      *MockIdentityProvider
	repo     *MockProfileRepository
	audit    *MockAuditService
	notifier *MockNotificationService
	svc      AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		idp:      new(MockIdentityProvider),
		repo:     new(MockProfileRepository),
		audit:    new(MockAuditService),
		notifier: new(MockNotificationService),
	}
	profiles := NewProfileService(f.repo, f.audit, zap.NewNop(), WithClock(fixedClock))
	f.svc = NewAuthService(f.idp, f.repo, profiles, f.notifier, NewInputValidator("US"), zap.NewNop(), WithClock(fixedClock))
	return f
}

func TestSignUpCreatesPendingProfile(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.idp.On("SignUp", mock.Anything, "jane@example.com", "Secret1!", "Jane Doe").
		Return(&models.Identity{UID: "u1", Email: "jane@example.com"}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.UID == "u1" &&
			p.Email == "jane@example.com" &&
			p.DisplayName == "Jane Doe" &&
			p.PhoneNumber == "+16502530000" &&
			p.Status == models.StatusPending &&
			p.Role == models.RoleUser
	})).Return(nil)
	// A failed enqueue must not fail the signup.
	f.notifier.On("Enqueue", mock.Anything, mock.MatchedBy(func(r models.NotifyAdminRequest) bool {
		return r.UID == "u1" && r.Email == "jane@example.com" && r.Timestamp.Equal(testNow)
	})).Return(errors.New("queue full"))
	f.idp.On("RevokeSessions", mock.Anything, "u1").Return(nil)

	profile, msg, err := f.svc.SignUp(ctx, models.SignUpRequest{
		Email:       "Jane@Example.com",
		Password:    "Secret1!",
		DisplayName: "  Jane Doe ",
		PhoneNumber: "+1 650-253-0000",
	})
	require.NoError(t, err)
	assert.Equal(t, SignUpSuccessMessage, msg)
	assert.Equal(t, models.StatusPending, profile.Status)
	f.idp.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture()
	_, _, err := f.svc.SignUp(context.Background(), models.SignUpRequest{
		Email:       "jane@example.com",
		Password:    "password",
		DisplayName: "Jane",
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
	assert.Equal(t, msgWeakPassword, ve.Message)
	f.idp.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("SignUp", mock.Anything, "jane@example.com", "Secret1!", "Jane").
		Return(nil, &ProviderError{Code: CodeEmailAlreadyInUse})

	_, _, err := f.svc.SignUp(context.Background(), models.SignUpRequest{
		Email:       "jane@example.com",
		Password:    "Secret1!",
		DisplayName: "Jane",
	})
	assert.True(t, IsProviderCode(err, CodeEmailAlreadyInUse))
	assert.Equal(t, "This email is already registered. Please sign in instead.", FriendlyMessage(err))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignInApprovedAdminRedirectsToDashboard(t *testing.T) {
	f := newAuthFixture()
	tokens := &AuthTokens{IDToken: "id", RefreshToken: "refresh"}
	f.idp.On("SignIn", mock.Anything, "boss@example.com", "Secret1!").
		Return(&models.Identity{UID: "a1"}, tokens, nil)
	f.repo.On("GetByID", mock.Anything, "a1").
		Return(&models.Profile{UID: "a1", Role: models.RoleAdmin, Status: models.StatusApproved}, nil)
	f.repo.On("RecordLogin", mock.Anything, "a1").Return(nil)

	res, err := f.svc.SignIn(context.Background(), models.SignInRequest{Email: "Boss@Example.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, RedirectAdmin, res.Redirect)
	assert.Same(t, tokens, res.Tokens)
	f.repo.AssertExpectations(t)
	f.idp.AssertNotCalled(t, "RevokeSessions", mock.Anything, mock.Anything)
}

func TestSignInRefusesUnapprovedAccounts(t *testing.T) {
	cases := []struct {
		status  models.Status
		message string
	}{
		{models.StatusPending, msgPendingApproval},
		{models.StatusRejected, msgRejected},
		{models.StatusSuspended, msgSuspended},
		{models.Status("archived"), msgUnknownStatus},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newAuthFixture()
			f.idp.On("SignIn", mock.Anything, "jane@example.com", "Secret1!").
				Return(&models.Identity{UID: "u1"}, &AuthTokens{}, nil)
			f.repo.On("GetByID", mock.Anything, "u1").
				Return(&models.Profile{UID: "u1", Role: models.RoleUser, Status: tc.status}, nil)
			f.idp.On("RevokeSessions", mock.Anything, "u1").Return(nil).Once()

			_, err := f.svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "Secret1!"})
			assert.ErrorIs(t, err, ErrNotApproved)
			assert.Equal(t, tc.message, FriendlyMessage(err))
			f.idp.AssertExpectations(t)
			f.repo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything)
		})
	}
}

func TestSignInMissingProfile(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("SignIn", mock.Anything, "jane@example.com", "Secret1!").
		Return(&models.Identity{UID: "u1"}, &AuthTokens{}, nil)
	f.repo.On("GetByID", mock.Anything, "u1").Return(nil, db.ErrNotFound)
	f.idp.On("RevokeSessions", mock.Anything, "u1").Return(nil).Once()

	_, err := f.svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "Secret1!"})
	var na *NotApprovedError
	require.ErrorAs(t, err, &na)
	assert.Equal(t, msgApprovalCheckFailed, na.Message)
	f.idp.AssertExpectations(t)
}

func TestSignInExpiredPackageIsSuspended(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("SignIn", mock.Anything, "jane@example.com", "Secret1!").
		Return(&models.Identity{UID: "u1"}, &AuthTokens{}, nil)
	f.repo.On("GetByID", mock.Anything, "u1").Return(&models.Profile{
		UID:            "u1",
		Role:           models.RoleUser,
		Status:         models.StatusApproved,
		PackageEndDate: timePtr(testNow.Add(-time.Minute)),
	}, nil)
	f.repo.On("Update", mock.Anything, "u1", expiryFields()).Return(nil)
	f.audit.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil)
	f.idp.On("RevokeSessions", mock.Anything, "u1").Return(nil)

	_, err := f.svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "Secret1!"})
	assert.Equal(t, msgSuspended, FriendlyMessage(err))
	f.repo.AssertExpectations(t)
}

func TestSignInWrongPassword(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("SignIn", mock.Anything, "jane@example.com", "nope").
		Return(nil, nil, &ProviderError{Code: CodeWrongPassword})

	_, err := f.svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "nope"})
	assert.Equal(t, "Incorrect password. Please try again.", FriendlyMessage(err))
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestFederatedFirstSignInCreatesPendingProfile(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("VerifyIDToken", mock.Anything, "google-token").
		Return(&models.Identity{UID: "g1", Email: "Ann.Lee@Gmail.com", PhoneNumber: "+16502530000"}, nil)
	f.repo.On("GetByID", mock.Anything, "g1").Return(nil, db.ErrNotFound)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.UID == "g1" &&
			p.Email == "ann.lee@gmail.com" &&
			p.DisplayName == "ann.lee" &&
			p.PhoneNumber == "+16502530000" &&
			p.Status == models.StatusPending &&
			p.Role == models.RoleUser
	})).Return(nil)
	f.notifier.On("Enqueue", mock.Anything, mock.MatchedBy(func(r models.NotifyAdminRequest) bool {
		return r.UID == "g1" && r.DisplayName == "ann.lee"
	})).Return(nil)
	f.idp.On("RevokeSessions", mock.Anything, "g1").Return(nil).Once()

	res, err := f.svc.SignInWithIdentity(context.Background(), models.FederatedSignInRequest{IDToken: " google-token "})
	assert.Nil(t, res)
	var na *NotApprovedError
	require.ErrorAs(t, err, &na)
	assert.Equal(t, string(models.StatusPending), na.Status)
	assert.Equal(t, SignUpSuccessMessage, FriendlyMessage(err))
	f.idp.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestFederatedSignInApprovedUser(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("VerifyIDToken", mock.Anything, "apple-token").
		Return(&models.Identity{UID: "u1", Email: "jane@privaterelay.appleid.com"}, nil)
	f.repo.On("GetByID", mock.Anything, "u1").
		Return(&models.Profile{UID: "u1", Role: models.RoleUser, Status: models.StatusApproved}, nil)
	f.repo.On("RecordLogin", mock.Anything, "u1").Return(nil)

	res, err := f.svc.SignInWithIdentity(context.Background(), models.FederatedSignInRequest{IDToken: "apple-token"})
	require.NoError(t, err)
	assert.Equal(t, RedirectHome, res.Redirect)
	assert.Nil(t, res.Tokens)
	assert.Equal(t, "u1", res.Profile.UID)
	f.repo.AssertExpectations(t)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.idp.AssertNotCalled(t, "RevokeSessions", mock.Anything, mock.Anything)
}

func TestFederatedSignInRefusesSuspended(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("VerifyIDToken", mock.Anything, "tok").Return(&models.Identity{UID: "u1", Email: "jane@example.com"}, nil)
	f.repo.On("GetByID", mock.Anything, "u1").
		Return(&models.Profile{UID: "u1", Role: models.RoleUser, Status: models.StatusSuspended}, nil)
	f.idp.On("RevokeSessions", mock.Anything, "u1").Return(nil).Once()

	_, err := f.svc.SignInWithIdentity(context.Background(), models.FederatedSignInRequest{IDToken: "tok"})
	assert.ErrorIs(t, err, ErrNotApproved)
	assert.Equal(t, msgSuspended, FriendlyMessage(err))
	f.idp.AssertExpectations(t)
	f.repo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything)
}

func TestFederatedSignInRejectsBadInput(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.SignInWithIdentity(context.Background(), models.FederatedSignInRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	f.idp.On("VerifyIDToken", mock.Anything, "expired").
		Return(nil, &ProviderError{Code: CodeInvalidIDToken})
	_, err = f.svc.SignInWithIdentity(context.Background(), models.FederatedSignInRequest{IDToken: "expired"})
	assert.True(t, IsProviderCode(err, CodeInvalidIDToken))

	f.idp.On("VerifyIDToken", mock.Anything, "no-email").Return(&models.Identity{UID: "g2"}, nil)
	f.repo.On("GetByID", mock.Anything, "g2").Return(nil, db.ErrNotFound)
	f.idp.On("RevokeSessions", mock.Anything, "g2").Return(nil).Once()
	_, err = f.svc.SignInWithIdentity(context.Background(), models.FederatedSignInRequest{IDToken: "no-email"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, msgFederatedEmailMissing, FriendlyMessage(err))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPopupCancellationMessages(t *testing.T) {
	for _, code := range []string{CodePopupClosedByUser, CodeCancelledPopupRequest} {
		assert.Equal(t, "Sign-in cancelled. Please try again.", FriendlyMessage(&ProviderError{Code: code}))
	}
}

func TestPasswordResetFlows(t *testing.T) {
	f := newAuthFixture()
	f.idp.On("SendPasswordResetEmail", mock.Anything, "jane@example.com", "").Return(nil)

	require.NoError(t, f.svc.SendPasswordReset(context.Background(), models.PasswordResetRequest{Email: "JANE@example.com"}))

	err := f.svc.ConfirmPasswordReset(context.Background(), models.ConfirmPasswordResetRequest{OobCode: "code", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrValidation)
	f.idp.AssertNotCalled(t, "ConfirmPasswordReset", mock.Anything, mock.Anything, mock.Anything)

	f.idp.On("ConfirmPasswordReset", mock.Anything, "code", "Secret1!").Return(nil)
	require.NoError(t, f.svc.ConfirmPasswordReset(context.Background(), models.ConfirmPasswordResetRequest{OobCode: " code ", NewPassword: "Secret1!"}))
	f.idp.AssertExpectations(t)
}

func TestSignOut(t *testing.T) {
	f := newAuthFixture()
	assert.Error(t, f.svc.SignOut(context.Background(), ""))

	f.idp.On("RevokeSessions", mock.Anything, "u1").Return(nil)
	assert.NoError(t, f.svc.SignOut(context.Background(), "u1"))
}
