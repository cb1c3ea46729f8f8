package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockx-backend-go/internal/models"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Secret1!":     true,
		"Abcdefg1?":    true,
		"Secret1":      false, // too short and no special
		"secret1!":     false, // no capital
		"Secret!!":     false, // no digit
		"Secret12":     false, // no special
		"Sec1!":        false,
		"LongPass9{}x": true,
		"Pass_word9":   false, // underscore is not in the special set
	}
	for pw, want := range cases {
		assert.Equal(t, want, IsStrongPassword(pw), pw)
	}
}

func TestNormalizePhone(t *testing.T) {
	v := NewInputValidator("US")

	got, err := v.NormalizePhone("(650) 253-0000")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = v.NormalizePhone("+44 20 7031 3000")
	require.NoError(t, err)
	assert.Equal(t, "+442070313000", got)

	for _, bad := range []string{"", "12", "not a phone"} {
		_, err := v.NormalizePhone(bad)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, bad)
		assert.Equal(t, msgInvalidPhone, ve.Message)
	}
}

func TestStructMessages(t *testing.T) {
	v := NewInputValidator("US")

	err := v.Struct(models.SignUpRequest{Password: "Secret1!", DisplayName: "Jane"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
	assert.Equal(t, "email is required.", ve.Message)

	err = v.Struct(models.SignUpRequest{Email: "jane@example.com", Password: "Secret1!", DisplayName: "Jane", PhoneNumber: "123"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, msgInvalidPhone, ve.Message)

	bad := models.Status("archived")
	err = v.Struct(models.EditProfileRequest{Status: &bad})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status must be one of: pending, approved, rejected, suspended.", ve.Message)

	assert.NoError(t, v.Struct(models.SignUpRequest{Email: "jane@example.com", Password: "Secret1!", DisplayName: "Jane"}))
}

func TestTransitions(t *testing.T) {
	allowed := [][2]models.Status{
		{models.StatusPending, models.StatusApproved},
		{models.StatusPending, models.StatusRejected},
		{models.StatusApproved, models.StatusSuspended},
		{models.StatusSuspended, models.StatusApproved},
	}
	for _, tr := range allowed {
		assert.NoError(t, ValidateTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]models.Status{
		{models.StatusRejected, models.StatusApproved},
		{models.StatusApproved, models.StatusPending},
		{models.StatusApproved, models.StatusApproved},
		{models.StatusPending, models.StatusSuspended},
		{models.StatusSuspended, models.StatusRejected},
	}
	for _, tr := range denied {
		assert.ErrorIs(t, ValidateTransition(tr[0], tr[1]), ErrInvalidTransition, "%s -> %s", tr[0], tr[1])
	}
}

func TestFriendlyMessage(t *testing.T) {
	assert.Equal(t, "Too many failed attempts. Please try again later.",
		FriendlyMessage(fmt.Errorf("sign in: %w", &ProviderError{Code: CodeTooManyRequests})))
	assert.Equal(t, "RAW_PROVIDER_MESSAGE",
		FriendlyMessage(&ProviderError{Code: "auth/something-else", Message: "RAW_PROVIDER_MESSAGE"}))
	assert.Equal(t, DefaultErrorMessage, FriendlyMessage(&ProviderError{Code: "auth/something-else"}))
	assert.Equal(t, DefaultErrorMessage, FriendlyMessage(errors.New("boom")))
	assert.Empty(t, FriendlyMessage(nil))
}

func TestForbiddenErrorMatchesBoth(t *testing.T) {
	cause := errors.New("nope")
	err := forbidden(cause)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "nope", err.Error())
}
