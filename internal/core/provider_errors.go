package core

import "errors"

// Identity provider error codes.
const (
	CodeEmailAlreadyInUse     = "auth/email-already-in-use"
	CodeInvalidEmail          = "auth/invalid-email"
	CodeOperationNotAllowed   = "auth/operation-not-allowed"
	CodeWeakPassword          = "auth/weak-password"
	CodeUserDisabled          = "auth/user-disabled"
	CodeUserNotFound          = "auth/user-not-found"
	CodeWrongPassword         = "auth/wrong-password"
	CodeInvalidCredential     = "auth/invalid-credential"
	CodeTooManyRequests       = "auth/too-many-requests"
	CodeNetworkRequestFailed  = "auth/network-request-failed"
	CodeExpiredActionCode     = "auth/expired-action-code"
	CodeInvalidActionCode     = "auth/invalid-action-code"
	CodeInvalidIDToken        = "auth/invalid-id-token"
	CodePopupClosedByUser     = "auth/popup-closed-by-user"
	CodeCancelledPopupRequest = "auth/cancelled-popup-request"
	CodeInternalProviderError = "auth/internal-error"
)

// DefaultErrorMessage is shown when nothing more specific is known.
const DefaultErrorMessage = "An error occurred. Please try again."

const msgSignInCancelled = "Sign-in cancelled. Please try again."

var providerMessages = map[string]string{
	CodeEmailAlreadyInUse:     "This email is already registered. Please sign in instead.",
	CodeInvalidEmail:          "Please enter a valid email address.",
	CodeOperationNotAllowed:   "This sign-in method is not enabled. Please contact support.",
	CodeWeakPassword:          "Password is too weak. Please use a stronger password.",
	CodeUserDisabled:          "This account has been disabled. Please contact support.",
	CodeUserNotFound:          "No account found with this email. Please sign up first.",
	CodeWrongPassword:         "Incorrect password. Please try again.",
	CodeInvalidCredential:     "Invalid email or password. Please try again.",
	CodeTooManyRequests:       "Too many failed attempts. Please try again later.",
	CodeNetworkRequestFailed:  "Network error. Please check your connection and try again.",
	CodePopupClosedByUser:     msgSignInCancelled,
	CodeCancelledPopupRequest: msgSignInCancelled,
	CodeExpiredActionCode:     "This password reset link has expired. Please request a new one.",
	CodeInvalidActionCode:     "This password reset link is invalid. Please request a new one.",
}

// ProviderError is an identity provider failure normalized to an auth/* code.
type ProviderError struct {
	Code    string
	Message string // Raw provider message
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

func (e *ProviderError) Unwrap() error { return e.Err }

// UserMessage maps a provider error code to the text shown to users.
func (e *ProviderError) UserMessage() string {
	if msg, ok := providerMessages[e.Code]; ok {
		return msg
	}
	if e.Message != "" {
		return e.Message
	}
	return DefaultErrorMessage
}

// IsProviderCode reports whether err wraps a ProviderError with code.
func IsProviderCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}

// FriendlyMessage returns the user-facing text for any error produced by the
// auth gateway.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.UserMessage()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var na *NotApprovedError
	if errors.As(err, &na) {
		return na.Message
	}
	return DefaultErrorMessage
}
