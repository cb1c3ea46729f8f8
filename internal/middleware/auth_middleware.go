// Package middleware authenticates requests, enforces access gates and rate
// limits the public auth endpoints.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/access"
	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/models"
)

// Gin context keys set by the auth middleware.
const (
	ContextUserID   = "userID"
	ContextIdentity = "identity"
	ContextSession  = "session"
	ContextProfile  = "profile"
)

// ErrorResponse is the error body written by the middleware. Redirect carries the gate target.
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// TokenVerifier checks an ID token and returns its principal.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error)
}

// ProfileLoader loads a profile with package expiry applied.
type ProfileLoader interface {
	Get(ctx context.Context, uid string) (*models.Profile, error)
}

// AuthMiddleware authenticates requests and evaluates route gates.
type AuthMiddleware struct {
	verifier TokenVerifier
	profiles ProfileLoader
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, profiles ProfileLoader, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil || profiles == nil {
		panic("AuthMiddleware requires a token verifier and a profile loader")
	}
	return &AuthMiddleware{verifier: verifier, profiles: profiles, logger: logger}
}

// VerifyToken requires a valid "Authorization: Bearer <ID token>" header and
// stores the uid and identity in the context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c, true) {
			return
		}
		c.Next()
	}
}

// OptionalToken authenticates when an Authorization header is present and
// lets anonymous requests through. A present but invalid token is still rejected.
func (m *AuthMiddleware) OptionalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c, false) {
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, required bool) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return false
		}
		return true
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
		return false
	}

	identity, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
	if err != nil {
		m.logger.Debug("ID token rejected", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
		return false
	}

	c.Set(ContextUserID, identity.UID)
	c.Set(ContextIdentity, identity)
	return true
}

// LoadSession folds the request's auth state into an access.Session and stores
// it, along with the profile when there is one.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.loadSession(c) {
			return
		}
		c.Next()
	}
}

// RequireGate loads the session when no earlier middleware did and then
// enforces gate. An anonymous caller sent to the sign-in page gets 401; every
// other refusal is a 403.
func (m *AuthMiddleware) RequireGate(gate access.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextSession); !ok && !m.loadSession(c) {
			return
		}
		m.enforce(c, gate)
	}
}

func (m *AuthMiddleware) loadSession(c *gin.Context) bool {
	identity := IdentityFrom(c)
	if identity == nil {
		c.Set(ContextSession, access.Build(access.SignedOut()))
		return true
	}

	profile, err := m.profiles.Get(c.Request.Context(), identity.UID)
	switch {
	case err == nil:
		c.Set(ContextProfile, profile)
		c.Set(ContextSession, access.Build(access.SignedIn(identity), access.ProfileLoaded(profile)))
	case errors.Is(err, core.ErrProfileNotFound):
		c.Set(ContextSession, access.Build(access.SignedIn(identity), access.ProfileMissing()))
	default:
		m.logger.Error("Failed to load profile for session", zap.String("uid", identity.UID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load user profile"})
		return false
	}
	return true
}

func (m *AuthMiddleware) enforce(c *gin.Context, gate access.Gate) {
	decision := access.Decide(gate, SessionFrom(c))
	if decision.Allowed() {
		c.Next()
		return
	}
	status := http.StatusForbidden
	msg := access.ErrAdminRequired.Error()
	switch {
	case decision.Redirect == access.PathSignIn && IdentityFrom(c) == nil:
		status = http.StatusUnauthorized
		msg = "Authentication required"
	case decision.Redirect == access.PathSignIn:
		// Signed in, but the account is pending, rejected, suspended or missing.
		msg = access.ErrAccountNotApproved.Error()
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Redirect: decision.Redirect})
}

// IdentityFrom returns the authenticated principal or nil.
func IdentityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*models.Identity)
	return id
}

// ProfileFrom returns the profile loaded by LoadSession or nil.
func ProfileFrom(c *gin.Context) *models.Profile {
	v, ok := c.Get(ContextProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Profile)
	return p
}

// SessionFrom returns the session stored by LoadSession, or a signed out one.
func SessionFrom(c *gin.Context) access.Session {
	if v, ok := c.Get(ContextSession); ok {
		if s, ok := v.(access.Session); ok {
			return s
		}
	}
	return access.Build(access.SignedOut())
}
