package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockx-backend-go/internal/access"
	"stockx-backend-go/internal/middleware"
)

// SessionHandler exposes the resolved session and gate decisions to the frontend.
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// GetSession handles GET /api/v1/session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, ok(middleware.SessionFrom(c)))
}

// EvaluateGate handles GET /api/v1/session/gate?gate=basic|admin|signin.
// It always answers 200 with the decision; enforcement is the client's job.
func (h *SessionHandler) EvaluateGate(c *gin.Context) {
	gate, err := access.ParseGate(c.Query("gate"))
	if err != nil {
		badRequest(c, "gate must be one of: basic, admin, signin")
		return
	}
	c.JSON(http.StatusOK, ok(access.Decide(gate, middleware.SessionFrom(c))))
}
