package access

import (
	"errors"
	"fmt"
	"strings"

	"stockx-backend-go/internal/models"
)

// Gate identifies a route guard.
type Gate string

const (
	// GateBasic requires a signed-in user with an approved profile.
	GateBasic Gate = "basic"
	// GateAdmin requires an approved admin or superadmin.
	GateAdmin Gate = "admin"
	// GateSignIn guards the sign-in page itself and sends approved users away from it.
	GateSignIn Gate = "signin"
)

// Route targets used in redirect decisions.
const (
	PathSignIn = "/signin"
	PathHome   = "/"
	PathAdmin  = "/admin"
)

// ParseGate converts a query value to a Gate.
func ParseGate(raw string) (Gate, error) {
	switch g := Gate(strings.ToLower(strings.TrimSpace(raw))); g {
	case GateBasic, GateAdmin, GateSignIn:
		return g, nil
	}
	return "", fmt.Errorf("unknown gate %q", raw)
}

// Outcome is what a gate tells the client to do.
type Outcome string

const (
	OutcomeAllow    Outcome = "allow"
	OutcomeLoading  Outcome = "loading"
	OutcomeRedirect Outcome = "redirect"
)

// Decision is the result of evaluating a gate.
type Decision struct {
	Gate     Gate    `json:"gate"`
	Outcome  Outcome `json:"outcome"`
	Redirect string  `json:"redirect,omitempty"`
}

// Allowed reports whether the route may render.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

func allow(g Gate) Decision   { return Decision{Gate: g, Outcome: OutcomeAllow} }
func loading(g Gate) Decision { return Decision{Gate: g, Outcome: OutcomeLoading} }
func redirect(g Gate, to string) Decision {
	return Decision{Gate: g, Outcome: OutcomeRedirect, Redirect: to}
}

// Decide evaluates gate against the session.
func Decide(gate Gate, s Session) Decision {
	if s.Loading {
		return loading(gate)
	}
	switch gate {
	case GateBasic:
		// A signed-in account that is not approved goes back to the sign-in
		// page, which shows why.
		if s.User == nil || !isApproved(s.Profile) {
			return redirect(gate, PathSignIn)
		}
		return allow(gate)
	case GateAdmin:
		if s.User == nil {
			return redirect(gate, PathSignIn)
		}
		if !isApproved(s.Profile) || !s.Profile.Role.IsAdmin() {
			return redirect(gate, PathHome)
		}
		return allow(gate)
	case GateSignIn:
		if s.User != nil && isApproved(s.Profile) {
			if s.Profile.Role.IsAdmin() {
				return redirect(gate, PathAdmin)
			}
			return redirect(gate, PathHome)
		}
		return allow(gate)
	}
	return redirect(gate, PathSignIn)
}

func isApproved(p *models.Profile) bool {
	return p != nil && p.Status == models.StatusApproved
}

// Reasons an admin action is refused.
var (
	ErrAdminRequired       = errors.New("Unauthorized: Admin access required")
	ErrAccountNotApproved  = errors.New("Your account is not approved. Please sign in again.")
	ErrSuperAdminRequired  = errors.New("Unauthorized: Superadmin access required")
	ErrSelfDelete          = errors.New("You cannot delete your own account")
	ErrRoleChangeForbidden = errors.New("Only superadmins can change user roles")
	ErrSuperAdminProtected = errors.New("Only superadmins can edit a superadmin account")
)

// CanManageUsers allows approved admins and superadmins to run dashboard actions.
func CanManageUsers(actor *models.Profile) error {
	if actor == nil || !actor.Role.IsAdmin() {
		return ErrAdminRequired
	}
	if !isApproved(actor) {
		return ErrAccountNotApproved
	}
	return nil
}

// CanDelete allows only an approved superadmin, and never on their own account.
func CanDelete(actor *models.Profile, targetUID string) error {
	if actor != nil && actor.UID == targetUID {
		return ErrSelfDelete
	}
	if actor == nil || actor.Role != models.RoleSuperAdmin {
		return ErrSuperAdminRequired
	}
	if !isApproved(actor) {
		return ErrAccountNotApproved
	}
	return nil
}

// CanAssignRole allows a role change from -> to. Keeping the role is always allowed.
func CanAssignRole(actor *models.Profile, from, to models.Role) error {
	if from == to {
		return nil
	}
	if actor == nil || actor.Role != models.RoleSuperAdmin {
		return ErrRoleChangeForbidden
	}
	return nil
}

// CanEdit allows any admin to edit ordinary records; superadmin records need a superadmin.
func CanEdit(actor, target *models.Profile) error {
	if err := CanManageUsers(actor); err != nil {
		return err
	}
	if target != nil && target.Role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return ErrSuperAdminProtected
	}
	return nil
}
