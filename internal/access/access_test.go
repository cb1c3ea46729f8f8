package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockx-backend-go/internal/access"
	"stockx-backend-go/internal/models"
)

func profile(uid string, role models.Role, status models.Status) *models.Profile {
	return &models.Profile{UID: uid, Role: role, Status: status}
}

func TestReduceLifecycle(t *testing.T) {
	id := &models.Identity{UID: "u1", Email: "a@example.com"}
	p := profile("u1", models.RoleUser, models.StatusApproved)

	s := access.Reduce(access.Session{}, access.Resolving())
	assert.True(t, s.Loading)
	assert.Nil(t, s.User)

	s = access.Reduce(s, access.SignedIn(id))
	assert.True(t, s.Loading, "profile still pending")
	assert.Equal(t, id, s.User)

	s = access.Reduce(s, access.ProfileLoaded(p))
	assert.False(t, s.Loading)
	assert.Equal(t, p, s.Profile)

	s = access.Reduce(s, access.SignedOut())
	assert.Equal(t, access.Session{}, s)
}

func TestReduceIgnoresProfileWithoutUser(t *testing.T) {
	s := access.Reduce(access.Session{}, access.ProfileLoaded(profile("x", models.RoleAdmin, models.StatusApproved)))
	assert.Equal(t, access.Session{}, s)

	s = access.Build(access.SignedIn(&models.Identity{UID: "u1"}), access.ProfileMissing())
	assert.False(t, s.Loading)
	assert.NotNil(t, s.User)
	assert.Nil(t, s.Profile)
}

func TestDecide(t *testing.T) {
	id := &models.Identity{UID: "u1"}
	signedIn := func(p *models.Profile) access.Session {
		return access.Build(access.SignedIn(id), access.ProfileLoaded(p))
	}

	cases := []struct {
		name     string
		gate     access.Gate
		session  access.Session
		outcome  access.Outcome
		redirect string
	}{
		{"basic loading", access.GateBasic, access.Build(access.Resolving()), access.OutcomeLoading, ""},
		{"basic anonymous", access.GateBasic, access.Session{}, access.OutcomeRedirect, access.PathSignIn},
		{"basic signed in", access.GateBasic, signedIn(profile("u1", models.RoleUser, models.StatusApproved)), access.OutcomeAllow, ""},
		{"basic pending", access.GateBasic, signedIn(profile("u1", models.RoleUser, models.StatusPending)), access.OutcomeRedirect, access.PathSignIn},
		{"basic suspended", access.GateBasic, signedIn(profile("u1", models.RoleUser, models.StatusSuspended)), access.OutcomeRedirect, access.PathSignIn},
		{"basic missing profile", access.GateBasic, access.Build(access.SignedIn(id), access.ProfileMissing()), access.OutcomeRedirect, access.PathSignIn},
		{"admin suspended", access.GateAdmin, signedIn(profile("u1", models.RoleAdmin, models.StatusSuspended)), access.OutcomeRedirect, access.PathHome},
		{"admin rejected", access.GateAdmin, signedIn(profile("u1", models.RoleAdmin, models.StatusRejected)), access.OutcomeRedirect, access.PathHome},
		{"admin pending", access.GateAdmin, signedIn(profile("u1", models.RoleSuperAdmin, models.StatusPending)), access.OutcomeRedirect, access.PathHome},
		{"admin anonymous", access.GateAdmin, access.Session{}, access.OutcomeRedirect, access.PathSignIn},
		{"admin profile pending fetch", access.GateAdmin, access.Build(access.SignedIn(id)), access.OutcomeLoading, ""},
		{"admin missing profile", access.GateAdmin, access.Build(access.SignedIn(id), access.ProfileMissing()), access.OutcomeRedirect, access.PathHome},
		{"admin as user", access.GateAdmin, signedIn(profile("u1", models.RoleUser, models.StatusApproved)), access.OutcomeRedirect, access.PathHome},
		{"admin as admin", access.GateAdmin, signedIn(profile("u1", models.RoleAdmin, models.StatusApproved)), access.OutcomeAllow, ""},
		{"admin as superadmin", access.GateAdmin, signedIn(profile("u1", models.RoleSuperAdmin, models.StatusApproved)), access.OutcomeAllow, ""},
		{"signin anonymous", access.GateSignIn, access.Session{}, access.OutcomeAllow, ""},
		{"signin pending", access.GateSignIn, signedIn(profile("u1", models.RoleUser, models.StatusPending)), access.OutcomeAllow, ""},
		{"signin suspended", access.GateSignIn, signedIn(profile("u1", models.RoleUser, models.StatusSuspended)), access.OutcomeAllow, ""},
		{"signin approved user", access.GateSignIn, signedIn(profile("u1", models.RoleUser, models.StatusApproved)), access.OutcomeRedirect, access.PathHome},
		{"signin approved admin", access.GateSignIn, signedIn(profile("u1", models.RoleAdmin, models.StatusApproved)), access.OutcomeRedirect, access.PathAdmin},
		{"signin loading", access.GateSignIn, access.Build(access.Resolving()), access.OutcomeLoading, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := access.Decide(tc.gate, tc.session)
			assert.Equal(t, tc.outcome, d.Outcome)
			assert.Equal(t, tc.redirect, d.Redirect)
			assert.Equal(t, tc.gate, d.Gate)
		})
	}
}

func TestParseGate(t *testing.T) {
	g, err := access.ParseGate(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, access.GateAdmin, g)

	_, err = access.ParseGate("vip")
	assert.Error(t, err)
}

func TestActionChecks(t *testing.T) {
	super := profile("s1", models.RoleSuperAdmin, models.StatusApproved)
	admin := profile("a1", models.RoleAdmin, models.StatusApproved)
	user := profile("u1", models.RoleUser, models.StatusApproved)

	assert.NoError(t, access.CanDelete(super, "u1"))
	assert.ErrorIs(t, access.CanDelete(super, "s1"), access.ErrSelfDelete)
	assert.ErrorIs(t, access.CanDelete(admin, "u1"), access.ErrSuperAdminRequired)
	assert.ErrorIs(t, access.CanDelete(nil, "u1"), access.ErrSuperAdminRequired)

	assert.NoError(t, access.CanAssignRole(admin, models.RoleUser, models.RoleUser))
	assert.ErrorIs(t, access.CanAssignRole(admin, models.RoleUser, models.RoleAdmin), access.ErrRoleChangeForbidden)
	assert.NoError(t, access.CanAssignRole(super, models.RoleUser, models.RoleSuperAdmin))

	assert.NoError(t, access.CanManageUsers(admin))
	assert.ErrorIs(t, access.CanManageUsers(user), access.ErrAdminRequired)
	assert.ErrorIs(t, access.CanManageUsers(profile("a2", models.RoleAdmin, models.StatusSuspended)), access.ErrAccountNotApproved)
	assert.ErrorIs(t, access.CanDelete(profile("s2", models.RoleSuperAdmin, models.StatusRejected), "u1"), access.ErrAccountNotApproved)

	assert.NoError(t, access.CanEdit(admin, user))
	assert.ErrorIs(t, access.CanEdit(admin, super), access.ErrSuperAdminProtected)
	assert.NoError(t, access.CanEdit(super, super))
}
