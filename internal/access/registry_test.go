package access

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/electra-vote/electra/internal/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRegistrySeedsGenesisAdmin(t *testing.T) {
	admin := uuid.New()
	reg, err := NewRegistry(admin, testLogger())
	require.NoError(t, err)
	require.True(t, reg.IsSuperAdmin(admin))
	require.False(t, reg.IsElectionManager(admin))

	_, err = NewRegistry(uuid.Nil, testLogger())
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestGrantHierarchy(t *testing.T) {
	admin := uuid.New()
	reg, err := NewRegistry(admin, testLogger())
	require.NoError(t, err)

	manager := uuid.New()
	authority := uuid.New()
	voter := uuid.New()

	require.NoError(t, reg.Grant(admin, RoleElectionManager, manager))
	require.NoError(t, reg.Grant(manager, RoleElectionAuthority, authority))
	require.NoError(t, reg.Grant(authority, RoleVoter, voter))

	require.True(t, reg.IsElectionManager(manager))
	require.True(t, reg.IsElectionAuthority(authority))
	require.True(t, reg.IsVoter(voter))

	// Higher roles keep grant authority over lower ones.
	require.NoError(t, reg.Grant(admin, RoleElectionAuthority, uuid.New()))
	require.NoError(t, reg.Grant(manager, RoleVoter, uuid.New()))
	require.NoError(t, reg.Grant(admin, RoleSuperAdmin, uuid.New()))
}

func TestGrantWithoutAuthorityFails(t *testing.T) {
	admin := uuid.New()
	reg, err := NewRegistry(admin, testLogger())
	require.NoError(t, err)

	manager := uuid.New()
	authority := uuid.New()
	voter := uuid.New()
	require.NoError(t, reg.Grant(admin, RoleElectionManager, manager))
	require.NoError(t, reg.Grant(manager, RoleElectionAuthority, authority))
	require.NoError(t, reg.Grant(authority, RoleVoter, voter))

	cases := []struct {
		name    string
		caller  uuid.UUID
		role    Role
		account uuid.UUID
	}{
		{"manager cannot grant manager", manager, RoleElectionManager, uuid.New()},
		{"manager cannot grant super admin", manager, RoleSuperAdmin, uuid.New()},
		{"authority cannot grant authority", authority, RoleElectionAuthority, uuid.New()},
		{"voter cannot grant voter", voter, RoleVoter, uuid.New()},
		{"stranger cannot grant anything", uuid.New(), RoleVoter, uuid.New()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := reg.Grant(tc.caller, tc.role, tc.account)
			require.ErrorIs(t, err, shared.ErrAuthorization)
			require.False(t, reg.HasRole(tc.role, tc.account))
		})
	}
}

func TestDuplicateGrantIsNoOp(t *testing.T) {
	admin := uuid.New()
	reg, err := NewRegistry(admin, testLogger())
	require.NoError(t, err)

	manager := uuid.New()
	require.NoError(t, reg.Grant(admin, RoleElectionManager, manager))
	require.NoError(t, reg.Grant(admin, RoleElectionManager, manager))
	require.True(t, reg.IsElectionManager(manager))
}

func TestGrantInputValidation(t *testing.T) {
	admin := uuid.New()
	reg, err := NewRegistry(admin, testLogger())
	require.NoError(t, err)

	require.ErrorIs(t, reg.Grant(admin, Role("OBSERVER"), uuid.New()), shared.ErrValidation)
	require.ErrorIs(t, reg.Grant(admin, RoleVoter, uuid.Nil), shared.ErrValidation)
}

func TestRolesAccumulate(t *testing.T) {
	admin := uuid.New()
	reg, err := NewRegistry(admin, testLogger())
	require.NoError(t, err)

	account := uuid.New()
	require.NoError(t, reg.Grant(admin, RoleElectionManager, account))
	require.NoError(t, reg.Grant(admin, RoleElectionAuthority, account))
	require.NoError(t, reg.Grant(admin, RoleVoter, account))

	require.Equal(t, []Role{RoleElectionManager, RoleElectionAuthority, RoleVoter}, reg.Roles(account))
	require.Equal(t, []Role{RoleSuperAdmin}, reg.Roles(admin))
	require.Empty(t, reg.Roles(uuid.New()))
}
