// Package access holds role assignments and enforces the hierarchical grant
// chain every other component authorizes against.
package access

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/electra-vote/electra/internal/shared"
)

// Registry maps accounts to their role sets. All methods are safe for
// concurrent use; each call is a single atomic unit under the registry lock.
type Registry struct {
	mu     sync.RWMutex
	grants map[uuid.UUID]map[Role]struct{}
	logger *slog.Logger
}

// NewRegistry seeds the genesis SUPER_ADMIN and returns the registry.
func NewRegistry(genesisAdmin uuid.UUID, logger *slog.Logger) (*Registry, error) {
	if genesisAdmin == uuid.Nil {
		return nil, fmt.Errorf("%w: genesis admin account required", shared.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		grants: make(map[uuid.UUID]map[Role]struct{}),
		logger: logger,
	}
	r.grants[genesisAdmin] = map[Role]struct{}{RoleSuperAdmin: {}}
	return r, nil
}

// Grant adds role to account's role set. The caller must hold a role with
// grant authority over role. Granting a role the account already holds is a
// no-op, not an error; grants are never revoked.
func (r *Registry) Grant(caller uuid.UUID, role Role, account uuid.UUID) error {
	if !Known(role) {
		return fmt.Errorf("%w: unknown role %q", shared.ErrValidation, role)
	}
	if account == uuid.Nil {
		return fmt.Errorf("%w: account required", shared.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.holdsAny(caller, grantAuthority[role]...) {
		return fmt.Errorf("%w: caller may not grant %s", shared.ErrAuthorization, role)
	}
	set, ok := r.grants[account]
	if !ok {
		set = make(map[Role]struct{})
		r.grants[account] = set
	}
	if _, ok := set[role]; ok {
		return nil
	}
	set[role] = struct{}{}
	r.logger.Info("role granted",
		slog.String("role", string(role)),
		slog.String("account", account.String()),
		slog.String("grantedBy", caller.String()))
	return nil
}

// HasRole reports whether account holds role. Pure lookup, never fails.
func (r *Registry) HasRole(role Role, account uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grants[account][role]
	return ok
}

// Roles returns the roles held by account.
func (r *Registry) Roles(account uuid.UUID) []Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.grants[account]
	roles := make([]Role, 0, len(set))
	for _, role := range []Role{RoleSuperAdmin, RoleElectionManager, RoleElectionAuthority, RoleVoter} {
		if _, ok := set[role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// IsSuperAdmin reports whether account holds SUPER_ADMIN.
func (r *Registry) IsSuperAdmin(account uuid.UUID) bool {
	return r.HasRole(RoleSuperAdmin, account)
}

// IsElectionManager reports whether account holds ELECTION_MANAGER.
func (r *Registry) IsElectionManager(account uuid.UUID) bool {
	return r.HasRole(RoleElectionManager, account)
}

// IsElectionAuthority reports whether account holds ELECTION_AUTHORITY.
func (r *Registry) IsElectionAuthority(account uuid.UUID) bool {
	return r.HasRole(RoleElectionAuthority, account)
}

// IsVoter reports whether account holds VOTER.
func (r *Registry) IsVoter(account uuid.UUID) bool {
	return r.HasRole(RoleVoter, account)
}

// holdsAny assumes the lock is held in at least read mode.
func (r *Registry) holdsAny(account uuid.UUID, roles ...Role) bool {
	set, ok := r.grants[account]
	if !ok {
		return false
	}
	for _, role := range roles {
		if _, ok := set[role]; ok {
			return true
		}
	}
	return false
}
