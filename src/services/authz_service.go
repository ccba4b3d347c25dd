package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nestling-app/nestling-server/src/logging"
	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/repositories"
	"github.com/rs/zerolog"
)

// roleCacheSize bounds the permission cache; the role catalog is tiny, this
// exists only to satisfy the LRU constructor
const roleCacheSize = 64

// AuthorizationEngine resolves roles to permission sets and evaluates
// whether a principal may perform an action. Role→permission mappings are
// cached with a short TTL to bound staleness after catalog edits; account
// status is always re-checked live, so disabling an account takes effect on
// the next request regardless of the cache.
type AuthorizationEngine struct {
	roles    repositories.RoleRepository
	accounts repositories.AccountRepository
	cache    *lru.LRU[int32, map[string]struct{}]
	log      zerolog.Logger
}

// NewAuthorizationEngine creates an authorization engine with the given
// permission cache TTL
func NewAuthorizationEngine(roles repositories.RoleRepository, accounts repositories.AccountRepository, cacheTTL time.Duration) *AuthorizationEngine {
	return &AuthorizationEngine{
		roles:    roles,
		accounts: accounts,
		cache:    lru.NewLRU[int32, map[string]struct{}](roleCacheSize, nil, cacheTTL),
		log:      logging.NewLogger("authz"),
	}
}

// PermissionsForRole returns the permission set granted to a role. An
// unknown role yields an empty set — never an error that could bypass a
// check.
func (e *AuthorizationEngine) PermissionsForRole(ctx context.Context, roleID int32) (map[string]struct{}, error) {
	if cached, ok := e.cache.Get(roleID); ok {
		return cached, nil
	}

	names, err := e.roles.PermissionsForRole(ctx, roleID)
	if err != nil {
		return nil, transient("load role permissions", err)
	}

	perms := make(map[string]struct{}, len(names))
	for _, name := range names {
		perms[name] = struct{}{}
	}
	e.cache.Add(roleID, perms)
	return perms, nil
}

// Authorize evaluates the decision rule: allowed iff the account is active
// and its role holds the required permission. There is no superuser bypass.
// A denial returns ErrPermissionDenied; a disabled or vanished account
// returns ErrAccountDisabled so the middleware rejects with 401, not 403.
func (e *AuthorizationEngine) Authorize(ctx context.Context, accountID uuid.UUID, roleID int32, requiredPermission string) error {
	account, err := e.accounts.GetByID(ctx, accountID)
	if err != nil {
		return transient("load account for authorization", err)
	}
	if account == nil || account.Status != models.AccountStatusActive {
		return ErrAccountDisabled
	}

	perms, err := e.PermissionsForRole(ctx, roleID)
	if err != nil {
		return err
	}
	if _, ok := perms[requiredPermission]; !ok {
		e.log.Debug().
			Str("account_id", accountID.String()).
			Int32("role_id", roleID).
			Str("permission", requiredPermission).
			Msg("permission denied")
		return ErrPermissionDenied
	}
	return nil
}

// Invalidate drops the cached permission set for one role
func (e *AuthorizationEngine) Invalidate(roleID int32) {
	e.cache.Remove(roleID)
}

// InvalidateAll drops every cached permission set
func (e *AuthorizationEngine) InvalidateAll() {
	e.cache.Purge()
}
