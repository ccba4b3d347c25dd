package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminRole is a named bundle of permissions. The catalog is seeded via
// migrations and administered out of band.
type AdminRole struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// AdminPermission is an atomic named capability, e.g. "content.publish"
type AdminPermission struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// AdminRolePermission joins roles to permissions (many-to-many)
type AdminRolePermission struct {
	RoleID       int32 `json:"role_id"`
	PermissionID int32 `json:"permission_id"`
}

// AdminAccount represents an administrative identity. Accounts are created
// by invitation acceptance and never physically deleted; disabling keeps the
// row and invalidates every session.
type AdminAccount struct {
	ID                  uuid.UUID     `json:"id"`
	Email               string        `json:"email"`
	PasswordHash        string        `json:"-"` // never expose
	Status              AccountStatus `json:"status"`
	RoleID              int32         `json:"role_id"`
	RoleName            string        `json:"role"`
	FailedLoginAttempts int32         `json:"-"`
	LockedUntil         *time.Time    `json:"-"`
	LoginCount          int32         `json:"-"`
	LastLoginAt         *time.Time    `json:"last_login_at"`
	CreatedBy           *uuid.UUID    `json:"created_by,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// IsLocked reports whether the account is inside a temporary lockout window
func (a *AdminAccount) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// CanAuthenticate reports whether login may proceed to password verification
func (a *AdminAccount) CanAuthenticate(now time.Time) bool {
	return a.Status == AccountStatusActive && !a.IsLocked(now)
}

// ValidStatusTransition reports whether the account status FSM permits the
// transition. Keeping the rules here means "disabled implies all sessions
// invalid" is enforced in one place by the orchestrator.
func ValidStatusTransition(from, to AccountStatus) bool {
	switch from {
	case AccountStatusPending:
		return to == AccountStatusActive || to == AccountStatusDisabled
	case AccountStatusActive:
		return to == AccountStatusDisabled
	case AccountStatusDisabled:
		return to == AccountStatusActive
	}
	return false
}

// AdminSession is the server-side record backing an issued token pair. It is
// the sole source of truth for revocation: middleware resolves the presented
// token by hash and rejects revoked or expired rows regardless of the
// token's own expiry claim.
type AdminSession struct {
	ID               uuid.UUID  `json:"id"`
	AccountID        uuid.UUID  `json:"account_id"`
	TokenHash        string     `json:"-"`
	RefreshTokenHash string     `json:"-"`
	IPAddress        string     `json:"ip_address"`
	UserAgent        string     `json:"user_agent"`
	ExpiresAt        time.Time  `json:"expires_at"`
	Revoked          bool       `json:"revoked"`
	RevokedReason    *string    `json:"revoked_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	LastAccessedAt   *time.Time `json:"last_accessed_at,omitempty"`
}

// Active reports whether the session may validate a presented token
func (s *AdminSession) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

// AdminInvitation is a single-use, time-boxed token granting account
// creation for a specific email and proposed role. Only the token hash is
// stored; the raw token travels once, in the invitation email.
type AdminInvitation struct {
	ID         uuid.UUID   `json:"id"`
	Email      string      `json:"email"`
	TokenHash  string      `json:"-"`
	RoleID     int32       `json:"role_id"`
	RoleName   string      `json:"role"`
	InvitedBy  uuid.UUID   `json:"invited_by"`
	Status     TokenStatus `json:"status"`
	ExpiresAt  time.Time   `json:"expires_at"`
	ConsumedAt *time.Time  `json:"consumed_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// PasswordReset is a single-use, time-boxed token scoped to one account
type PasswordReset struct {
	ID         uuid.UUID   `json:"id"`
	AccountID  uuid.UUID   `json:"account_id"`
	TokenHash  string      `json:"-"`
	Status     TokenStatus `json:"status"`
	ExpiresAt  time.Time   `json:"expires_at"`
	ConsumedAt *time.Time  `json:"consumed_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AuditRecord is an append-only log entry for a security-relevant action.
// ActorID is nil for system actions. Metadata is a JSON blob, optionally
// encrypted at rest.
type AuditRecord struct {
	ID        int64      `json:"id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Action    string     `json:"action"`
	Target    string     `json:"target"`
	Severity  string     `json:"severity"`
	Metadata  []byte     `json:"metadata,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AuditQuery filters an audit log listing
type AuditQuery struct {
	ActorID  *uuid.UUID
	Action   string
	Severity string
	Since    *time.Time
	Until    *time.Time
	Limit    int
	Offset   int
}
