package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nestling-app/nestling-server/src/models"
)

// Repositories model the relational store as typed operations so the store
// technology stays replaceable. Lookups return (nil, nil) when no row
// matches; errors are reserved for store failures.

// AccountRepository defines data access for admin accounts
type AccountRepository interface {
	Create(ctx context.Context, account *models.AdminAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error)
	// GetByEmail matches case-insensitively
	GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error)
	List(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error)
	Count(ctx context.Context) (int64, error)

	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	// UpdateStatus applies the transition only when the current status still
	// matches from; returns false when another writer got there first
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.AccountStatus) (bool, error)

	// RecordLoginSuccess resets the failure counter, clears any lockout,
	// bumps the login counter, and stamps last_login_at
	RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error
	// RecordLoginFailure atomically increments the failure counter and, at
	// threshold, sets locked_until. Returns the post-increment counter and
	// whether this failure triggered the lockout.
	RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (int32, bool, error)
}

// RoleRepository reads the role/permission catalog. The core never writes it.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*models.AdminRole, error)
	GetByID(ctx context.Context, id int32) (*models.AdminRole, error)
	// PermissionsForRole returns the permission names granted to a role; an
	// unknown role yields an empty set, not an error
	PermissionsForRole(ctx context.Context, roleID int32) ([]string, error)
}

// SessionRepository persists admin sessions keyed by token hash
type SessionRepository interface {
	Create(ctx context.Context, session *models.AdminSession) error
	// FindActiveByTokenHash returns the one non-revoked, non-expired session
	// for the hash, or nil
	FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.AdminSession, error)
	FindActiveByRefreshHash(ctx context.Context, refreshHash string) (*models.AdminSession, error)
	// UpdateTokens rotates the session's token hashes in place (refresh flow)
	UpdateTokens(ctx context.Context, id uuid.UUID, tokenHash, refreshHash string, expiresAt time.Time) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Revoke(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	// RevokeAllForAccount revokes every active session of an account, minus
	// the optional exception (the session performing a password change)
	RevokeAllForAccount(ctx context.Context, accountID uuid.UUID, except *uuid.UUID, reason string) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// InvitationRepository persists single-use invitation tokens
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.AdminInvitation) error
	// RevokePendingForEmail supersedes any prior pending invitation for the
	// email; re-inviting never creates duplicates
	RevokePendingForEmail(ctx context.Context, email string) (int64, error)
	// Consume transitions pending → accepted atomically; a token already in
	// a terminal state or past expiry yields (nil, nil) even under
	// concurrent calls
	Consume(ctx context.Context, tokenHash string, at time.Time) (*models.AdminInvitation, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.AdminInvitation, error)
	MarkExpired(ctx context.Context, before time.Time) (int64, error)
}

// PasswordResetRepository persists single-use password reset tokens
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	// Consume transitions pending → used atomically, same contract as
	// invitation consumption
	Consume(ctx context.Context, tokenHash string, at time.Time) (*models.PasswordReset, error)
	MarkExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository appends and queries the immutable audit trail
type AuditRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	Query(ctx context.Context, q models.AuditQuery) ([]*models.AuditRecord, error)
}
