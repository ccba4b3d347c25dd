package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nestling-app/nestling-server/src/models"
)

const sessionColumns = `
	id, account_id, token_hash, refresh_token_hash, ip_address, user_agent,
	expires_at, revoked, revoked_reason, created_at, last_accessed_at`

// PostgresSessionRepository implements SessionRepository on pgx
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a Postgres-backed session repository
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*models.AdminSession, error) {
	s := &models.AdminSession{}
	err := row.Scan(
		&s.ID, &s.AccountID, &s.TokenHash, &s.RefreshTokenHash, &s.IPAddress,
		&s.UserAgent, &s.ExpiresAt, &s.Revoked, &s.RevokedReason, &s.CreatedAt,
		&s.LastAccessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresSessionRepository) Create(ctx context.Context, session *models.AdminSession) error {
	query := `
		INSERT INTO admin_sessions
			(id, account_id, token_hash, refresh_token_hash, ip_address,
			 user_agent, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID, session.AccountID, session.TokenHash, session.RefreshTokenHash,
		session.IPAddress, session.UserAgent, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin session: %w", err)
	}
	return nil
}

// FindActiveByTokenHash filters revocation and expiry in the query so the
// store's clock, not the caller's token claims, decides validity
func (r *PostgresSessionRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.AdminSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM admin_sessions
		WHERE token_hash = $1 AND NOT revoked AND expires_at > $2
	`
	return scanSession(r.pool.QueryRow(ctx, query, tokenHash, now))
}

// FindActiveByRefreshHash only filters revocation: refresh validity outlives
// the session's access-token expiry, and the refresh JWT carries its own exp
// which the token service enforces.
func (r *PostgresSessionRepository) FindActiveByRefreshHash(ctx context.Context, refreshHash string) (*models.AdminSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM admin_sessions
		WHERE refresh_token_hash = $1 AND NOT revoked
	`
	return scanSession(r.pool.QueryRow(ctx, query, refreshHash))
}

func (r *PostgresSessionRepository) UpdateTokens(ctx context.Context, id uuid.UUID, tokenHash, refreshHash string, expiresAt time.Time) error {
	query := `
		UPDATE admin_sessions
		SET token_hash = $2, refresh_token_hash = $3, expires_at = $4
		WHERE id = $1 AND NOT revoked
	`
	tag, err := r.pool.Exec(ctx, query, id, tokenHash, refreshHash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to rotate session tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found or revoked", id)
	}
	return nil
}

func (r *PostgresSessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admin_sessions SET last_accessed_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Revoke(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	query := `
		UPDATE admin_sessions
		SET revoked = true, revoked_reason = $2
		WHERE id = $1 AND NOT revoked
	`
	tag, err := r.pool.Exec(ctx, query, id, reason)
	if err != nil {
		return false, fmt.Errorf("failed to revoke session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresSessionRepository) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID, except *uuid.UUID, reason string) (int64, error) {
	query := `
		UPDATE admin_sessions
		SET revoked = true, revoked_reason = $2
		WHERE account_id = $1 AND NOT revoked AND ($3::uuid IS NULL OR id <> $3)
	`
	tag, err := r.pool.Exec(ctx, query, accountID, reason, except)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke account sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM admin_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ SessionRepository = (*PostgresSessionRepository)(nil)
