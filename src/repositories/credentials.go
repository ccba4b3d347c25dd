package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nestling-app/nestling-server/src/models"
)

// PostgresInvitationRepository implements InvitationRepository on pgx
type PostgresInvitationRepository struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository creates a Postgres-backed invitation repository
func NewInvitationRepository(pool *pgxpool.Pool) *PostgresInvitationRepository {
	return &PostgresInvitationRepository{pool: pool}
}

func (r *PostgresInvitationRepository) Create(ctx context.Context, invitation *models.AdminInvitation) error {
	query := `
		INSERT INTO admin_invitations
			(id, email, token_hash, role_id, invited_by, status, expires_at, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		invitation.ID, invitation.Email, invitation.TokenHash, invitation.RoleID,
		invitation.InvitedBy, invitation.Status, invitation.ExpiresAt, invitation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (r *PostgresInvitationRepository) RevokePendingForEmail(ctx context.Context, email string) (int64, error) {
	query := `
		UPDATE admin_invitations
		SET status = $2
		WHERE email = lower($1) AND status = $3
	`
	tag, err := r.pool.Exec(ctx, query, email, models.TokenStatusRevoked, models.TokenStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke pending invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Consume is a single conditional update: of N concurrent calls with the
// same token, exactly one sees a row.
func (r *PostgresInvitationRepository) Consume(ctx context.Context, tokenHash string, at time.Time) (*models.AdminInvitation, error) {
	query := `
		UPDATE admin_invitations i
		SET status = $3, consumed_at = $2
		FROM admin_roles r
		WHERE i.token_hash = $1
		  AND i.status = $4
		  AND i.expires_at > $2
		  AND r.id = i.role_id
		RETURNING i.id, i.email, i.token_hash, i.role_id, r.name, i.invited_by,
		          i.status, i.expires_at, i.consumed_at, i.created_at
	`
	inv := &models.AdminInvitation{}
	err := r.pool.QueryRow(ctx, query, tokenHash, at,
		models.TokenStatusAccepted, models.TokenStatusPending).Scan(
		&inv.ID, &inv.Email, &inv.TokenHash, &inv.RoleID, &inv.RoleName,
		&inv.InvitedBy, &inv.Status, &inv.ExpiresAt, &inv.ConsumedAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume invitation: %w", err)
	}
	return inv, nil
}

func (r *PostgresInvitationRepository) ListPending(ctx context.Context, limit, offset int) ([]*models.AdminInvitation, error) {
	query := `
		SELECT i.id, i.email, i.token_hash, i.role_id, r.name, i.invited_by,
		       i.status, i.expires_at, i.consumed_at, i.created_at
		FROM admin_invitations i
		JOIN admin_roles r ON r.id = i.role_id
		WHERE i.status = $1
		ORDER BY i.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, models.TokenStatusPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.AdminInvitation
	for rows.Next() {
		inv := &models.AdminInvitation{}
		err := rows.Scan(
			&inv.ID, &inv.Email, &inv.TokenHash, &inv.RoleID, &inv.RoleName,
			&inv.InvitedBy, &inv.Status, &inv.ExpiresAt, &inv.ConsumedAt, &inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *PostgresInvitationRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE admin_invitations
		SET status = $2
		WHERE status = $3 AND expires_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, before, models.TokenStatusExpired, models.TokenStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ InvitationRepository = (*PostgresInvitationRepository)(nil)

// PostgresPasswordResetRepository implements PasswordResetRepository on pgx
type PostgresPasswordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository creates a Postgres-backed reset repository
func NewPasswordResetRepository(pool *pgxpool.Pool) *PostgresPasswordResetRepository {
	return &PostgresPasswordResetRepository{pool: pool}
}

func (r *PostgresPasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	query := `
		INSERT INTO admin_password_resets
			(id, account_id, token_hash, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		reset.ID, reset.AccountID, reset.TokenHash, reset.Status,
		reset.ExpiresAt, reset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

func (r *PostgresPasswordResetRepository) Consume(ctx context.Context, tokenHash string, at time.Time) (*models.PasswordReset, error) {
	query := `
		UPDATE admin_password_resets
		SET status = $3, consumed_at = $2
		WHERE token_hash = $1 AND status = $4 AND expires_at > $2
		RETURNING id, account_id, token_hash, status, expires_at, consumed_at, created_at
	`
	reset := &models.PasswordReset{}
	err := r.pool.QueryRow(ctx, query, tokenHash, at,
		models.TokenStatusUsed, models.TokenStatusPending).Scan(
		&reset.ID, &reset.AccountID, &reset.TokenHash, &reset.Status,
		&reset.ExpiresAt, &reset.ConsumedAt, &reset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume password reset: %w", err)
	}
	return reset, nil
}

func (r *PostgresPasswordResetRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE admin_password_resets
		SET status = $2
		WHERE status = $3 AND expires_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, before, models.TokenStatusExpired, models.TokenStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to expire password resets: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ PasswordResetRepository = (*PostgresPasswordResetRepository)(nil)
