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

const accountColumns = `
	a.id, a.email, a.password_hash, a.status, a.role_id, r.name,
	a.failed_login_attempts, a.locked_until, a.login_count, a.last_login_at,
	a.created_by, a.created_at, a.updated_at`

// PostgresAccountRepository implements AccountRepository on pgx
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a Postgres-backed account repository
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*models.AdminAccount, error) {
	a := &models.AdminAccount{}
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Status, &a.RoleID, &a.RoleName,
		&a.FailedLoginAttempts, &a.LockedUntil, &a.LoginCount, &a.LastLoginAt,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.AdminAccount) error {
	query := `
		INSERT INTO admin_accounts
			(id, email, password_hash, status, role_id, created_by, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.Status,
		account.RoleID, account.CreatedBy, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM admin_accounts a
		JOIN admin_roles r ON r.id = a.role_id
		WHERE a.id = $1
	`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM admin_accounts a
		JOIN admin_roles r ON r.id = a.role_id
		WHERE a.email = lower($1)
	`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresAccountRepository) List(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM admin_accounts a
		JOIN admin_roles r ON r.id = a.role_id
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.AdminAccount
	for rows.Next() {
		a := &models.AdminAccount{}
		err := rows.Scan(
			&a.ID, &a.Email, &a.PasswordHash, &a.Status, &a.RoleID, &a.RoleName,
			&a.FailedLoginAttempts, &a.LockedUntil, &a.LoginCount, &a.LastLoginAt,
			&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PostgresAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_accounts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admin accounts: %w", err)
	}
	return count, nil
}

func (r *PostgresAccountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE admin_accounts SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("admin account %s not found", id)
	}
	return nil
}

// UpdateStatus is a conditional update; concurrent writers cannot both
// observe the same pre-state
func (r *PostgresAccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.AccountStatus) (bool, error) {
	query := `
		UPDATE admin_accounts
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update account status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresAccountRepository) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE admin_accounts
		SET failed_login_attempts = 0,
		    locked_until = NULL,
		    login_count = login_count + 1,
		    last_login_at = $2,
		    updated_at = now()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to record login success: %w", err)
	}
	return nil
}

// RecordLoginFailure increments the counter in a single statement so two
// concurrent failures cannot both read the same value
func (r *PostgresAccountRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (int32, bool, error) {
	query := `
		UPDATE admin_accounts
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE
		        WHEN failed_login_attempts + 1 >= $2 THEN $3
		        ELSE locked_until
		    END,
		    updated_at = now()
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until IS NOT NULL AND locked_until = $3
	`
	var attempts int32
	var locked bool
	err := r.pool.QueryRow(ctx, query, id, threshold, lockUntil).Scan(&attempts, &locked)
	if err != nil {
		return 0, false, fmt.Errorf("failed to record login failure: %w", err)
	}
	return attempts, locked, nil
}

// Ensure interface compliance
var _ AccountRepository = (*PostgresAccountRepository)(nil)

// PostgresRoleRepository implements RoleRepository on pgx
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a Postgres-backed role repository
func NewRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

func (r *PostgresRoleRepository) GetByName(ctx context.Context, name string) (*models.AdminRole, error) {
	return r.getRole(ctx, `SELECT id, name, display_name FROM admin_roles WHERE name = $1`, name)
}

func (r *PostgresRoleRepository) GetByID(ctx context.Context, id int32) (*models.AdminRole, error) {
	return r.getRole(ctx, `SELECT id, name, display_name FROM admin_roles WHERE id = $1`, id)
}

func (r *PostgresRoleRepository) getRole(ctx context.Context, query string, arg interface{}) (*models.AdminRole, error) {
	role := &models.AdminRole{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(&role.ID, &role.Name, &role.DisplayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

func (r *PostgresRoleRepository) PermissionsForRole(ctx context.Context, roleID int32) ([]string, error) {
	query := `
		SELECT p.name
		FROM admin_permissions p
		JOIN admin_role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name
	`
	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

var _ RoleRepository = (*PostgresRoleRepository)(nil)
