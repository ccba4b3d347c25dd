package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nestling-app/nestling-server/src/models"
)

// PostgresAuditRepository implements AuditRepository on pgx. The table is
// append-only; nothing here updates or deletes rows.
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a Postgres-backed audit repository
func NewAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

func (r *PostgresAuditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	query := `
		INSERT INTO admin_audit_log
			(actor_id, action, target, severity, metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		record.ActorID, record.Action, record.Target, record.Severity,
		record.Metadata, record.IPAddress, record.UserAgent, record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

func (r *PostgresAuditRepository) Query(ctx context.Context, q models.AuditQuery) ([]*models.AuditRecord, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q.ActorID != nil {
		add("actor_id = $%d", *q.ActorID)
	}
	if q.Action != "" {
		add("action = $%d", q.Action)
	}
	if q.Severity != "" {
		add("severity = $%d", q.Severity)
	}
	if q.Since != nil {
		add("created_at >= $%d", *q.Since)
	}
	if q.Until != nil {
		add("created_at < $%d", *q.Until)
	}

	query := `
		SELECT id, actor_id, action, target, severity, metadata, ip_address,
		       user_agent, created_at
		FROM admin_audit_log
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))
	args = append(args, q.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var records []*models.AuditRecord
	for rows.Next() {
		rec := &models.AuditRecord{}
		err := rows.Scan(
			&rec.ID, &rec.ActorID, &rec.Action, &rec.Target, &rec.Severity,
			&rec.Metadata, &rec.IPAddress, &rec.UserAgent, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ AuditRepository = (*PostgresAuditRepository)(nil)
