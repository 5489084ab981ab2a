package postgres

import (
	"context"
	"errors"
	"fmt"

	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PayoutRepo implements ports.PayoutRepository.
//
// Payout rows carry the status and the three approval flags; audit entries
// live in payout_audit_log as an append-only child table ordered by insert.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

const payoutColumns = `id, vendor_id, amount, status,
	approved_security, approved_finance, approved_admin, created_at, updated_at`

// Create inserts a new payout within a transaction.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	query := `INSERT INTO payouts (id, vendor_id, amount, status,
		approved_security, approved_finance, approved_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.VendorID, p.Amount, p.Status,
		p.Approvals.Security, p.Approvals.Finance, p.Approvals.Admin,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// GetByID fetches a payout and its full audit log (non-locking read).
func (r *PayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`

	p, err := scanPayout(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payout by id: %w", err)
	}

	if err := r.loadAuditLog(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByIDForUpdate fetches a payout with a row lock, serializing
// concurrent mutation on the same payout. MUST be called within a transaction.
// The audit log is not loaded here; workflow decisions never depend on it.
func (r *PayoutRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1 FOR UPDATE`

	p, err := scanPayout(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payout for update: %w", err)
	}
	return p, nil
}

// Update persists the payout's status and approval flags within a transaction.
func (r *PayoutRepo) Update(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	query := `UPDATE payouts SET status = $1,
		approved_security = $2, approved_finance = $3, approved_admin = $4,
		updated_at = NOW()
		WHERE id = $5`

	tag, err := tx.Exec(ctx, query,
		p.Status, p.Approvals.Security, p.Approvals.Finance, p.Approvals.Admin, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payout not found: %s", p.ID)
	}
	return nil
}

// AppendAudit adds one entry to the payout's audit log within a transaction.
// Entries are never updated or deleted.
func (r *PayoutRepo) AppendAudit(ctx context.Context, tx pgx.Tx, payoutID uuid.UUID, entry string) error {
	query := `INSERT INTO payout_audit_log (payout_id, entry, created_at)
		VALUES ($1, $2, NOW())`

	if _, err := tx.Exec(ctx, query, payoutID, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns a page of payouts matching the filter plus the total count.
// Audit logs are not loaded for list views.
func (r *PayoutRepo) List(ctx context.Context, params ports.PayoutListParams) ([]domain.Payout, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	argn := 1

	if params.VendorID != nil {
		where += fmt.Sprintf(" AND vendor_id = $%d", argn)
		args = append(args, *params.VendorID)
		argn++
	}
	if params.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argn)
		args = append(args, *params.Status)
		argn++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM payouts` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payouts: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	query := `SELECT ` + payoutColumns + ` FROM payouts` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argn, argn+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	payouts := []domain.Payout{}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payout row: %w", err)
		}
		payouts = append(payouts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payout rows: %w", err)
	}

	return payouts, total, nil
}

// GetStats returns aggregated payout statistics, optionally scoped to one vendor.
func (r *PayoutRepo) GetStats(ctx context.Context, vendorID *uuid.UUID) (*ports.PayoutStats, error) {
	query := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status IN ('PENDING_APPROVAL', 'APPROVED_SECURITY', 'APPROVED_FINANCE')),
		COUNT(*) FILTER (WHERE status = 'READY_FOR_PAYOUT'),
		COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		COUNT(*) FILTER (WHERE status = 'REJECTED'),
		COALESCE(SUM(amount) FILTER (WHERE status = 'COMPLETED'), 0)
		FROM payouts`

	args := []any{}
	if vendorID != nil {
		query += ` WHERE vendor_id = $1`
		args = append(args, *vendorID)
	}

	stats := &ports.PayoutStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalPayouts, &stats.Pending, &stats.Ready,
		&stats.Completed, &stats.Rejected, &stats.TotalPaidOut,
	)
	if err != nil {
		return nil, fmt.Errorf("get payout stats: %w", err)
	}
	return stats, nil
}

func (r *PayoutRepo) loadAuditLog(ctx context.Context, p *domain.Payout) error {
	query := `SELECT entry FROM payout_audit_log WHERE payout_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("load audit log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return fmt.Errorf("scan audit entry: %w", err)
		}
		p.AuditLog = append(p.AuditLog, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate audit entries: %w", err)
	}
	return nil
}

func scanPayout(row pgx.Row) (*domain.Payout, error) {
	p := &domain.Payout{}
	err := row.Scan(
		&p.ID, &p.VendorID, &p.Amount, &p.Status,
		&p.Approvals.Security, &p.Approvals.Finance, &p.Approvals.Admin,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
