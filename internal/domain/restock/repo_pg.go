package restock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/errs"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reqCols = `id, medication_id, requested_quantity, current_stock, priority, reason, status, requester_id, approver_id, manager_notes, requested_at, decided_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var rr Request
	err := row.Scan(&rr.ID, &rr.MedicationID, &rr.RequestedQuantity, &rr.CurrentStock,
		&rr.Priority, &rr.Reason, &rr.Status, &rr.RequesterID,
		&rr.ApproverID, &rr.ManagerNotes, &rr.RequestedAt, &rr.DecidedAt)
	return &rr, err
}

func (r *repoPG) Create(ctx context.Context, rr *Request) error {
	rr.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO restock_requests (id, medication_id, requested_quantity, current_stock, priority, reason, status, requester_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rr.ID, rr.MedicationID, rr.RequestedQuantity, rr.CurrentStock,
		rr.Priority, rr.Reason, rr.Status, rr.RequesterID)
	return errs.FromStore(err, "restock request")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	rr, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reqCols+` FROM restock_requests WHERE id = $1`, id))
	if err != nil {
		return nil, errs.FromStore(err, "restock request")
	}
	return rr, nil
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error) {
	rr, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reqCols+` FROM restock_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, errs.FromStore(err, "restock request")
	}
	return rr, nil
}

func (r *repoPG) listWhere(ctx context.Context, where, order string, args []interface{}, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM restock_requests `+where, args...).Scan(&total); err != nil {
		return nil, 0, errs.FromStore(err, "restock request")
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM restock_requests %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		reqCols, where, order, n+1, n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errs.FromStore(err, "restock request")
	}
	defer rows.Close()

	var reqs []*Request
	for rows.Next() {
		rr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, errs.FromStore(err, "restock request")
		}
		reqs = append(reqs, rr)
	}
	return reqs, total, errs.FromStore(rows.Err(), "restock request")
}

// priorityRank mirrors Priority.Rank for SQL ordering.
const priorityRank = `CASE priority
	WHEN 'URGENT' THEN 1
	WHEN 'HIGH' THEN 2
	WHEN 'MEDIUM' THEN 3
	ELSE 4
END`

func (r *repoPG) ListPending(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	return r.listWhere(ctx, `WHERE status = 'PENDING'`,
		priorityRank+`, requested_at ASC`, nil, limit, offset)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	return r.listWhere(ctx, "", `requested_at DESC`, nil, limit, offset)
}

func (r *repoPG) ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return r.listWhere(ctx, `WHERE medication_id = $1`, `requested_at DESC`,
		[]interface{}{medicationID}, limit, offset)
}

func (r *repoPG) Decide(ctx context.Context, id, approverID uuid.UUID, to Status, notes *string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE restock_requests
		SET status = $3, approver_id = $2, manager_notes = $4, decided_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`,
		id, approverID, to, notes)
	if err != nil {
		return false, errs.FromStore(err, "restock request")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Advance(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE restock_requests SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, errs.FromStore(err, "restock request")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM restock_requests WHERE id = $1`, id)
	if err != nil {
		return errs.FromStore(err, "restock request")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("restock request")
	}
	return nil
}
