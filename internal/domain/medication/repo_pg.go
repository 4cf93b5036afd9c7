package medication

import (
	"context"

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

const medCols = `m.id, m.name, m.generic_name, m.category, m.dosage_form, m.strength, m.manufacturer, m.unit_price, m.created_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Name, &m.GenericName, &m.Category, &m.DosageForm,
		&m.Strength, &m.Manufacturer, &m.UnitPrice, &m.CreatedAt)
	return &m, err
}

func scanStocked(rows pgx.Rows) (*StockedMedication, error) {
	var sm StockedMedication
	err := rows.Scan(&sm.ID, &sm.Name, &sm.GenericName, &sm.Category, &sm.DosageForm,
		&sm.Strength, &sm.Manufacturer, &sm.UnitPrice, &sm.CreatedAt,
		&sm.QuantityAvailable, &sm.ReorderLevel)
	return &sm, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication, initialStock, reorderLevel int) error {
	m.ID = uuid.New()
	err := db.RunInTx(ctx, r.pool, func(txCtx context.Context) error {
		tx := db.TxFromContext(txCtx)
		if _, err := tx.Exec(txCtx, `
			INSERT INTO medications (id, name, generic_name, category, dosage_form, strength, manufacturer, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			m.ID, m.Name, m.GenericName, m.Category, m.DosageForm,
			m.Strength, m.Manufacturer, m.UnitPrice); err != nil {
			return err
		}
		_, err := tx.Exec(txCtx, `
			INSERT INTO pharmacy_inventory (medication_id, quantity_available, reorder_level)
			VALUES ($1,$2,$3)`, m.ID, initialStock, reorderLevel)
		return err
	})
	return errs.FromStore(err, "medication")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := scanMedication(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medCols+` FROM medications m WHERE m.id = $1`, id))
	if err != nil {
		return nil, errs.FromStore(err, "medication")
	}
	return m, nil
}

const stockedQuery = `
	SELECT ` + medCols + `, i.quantity_available, i.reorder_level
	FROM medications m
	JOIN pharmacy_inventory i ON i.medication_id = m.id`

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*StockedMedication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications`).Scan(&total); err != nil {
		return nil, 0, errs.FromStore(err, "medication")
	}

	rows, err := r.conn(ctx).Query(ctx,
		stockedQuery+` ORDER BY m.name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errs.FromStore(err, "medication")
	}
	defer rows.Close()
	meds, err := collectStocked(rows)
	return meds, total, err
}

func (r *repoPG) Search(ctx context.Context, q string, limit, offset int) ([]*StockedMedication, int, error) {
	pattern := "%" + q + "%"

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM medications
		WHERE name ILIKE $1 OR generic_name ILIKE $1 OR category ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, errs.FromStore(err, "medication")
	}

	rows, err := r.conn(ctx).Query(ctx, stockedQuery+`
		WHERE m.name ILIKE $1 OR m.generic_name ILIKE $1 OR m.category ILIKE $1
		ORDER BY m.name LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, errs.FromStore(err, "medication")
	}
	defer rows.Close()
	meds, err := collectStocked(rows)
	return meds, total, err
}

func collectStocked(rows pgx.Rows) ([]*StockedMedication, error) {
	var meds []*StockedMedication
	for rows.Next() {
		sm, err := scanStocked(rows)
		if err != nil {
			return nil, errs.FromStore(err, "medication")
		}
		meds = append(meds, sm)
	}
	return meds, errs.FromStore(rows.Err(), "medication")
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET name=$2, generic_name=$3, category=$4, dosage_form=$5,
			strength=$6, manufacturer=$7, unit_price=$8
		WHERE id = $1`,
		m.ID, m.Name, m.GenericName, m.Category, m.DosageForm,
		m.Strength, m.Manufacturer, m.UnitPrice)
	if err != nil {
		return errs.FromStore(err, "medication")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("medication")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	err := db.RunInTx(ctx, r.pool, func(txCtx context.Context) error {
		tx := db.TxFromContext(txCtx)
		if _, err := tx.Exec(txCtx,
			`DELETE FROM pharmacy_inventory WHERE medication_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(txCtx, `DELETE FROM medications WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.NotFound("medication")
		}
		return nil
	})
	return errs.FromStore(err, "medication")
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medications WHERE id = $1)`, id).Scan(&exists)
	return exists, errs.FromStore(err, "medication")
}

func (r *repoPG) GetStock(ctx context.Context, medicationID uuid.UUID) (*Inventory, error) {
	var inv Inventory
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT medication_id, quantity_available, reorder_level, updated_at
		FROM pharmacy_inventory WHERE medication_id = $1`, medicationID).
		Scan(&inv.MedicationID, &inv.QuantityAvailable, &inv.ReorderLevel, &inv.UpdatedAt)
	if err != nil {
		return nil, errs.FromStore(err, "inventory")
	}
	return &inv, nil
}

// AdjustStock applies the delta in a single guarded UPDATE. A zero-row result
// means either the row does not exist or the decrement would go negative; the
// follow-up existence check tells the two apart.
func (r *repoPG) AdjustStock(ctx context.Context, medicationID uuid.UUID, delta int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy_inventory
		SET quantity_available = quantity_available + $2, updated_at = NOW()
		WHERE medication_id = $1 AND quantity_available + $2 >= 0`,
		medicationID, delta)
	if err != nil {
		return errs.FromStore(err, "inventory")
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.Exists(ctx, medicationID)
		if err != nil {
			return err
		}
		if !exists {
			return errs.NotFound("medication")
		}
		return errs.InsufficientStock(medicationID.String())
	}
	return nil
}

func (r *repoPG) SetReorderLevel(ctx context.Context, medicationID uuid.UUID, level int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy_inventory SET reorder_level = $2, updated_at = NOW()
		WHERE medication_id = $1`, medicationID, level)
	if err != nil {
		return errs.FromStore(err, "inventory")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("medication")
	}
	return nil
}

func (r *repoPG) ListLowStock(ctx context.Context) ([]*StockedMedication, error) {
	rows, err := r.conn(ctx).Query(ctx, stockedQuery+`
		WHERE i.quantity_available <= i.reorder_level
		ORDER BY i.quantity_available ASC`)
	if err != nil {
		return nil, errs.FromStore(err, "medication")
	}
	defer rows.Close()
	return collectStocked(rows)
}
