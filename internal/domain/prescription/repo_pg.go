package prescription

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

const rxCols = `id, appointment_id, patient_id, doctor_id, medication_id, dosage, quantity, refills, status, issued_at, filled_at, pharmacist_id, pharmacist_notes`

func scanRx(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.AppointmentID, &p.PatientID, &p.DoctorID, &p.MedicationID,
		&p.Dosage, &p.Quantity, &p.Refills, &p.Status, &p.IssuedAt,
		&p.FilledAt, &p.PharmacistID, &p.PharmacistNotes)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, appointment_id, patient_id, doctor_id, medication_id, dosage, quantity, refills, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.AppointmentID, p.PatientID, p.DoctorID, p.MedicationID,
		p.Dosage, p.Quantity, p.Refills, p.Status)
	return errs.FromStore(err, "prescription")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := scanRx(r.conn(ctx).QueryRow(ctx,
		`SELECT `+rxCols+` FROM prescriptions WHERE id = $1`, id))
	if err != nil {
		return nil, errs.FromStore(err, "prescription")
	}
	return p, nil
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := scanRx(r.conn(ctx).QueryRow(ctx,
		`SELECT `+rxCols+` FROM prescriptions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, errs.FromStore(err, "prescription")
	}
	return p, nil
}

func (r *repoPG) listWhere(ctx context.Context, where, order string, args []interface{}, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescriptions `+where, args...).Scan(&total); err != nil {
		return nil, 0, errs.FromStore(err, "prescription")
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM prescriptions %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		rxCols, where, order, n+1, n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errs.FromStore(err, "prescription")
	}
	defer rows.Close()

	var rxs []*Prescription
	for rows.Next() {
		p, err := scanRx(rows)
		if err != nil {
			return nil, 0, errs.FromStore(err, "prescription")
		}
		rxs = append(rxs, p)
	}
	return rxs, total, errs.FromStore(rows.Err(), "prescription")
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.listWhere(ctx, `WHERE patient_id = $1`, `issued_at DESC`, []interface{}{patientID}, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.listWhere(ctx, `WHERE doctor_id = $1`, `issued_at DESC`, []interface{}{doctorID}, limit, offset)
}

func (r *repoPG) ListPending(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return r.listWhere(ctx, `WHERE status = 'PENDING'`, `issued_at ASC`, nil, limit, offset)
}

func (r *repoPG) MarkFilled(ctx context.Context, id, pharmacistID uuid.UUID, notes *string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions
		SET status = 'FILLED', pharmacist_id = $2, pharmacist_notes = $3, filled_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`,
		id, pharmacistID, notes)
	if err != nil {
		return false, errs.FromStore(err, "prescription")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Advance(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, errs.FromStore(err, "prescription")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return errs.FromStore(err, "prescription")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("prescription")
	}
	return nil
}
