package appointment

import (
	"context"
	"fmt"
	"time"

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

const apptCols = `id, patient_id, doctor_id, appointment_date, start_time, reason, status, diagnosis, notes, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.StartTime,
		&a.Reason, &a.Status, &a.Diagnosis, &a.Notes, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, start_time, reason, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.StartTime, a.Reason, a.Status)
	return errs.FromStore(err, "appointment")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		return nil, errs.FromStore(err, "appointment")
	}
	return a, nil
}

func (r *repoPG) listWhere(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments `+where, args...).Scan(&total); err != nil {
		return nil, 0, errs.FromStore(err, "appointment")
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM appointments %s ORDER BY appointment_date DESC, start_time DESC LIMIT $%d OFFSET $%d`,
		apptCols, where, n+1, n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errs.FromStore(err, "appointment")
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, errs.FromStore(err, "appointment")
		}
		appts = append(appts, a)
	}
	return appts, total, errs.FromStore(rows.Err(), "appointment")
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, "", nil, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE doctor_id = $1`, []interface{}{doctorID}, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *repoPG) ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE appointment_date = $1`, []interface{}{day}, limit, offset)
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET patient_id=$2, doctor_id=$3, appointment_date=$4,
			start_time=$5, reason=$6
		WHERE id = $1`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.StartTime, a.Reason)
	if err != nil {
		return errs.FromStore(err, "appointment")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("appointment")
	}
	return nil
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, from, to Status, diagnosis, notes *string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET status = $3,
			diagnosis = COALESCE($4, diagnosis),
			notes = COALESCE($5, notes)
		WHERE id = $1 AND status = $2`,
		id, from, to, diagnosis, notes)
	if err != nil {
		return false, errs.FromStore(err, "appointment")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return errs.FromStore(err, "appointment")
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("appointment")
	}
	return nil
}
