package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]*Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error
	// SetStatus moves the appointment from the expected status, recording
	// diagnosis and notes when completing. Zero rows means the record was not
	// in the expected status (or does not exist).
	SetStatus(ctx context.Context, id uuid.UUID, from, to Status, diagnosis, notes *string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
