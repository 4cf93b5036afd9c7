package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// GetByIDForUpdate locks the row for the rest of the transaction. Only
	// meaningful inside a transaction context.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	// ListPending is the pharmacy work queue, oldest first.
	ListPending(ctx context.Context, limit, offset int) ([]*Prescription, int, error)
	// MarkFilled advances PENDING to FILLED, recording the pharmacist, notes,
	// and fill time. Returns false when the row was not PENDING.
	MarkFilled(ctx context.Context, id, pharmacistID uuid.UUID, notes *string) (bool, error)
	// Advance moves the row from exactly the given status to the next one.
	// Returns false when the row was not in the expected status.
	Advance(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
