package restock

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)
	// ListPending returns the manager's queue ordered by priority rank,
	// most urgent first, ties oldest first.
	ListPending(ctx context.Context, limit, offset int) ([]*Request, int, error)
	List(ctx context.Context, limit, offset int) ([]*Request, int, error)
	ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Request, int, error)
	// Decide moves a PENDING request to APPROVED or REJECTED, recording the
	// approver, notes, and decision time. Returns false when not PENDING.
	Decide(ctx context.Context, id, approverID uuid.UUID, to Status, notes *string) (bool, error)
	// Advance moves the row from exactly the given status to the next one.
	Advance(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
