package medication

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the medication and its inventory row together.
	Create(ctx context.Context, m *Medication, initialStock, reorderLevel int) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	List(ctx context.Context, limit, offset int) ([]*StockedMedication, int, error)
	// Search matches a substring against name, generic name, and category.
	Search(ctx context.Context, q string, limit, offset int) ([]*StockedMedication, int, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	GetStock(ctx context.Context, medicationID uuid.UUID) (*Inventory, error)
	// AdjustStock applies a signed delta, failing rather than letting the
	// quantity go negative.
	AdjustStock(ctx context.Context, medicationID uuid.UUID, delta int) error
	SetReorderLevel(ctx context.Context, medicationID uuid.UUID, level int) error
	ListLowStock(ctx context.Context) ([]*StockedMedication, error)
}
