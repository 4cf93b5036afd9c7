package medication

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink/internal/platform/errs"
)

type Service struct {
	meds Repository
}

func NewService(meds Repository) *Service {
	return &Service{meds: meds}
}

// CreateInput is a medication plus its opening inventory numbers.
type CreateInput struct {
	Medication
	InitialStock int `json:"initial_stock"`
	ReorderLevel int `json:"reorder_level"`
}

func (s *Service) Create(ctx context.Context, in *CreateInput) (*Medication, error) {
	if in.Name == "" {
		return nil, errs.Invalid("medication name is required")
	}
	if in.UnitPrice < 0 {
		return nil, errs.Invalid("unit price cannot be negative")
	}
	if in.InitialStock < 0 {
		return nil, errs.Invalid("initial stock cannot be negative")
	}
	if in.ReorderLevel < 0 {
		return nil, errs.Invalid("reorder level cannot be negative")
	}
	m := in.Medication
	if err := s.meds.Create(ctx, &m, in.InitialStock, in.ReorderLevel); err != nil {
		return nil, err
	}
	log.Info().Str("medication", m.Name).Int("stock", in.InitialStock).Msg("medication created")
	return &m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.meds.GetByID(ctx, id)
}

// List returns medications with stock, filtered by a substring when q is
// non-empty.
func (s *Service) List(ctx context.Context, q string, limit, offset int) ([]*StockedMedication, int, error) {
	if q != "" {
		return s.meds.Search(ctx, q, limit, offset)
	}
	return s.meds.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return errs.Invalid("medication name is required")
	}
	if m.UnitPrice < 0 {
		return errs.Invalid("unit price cannot be negative")
	}
	return s.meds.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.meds.Delete(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.meds.Exists(ctx, id)
}

func (s *Service) GetStock(ctx context.Context, medicationID uuid.UUID) (*Inventory, error) {
	return s.meds.GetStock(ctx, medicationID)
}

// AdjustStock applies a signed delta to the medication's inventory. It is
// also the hook prescription filling and restock approval call inside their
// transactions.
func (s *Service) AdjustStock(ctx context.Context, medicationID uuid.UUID, delta int) error {
	if delta == 0 {
		return errs.Invalid("stock adjustment delta cannot be zero")
	}
	return s.meds.AdjustStock(ctx, medicationID, delta)
}

// GetStockLevel returns just the quantity on hand, used by restock requests
// to snapshot stock at request time.
func (s *Service) GetStockLevel(ctx context.Context, medicationID uuid.UUID) (int, error) {
	inv, err := s.meds.GetStock(ctx, medicationID)
	if err != nil {
		return 0, err
	}
	return inv.QuantityAvailable, nil
}

func (s *Service) SetReorderLevel(ctx context.Context, medicationID uuid.UUID, level int) error {
	if level < 0 {
		return errs.Invalid("reorder level cannot be negative")
	}
	return s.meds.SetReorderLevel(ctx, medicationID, level)
}

// ListLowStock returns medications at or below their reorder level.
func (s *Service) ListLowStock(ctx context.Context) ([]*StockedMedication, error) {
	return s.meds.ListLowStock(ctx)
}
