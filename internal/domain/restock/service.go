package restock

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/errs"
)

// StockAdjuster applies a signed delta to a medication's inventory. The
// medication service satisfies it.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, medicationID uuid.UUID, delta int) error
}

// StockReader reads the current inventory level, used for the snapshot
// recorded on a new request.
type StockReader interface {
	GetStockLevel(ctx context.Context, medicationID uuid.UUID) (int, error)
}

type Service struct {
	reqs   Repository
	stock  StockAdjuster
	levels StockReader
	inTx   db.TxRunner
}

func NewService(reqs Repository, stock StockAdjuster, levels StockReader, inTx db.TxRunner) *Service {
	return &Service{reqs: reqs, stock: stock, levels: levels, inTx: inTx}
}

// RequestInput is what a pharmacist submits when stock runs low.
type RequestInput struct {
	MedicationID      uuid.UUID `json:"medication_id"`
	RequestedQuantity int       `json:"requested_quantity"`
	Priority          Priority  `json:"priority"`
	Reason            string    `json:"reason"`
}

// Request creates a PENDING restock request, snapshotting the current stock
// level for the manager's review. requesterID comes from the authenticated
// caller.
func (s *Service) Request(ctx context.Context, requesterID uuid.UUID, in RequestInput) (*Request, error) {
	if in.RequestedQuantity <= 0 {
		return nil, errs.Invalid("requested quantity must be positive")
	}
	if !in.Priority.Valid() {
		return nil, errs.Invalid("unknown priority %q", in.Priority)
	}

	level, err := s.levels.GetStockLevel(ctx, in.MedicationID)
	if err != nil {
		return nil, err
	}

	rr := &Request{
		MedicationID:      in.MedicationID,
		RequestedQuantity: in.RequestedQuantity,
		CurrentStock:      level,
		Priority:          in.Priority,
		Reason:            in.Reason,
		Status:            StatusPending,
		RequesterID:       requesterID,
	}
	if err := s.reqs.Create(ctx, rr); err != nil {
		return nil, err
	}
	log.Info().Str("request", rr.ID.String()).Str("priority", string(rr.Priority)).Msg("restock requested")
	return rr, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.reqs.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	return s.reqs.List(ctx, limit, offset)
}

// ListPending returns the manager's queue, most urgent first, ties oldest
// first.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	return s.reqs.ListPending(ctx, limit, offset)
}

func (s *Service) ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return s.reqs.ListByMedication(ctx, medicationID, limit, offset)
}

// Approve moves a PENDING request to APPROVED and increments the
// medication's stock by the requested quantity, both inside one transaction.
func (s *Service) Approve(ctx context.Context, id, approverID uuid.UUID, notes string) (*Request, error) {
	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	err := s.inTx(ctx, func(txCtx context.Context) error {
		rr, err := s.reqs.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if rr.Status != StatusPending {
			return errs.InvalidTransition("restock request", string(rr.Status), string(StatusApproved))
		}

		moved, err := s.reqs.Decide(txCtx, id, approverID, StatusApproved, notesPtr)
		if err != nil {
			return err
		}
		if !moved {
			return errs.InvalidTransition("restock request", string(rr.Status), string(StatusApproved))
		}
		return s.stock.AdjustStock(txCtx, rr.MedicationID, rr.RequestedQuantity)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("request", id.String()).Str("approver", approverID.String()).Msg("restock approved")
	return s.reqs.GetByID(ctx, id)
}

// Reject moves a PENDING request to REJECTED. Stock is untouched.
func (s *Service) Reject(ctx context.Context, id, approverID uuid.UUID, notes string) (*Request, error) {
	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	moved, err := s.reqs.Decide(ctx, id, approverID, StatusRejected, notesPtr)
	if err != nil {
		return nil, err
	}
	if !moved {
		rr, err := s.reqs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errs.InvalidTransition("restock request", string(rr.Status), string(StatusRejected))
	}
	return s.reqs.GetByID(ctx, id)
}

func (s *Service) advance(ctx context.Context, id uuid.UUID, from, to Status) (*Request, error) {
	moved, err := s.reqs.Advance(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		rr, err := s.reqs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errs.InvalidTransition("restock request", string(rr.Status), string(to))
	}
	return s.reqs.GetByID(ctx, id)
}

// MarkOrdered records that the approved order went out to the supplier.
func (s *Service) MarkOrdered(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.advance(ctx, id, StatusApproved, StatusOrdered)
}

// MarkReceived records supplier delivery, closing the request.
func (s *Service) MarkReceived(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.advance(ctx, id, StatusOrdered, StatusReceived)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rr, err := s.reqs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rr.Status != StatusPending && rr.Status != StatusRejected {
		return errs.E(errs.KindConflict, "only pending or rejected requests can be deleted")
	}
	return s.reqs.Delete(ctx, id)
}
