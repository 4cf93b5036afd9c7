package prescription

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/errs"
)

// StockAdjuster applies a signed delta to a medication's inventory, failing
// with KindInsufficientStock rather than going negative. The medication
// service satisfies it.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, medicationID uuid.UUID, delta int) error
}

// MedicationChecker reports whether a medication exists.
type MedicationChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PatientChecker reports whether a patient exists.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	rxs      Repository
	stock    StockAdjuster
	meds     MedicationChecker
	patients PatientChecker
	inTx     db.TxRunner
}

func NewService(rxs Repository, stock StockAdjuster, meds MedicationChecker, patients PatientChecker, inTx db.TxRunner) *Service {
	return &Service{rxs: rxs, stock: stock, meds: meds, patients: patients, inTx: inTx}
}

// IssueInput is what a doctor submits when prescribing.
type IssueInput struct {
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	PatientID     uuid.UUID  `json:"patient_id"`
	MedicationID  uuid.UUID  `json:"medication_id"`
	Dosage        string     `json:"dosage"`
	Quantity      int        `json:"quantity"`
	Refills       int        `json:"refills"`
}

// Issue creates a prescription in PENDING after checking the patient and
// medication exist. doctorID comes from the authenticated caller, not the
// request body.
func (s *Service) Issue(ctx context.Context, doctorID uuid.UUID, in IssueInput) (*Prescription, error) {
	if in.Dosage == "" {
		return nil, errs.Invalid("dosage is required")
	}
	if in.Quantity <= 0 {
		return nil, errs.Invalid("quantity must be positive")
	}
	if in.Refills < 0 {
		return nil, errs.Invalid("refills cannot be negative")
	}

	ok, err := s.patients.Exists(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Invalid("patient %s does not exist", in.PatientID)
	}
	ok, err = s.meds.Exists(ctx, in.MedicationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Invalid("medication %s does not exist", in.MedicationID)
	}

	p := &Prescription{
		AppointmentID: in.AppointmentID,
		PatientID:     in.PatientID,
		DoctorID:      doctorID,
		MedicationID:  in.MedicationID,
		Dosage:        in.Dosage,
		Quantity:      in.Quantity,
		Refills:       in.Refills,
		Status:        StatusPending,
	}
	if err := s.rxs.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("prescription", p.ID.String()).Str("doctor", doctorID.String()).Msg("prescription issued")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.rxs.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.rxs.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.rxs.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.rxs.ListPending(ctx, limit, offset)
}

// Fill moves a PENDING prescription to FILLED and decrements the
// medication's stock by its quantity, both inside one transaction. A failure
// on either side rolls back the other, so status and stock never diverge.
func (s *Service) Fill(ctx context.Context, id, pharmacistID uuid.UUID, notes string) (*Prescription, error) {
	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	err := s.inTx(ctx, func(txCtx context.Context) error {
		p, err := s.rxs.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if p.Status != StatusPending {
			return errs.InvalidTransition("prescription", string(p.Status), string(StatusFilled))
		}

		moved, err := s.rxs.MarkFilled(txCtx, id, pharmacistID, notesPtr)
		if err != nil {
			return err
		}
		if !moved {
			return errs.InvalidTransition("prescription", string(p.Status), string(StatusFilled))
		}
		return s.stock.AdjustStock(txCtx, p.MedicationID, -p.Quantity)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("prescription", id.String()).Str("pharmacist", pharmacistID.String()).Msg("prescription filled")
	return s.rxs.GetByID(ctx, id)
}

func (s *Service) advance(ctx context.Context, id uuid.UUID, from, to Status) (*Prescription, error) {
	moved, err := s.rxs.Advance(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		p, err := s.rxs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errs.InvalidTransition("prescription", string(p.Status), string(to))
	}
	return s.rxs.GetByID(ctx, id)
}

// MarkReady moves FILLED to READY_FOR_PICKUP.
func (s *Service) MarkReady(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.advance(ctx, id, StatusFilled, StatusReadyForPickup)
}

// Complete moves READY_FOR_PICKUP to COMPLETED when the patient collects it.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.advance(ctx, id, StatusReadyForPickup, StatusCompleted)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.rxs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// Once the pharmacy has acted on it the record is part of the stock
	// audit trail and stays.
	if p.Status != StatusPending {
		return errs.E(errs.KindConflict, "only pending prescriptions can be deleted")
	}
	return s.rxs.Delete(ctx, id)
}
