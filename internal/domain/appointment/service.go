package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink/internal/platform/errs"
)

// PatientChecker reports whether a patient record exists. The patient
// service satisfies it.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// DoctorChecker reports whether a user exists and is a doctor. The identity
// service satisfies it.
type DoctorChecker interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	appts    Repository
	patients PatientChecker
	doctors  DoctorChecker
}

func NewService(appts Repository, patients PatientChecker, doctors DoctorChecker) *Service {
	return &Service{appts: appts, patients: patients, doctors: doctors}
}

// BookInput carries the fields the front desk enters when scheduling.
type BookInput struct {
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      time.Time `json:"appointment_date"`
	StartTime string    `json:"start_time"`
	Reason    string    `json:"reason"`
}

// Book schedules an appointment after checking that both the patient and the
// doctor exist.
func (s *Service) Book(ctx context.Context, in BookInput) (*Appointment, error) {
	if in.Date.IsZero() {
		return nil, errs.Invalid("appointment date is required")
	}
	if in.StartTime == "" {
		return nil, errs.Invalid("start time is required")
	}
	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return nil, errs.Invalid("start time must be HH:MM")
	}

	ok, err := s.patients.Exists(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Invalid("patient %s does not exist", in.PatientID)
	}
	ok, err = s.doctors.DoctorExists(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Invalid("doctor %s does not exist", in.DoctorID)
	}

	a := &Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		StartTime: in.StartTime,
		Reason:    in.Reason,
		Status:    StatusScheduled,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	log.Info().Str("appointment", a.ID.String()).Str("doctor", a.DoctorID.String()).Msg("appointment booked")
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.List(ctx, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDate(ctx, day, limit, offset)
}

// Reschedule updates the mutable booking fields of a scheduled appointment.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, in BookInput) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusScheduled {
		return nil, errs.InvalidTransition("appointment", string(a.Status), string(StatusScheduled))
	}
	if in.Date.IsZero() {
		return nil, errs.Invalid("appointment date is required")
	}
	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return nil, errs.Invalid("start time must be HH:MM")
	}
	a.Date = in.Date
	a.StartTime = in.StartTime
	a.Reason = in.Reason
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to Status, diagnosis, notes *string) (*Appointment, error) {
	moved, err := s.appts.SetStatus(ctx, id, from, to, diagnosis, notes)
	if err != nil {
		return nil, err
	}
	if !moved {
		a, err := s.appts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errs.InvalidTransition("appointment", string(a.Status), string(to))
	}
	return s.appts.GetByID(ctx, id)
}

// Complete records the outcome of a visit. Only scheduled appointments can
// be completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, diagnosis, notes string) (*Appointment, error) {
	if diagnosis == "" {
		return nil, errs.Invalid("diagnosis is required to complete an appointment")
	}
	return s.transition(ctx, id, StatusScheduled, StatusCompleted, &diagnosis, &notes)
}

// Cancel releases a scheduled slot.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusScheduled, StatusCancelled, nil, nil)
}

// MarkNoShow records that the patient did not arrive.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusScheduled, StatusNoShow, nil, nil)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appts.Delete(ctx, id)
}
