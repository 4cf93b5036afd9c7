package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/errs"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) validate(p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return errs.Invalid("first and last name are required")
	}
	if p.DateOfBirth.IsZero() {
		return errs.Invalid("date of birth is required")
	}
	if p.DateOfBirth.After(time.Now()) {
		return errs.Invalid("date of birth cannot be in the future")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// List returns patients, filtered by a name substring when name is non-empty.
func (s *Service) List(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	if name != "" {
		return s.patients.Search(ctx, name, limit, offset)
	}
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

// Exists lets appointment and prescription booking check the patient before
// writing a referencing record.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.patients.Exists(ctx, id)
}
