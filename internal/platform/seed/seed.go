// Package seed loads a demo dataset: one user per role, a few patients, and
// a starter medication catalog with stock. Intended for local development,
// wired to the seed subcommand.
package seed

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/medication"
	"github.com/carelink/carelink/internal/domain/patient"
	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/internal/platform/errs"
)

type Seeder struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Seeder {
	return &Seeder{pool: pool}
}

// Run inserts the demo records. It is not idempotent; running it twice fails
// on the unique usernames, which Run reports as a friendly error.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.users(ctx); err != nil {
		if errs.Is(err, errs.KindConflict) {
			return errs.E(errs.KindConflict, "demo data already present")
		}
		return err
	}
	if err := s.patients(ctx); err != nil {
		return err
	}
	if err := s.medications(ctx); err != nil {
		return err
	}
	log.Info().Msg("demo data loaded")
	return nil
}

func (s *Seeder) users(ctx context.Context) error {
	repo := identity.NewUserRepoPG(s.pool)

	demo := []struct {
		username, password, name string
		role                     identity.Role
	}{
		{"dr.house", "dr.house.demo", "Gregory House", identity.RoleDoctor},
		{"pharm.amy", "pharm.amy.demo", "Amy Santiago", identity.RolePharmacist},
		{"admin.lena", "admin.lena.demo", "Lena Ortiz", identity.RoleClinicAdmin},
		{"mgr.omar", "mgr.omar.demo", "Omar Haddad", identity.RolePharmacyManager},
	}
	for _, d := range demo {
		hash, err := auth.HashPassword(d.password)
		if err != nil {
			return err
		}
		u := &identity.User{
			Username:     d.username,
			PasswordHash: hash,
			FullName:     d.name,
			Role:         d.role,
			Enterprise:   identity.EnterpriseFor(d.role),
		}
		if err := repo.Create(ctx, u); err != nil {
			return err
		}
		log.Info().Str("username", d.username).Str("role", string(d.role)).Msg("seeded user")
	}
	return nil
}

func (s *Seeder) patients(ctx context.Context) error {
	repo := patient.NewRepoPG(s.pool)

	str := func(v string) *string { return &v }
	demo := []*patient.Patient{
		{
			FirstName: "Maria", LastName: "Gonzalez",
			DateOfBirth: time.Date(1987, time.May, 12, 0, 0, 0, 0, time.UTC),
			Gender:      "female",
			Phone:       str("555-0101"),
			BloodGroup:  str("O+"),
		},
		{
			FirstName: "James", LastName: "Chen",
			DateOfBirth: time.Date(1962, time.November, 3, 0, 0, 0, 0, time.UTC),
			Gender:      "male",
			BloodGroup:  str("A-"),
			Allergies:   str("penicillin"),
		},
		{
			FirstName: "Fatima", LastName: "Khan",
			DateOfBirth: time.Date(1995, time.February, 28, 0, 0, 0, 0, time.UTC),
			Gender:      "female",
			Email:       str("fatima.khan@example.com"),
		},
	}
	for _, p := range demo {
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(demo)).Msg("seeded patients")
	return nil
}

func (s *Seeder) medications(ctx context.Context) error {
	repo := medication.NewRepoPG(s.pool)

	str := func(v string) *string { return &v }
	demo := []struct {
		med     medication.Medication
		stock   int
		reorder int
	}{
		{medication.Medication{
			Name: "Paracetamol", GenericName: str("acetaminophen"),
			Category: "analgesic", DosageForm: "tablet", Strength: "500mg", UnitPrice: 0.10,
		}, 500, 100},
		{medication.Medication{
			Name: "Amoxicillin", Category: "antibiotic",
			DosageForm: "capsule", Strength: "250mg", UnitPrice: 0.45,
		}, 200, 50},
		{medication.Medication{
			Name: "Lisinopril", Category: "antihypertensive",
			DosageForm: "tablet", Strength: "10mg", UnitPrice: 0.30,
		}, 150, 40},
		{medication.Medication{
			Name: "Salbutamol Inhaler", GenericName: str("albuterol"),
			Category: "bronchodilator", DosageForm: "inhaler", Strength: "100mcg", UnitPrice: 12.00,
		}, 30, 10},
	}
	for _, d := range demo {
		m := d.med
		if err := repo.Create(ctx, &m, d.stock, d.reorder); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(demo)).Msg("seeded medications")
	return nil
}
