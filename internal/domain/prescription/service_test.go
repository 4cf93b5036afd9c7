package prescription

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/errs"
)

// The mock store backs both the prescription repository and the stock
// adjuster so a single transaction runner can snapshot and restore the whole
// state, mimicking a database rollback.
type mockStore struct {
	rxs   map[uuid.UUID]*Prescription
	stock map[uuid.UUID]int
}

func newMockStore() *mockStore {
	return &mockStore{
		rxs:   make(map[uuid.UUID]*Prescription),
		stock: make(map[uuid.UUID]int),
	}
}

func (m *mockStore) snapshot() *mockStore {
	c := newMockStore()
	for id, p := range m.rxs {
		cp := *p
		c.rxs[id] = &cp
	}
	for id, q := range m.stock {
		c.stock[id] = q
	}
	return c
}

func (m *mockStore) restore(s *mockStore) {
	m.rxs = s.rxs
	m.stock = s.stock
}

// runner rolls the store back when the closure fails, like RunInTx does.
func (m *mockStore) runner(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := m.snapshot()
	if err := fn(ctx); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

// -- Repository --

func (m *mockStore) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.IssuedAt = time.Now()
	m.rxs[p.ID] = p
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.rxs[id]
	if !ok {
		return nil, errs.NotFound("prescription")
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return m.GetByID(ctx, id)
}

func (m *mockStore) list(filter func(*Prescription) bool) []*Prescription {
	var result []*Prescription
	for _, p := range m.rxs {
		if filter(p) {
			cp := *p
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IssuedAt.Before(result[j].IssuedAt) })
	return result
}

func (m *mockStore) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	r := m.list(func(p *Prescription) bool { return p.PatientID == patientID })
	return r, len(r), nil
}

func (m *mockStore) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	r := m.list(func(p *Prescription) bool { return p.DoctorID == doctorID })
	return r, len(r), nil
}

func (m *mockStore) ListPending(_ context.Context, limit, offset int) ([]*Prescription, int, error) {
	r := m.list(func(p *Prescription) bool { return p.Status == StatusPending })
	return r, len(r), nil
}

func (m *mockStore) MarkFilled(_ context.Context, id, pharmacistID uuid.UUID, notes *string) (bool, error) {
	p, ok := m.rxs[id]
	if !ok || p.Status != StatusPending {
		return false, nil
	}
	now := time.Now()
	p.Status = StatusFilled
	p.PharmacistID = &pharmacistID
	p.PharmacistNotes = notes
	p.FilledAt = &now
	return true, nil
}

func (m *mockStore) Advance(_ context.Context, id uuid.UUID, from, to Status) (bool, error) {
	p, ok := m.rxs[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (m *mockStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rxs[id]; !ok {
		return errs.NotFound("prescription")
	}
	delete(m.rxs, id)
	return nil
}

// -- Stock adjuster and checkers --

func (m *mockStore) AdjustStock(_ context.Context, medicationID uuid.UUID, delta int) error {
	q, ok := m.stock[medicationID]
	if !ok {
		return errs.NotFound("medication")
	}
	if q+delta < 0 {
		return errs.InsufficientStock(medicationID.String())
	}
	m.stock[medicationID] = q + delta
	return nil
}

func (m *mockStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.stock[id]
	return ok, nil
}

type mockPatients struct{ known map[uuid.UUID]bool }

func (m *mockPatients) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

type fixture struct {
	svc          *Service
	store        *mockStore
	patientID    uuid.UUID
	doctorID     uuid.UUID
	pharmacistID uuid.UUID
	medicationID uuid.UUID
}

func newFixture(initialStock int) *fixture {
	f := &fixture{
		store:        newMockStore(),
		patientID:    uuid.New(),
		doctorID:     uuid.New(),
		pharmacistID: uuid.New(),
		medicationID: uuid.New(),
	}
	f.store.stock[f.medicationID] = initialStock
	patients := &mockPatients{known: map[uuid.UUID]bool{f.patientID: true}}
	f.svc = NewService(f.store, f.store, f.store, patients, f.store.runner)
	return f
}

func (f *fixture) issue(t *testing.T, quantity int) *Prescription {
	t.Helper()
	p, err := f.svc.Issue(context.Background(), f.doctorID, IssueInput{
		PatientID:    f.patientID,
		MedicationID: f.medicationID,
		Dosage:       "1 tablet twice daily",
		Quantity:     quantity,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return p
}

func TestIssue(t *testing.T) {
	f := newFixture(100)

	p := f.issue(t, 30)
	if p.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", p.Status)
	}
	if p.DoctorID != f.doctorID {
		t.Errorf("doctor not recorded")
	}
	if p.IssuedAt.IsZero() {
		t.Error("expected issued timestamp")
	}
}

func TestIssue_Validation(t *testing.T) {
	f := newFixture(100)

	cases := []struct {
		name string
		in   IssueInput
	}{
		{"missing dosage", IssueInput{PatientID: f.patientID, MedicationID: f.medicationID, Quantity: 10}},
		{"zero quantity", IssueInput{PatientID: f.patientID, MedicationID: f.medicationID, Dosage: "x", Quantity: 0}},
		{"negative refills", IssueInput{PatientID: f.patientID, MedicationID: f.medicationID, Dosage: "x", Quantity: 1, Refills: -1}},
		{"unknown patient", IssueInput{PatientID: uuid.New(), MedicationID: f.medicationID, Dosage: "x", Quantity: 1}},
		{"unknown medication", IssueInput{PatientID: f.patientID, MedicationID: uuid.New(), Dosage: "x", Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Issue(context.Background(), f.doctorID, tc.in); !errs.Is(err, errs.KindInvalid) {
				t.Errorf("expected KindInvalid, got %v", err)
			}
		})
	}
}

func TestFill(t *testing.T) {
	f := newFixture(100)
	p := f.issue(t, 30)

	filled, err := f.svc.Fill(context.Background(), p.ID, f.pharmacistID, "counted and bagged")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filled.Status != StatusFilled {
		t.Errorf("expected FILLED, got %s", filled.Status)
	}
	if filled.PharmacistID == nil || *filled.PharmacistID != f.pharmacistID {
		t.Error("pharmacist not recorded")
	}
	if filled.FilledAt == nil {
		t.Error("fill timestamp not recorded")
	}
	if f.store.stock[f.medicationID] != 70 {
		t.Errorf("expected stock 70, got %d", f.store.stock[f.medicationID])
	}
}

func TestFill_InsufficientStock_NothingApplied(t *testing.T) {
	f := newFixture(10)
	p := f.issue(t, 30)

	_, err := f.svc.Fill(context.Background(), p.ID, f.pharmacistID, "")
	if !errs.Is(err, errs.KindInsufficientStock) {
		t.Fatalf("expected KindInsufficientStock, got %v", err)
	}

	// Rollback must leave both sides untouched.
	got, _ := f.svc.Get(context.Background(), p.ID)
	if got.Status != StatusPending {
		t.Errorf("status changed on failed fill: %s", got.Status)
	}
	if got.PharmacistID != nil {
		t.Error("pharmacist recorded on failed fill")
	}
	if f.store.stock[f.medicationID] != 10 {
		t.Errorf("stock changed on failed fill: %d", f.store.stock[f.medicationID])
	}
}

func TestFill_Twice(t *testing.T) {
	f := newFixture(100)
	p := f.issue(t, 30)

	if _, err := f.svc.Fill(context.Background(), p.ID, f.pharmacistID, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.Fill(context.Background(), p.ID, f.pharmacistID, "")
	if !errs.Is(err, errs.KindInvalidTransition) {
		t.Errorf("expected KindInvalidTransition, got %v", err)
	}
	// Stock decremented exactly once.
	if f.store.stock[f.medicationID] != 70 {
		t.Errorf("expected stock 70, got %d", f.store.stock[f.medicationID])
	}
}

func TestFill_NotFound(t *testing.T) {
	f := newFixture(100)

	_, err := f.svc.Fill(context.Background(), uuid.New(), f.pharmacistID, "")
	if !errs.Is(err, errs.KindNotFound) {
		t.Errorf("expected KindNotFound, got %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	f := newFixture(100)
	p := f.issue(t, 10)

	if _, err := f.svc.Fill(context.Background(), p.ID, f.pharmacistID, ""); err != nil {
		t.Fatalf("fill: %v", err)
	}
	ready, err := f.svc.MarkReady(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if ready.Status != StatusReadyForPickup {
		t.Errorf("expected READY_FOR_PICKUP, got %s", ready.Status)
	}
	done, err := f.svc.Complete(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", done.Status)
	}
}

func TestLifecycle_NoSkipping(t *testing.T) {
	f := newFixture(100)
	p := f.issue(t, 10)

	// PENDING cannot jump to READY_FOR_PICKUP or COMPLETED.
	if _, err := f.svc.MarkReady(context.Background(), p.ID); !errs.Is(err, errs.KindInvalidTransition) {
		t.Errorf("expected KindInvalidTransition, got %v", err)
	}
	if _, err := f.svc.Complete(context.Background(), p.ID); !errs.Is(err, errs.KindInvalidTransition) {
		t.Errorf("expected KindInvalidTransition, got %v", err)
	}
}

func TestDelete_OnlyPending(t *testing.T) {
	f := newFixture(100)
	p := f.issue(t, 10)
	f.svc.Fill(context.Background(), p.ID, f.pharmacistID, "")

	if err := f.svc.Delete(context.Background(), p.ID); !errs.Is(err, errs.KindConflict) {
		t.Errorf("expected KindConflict, got %v", err)
	}

	pending := f.issue(t, 5)
	if err := f.svc.Delete(context.Background(), pending.ID); err != nil {
		t.Errorf("unexpected error deleting pending prescription: %v", err)
	}
}

func TestListPending(t *testing.T) {
	f := newFixture(100)
	first := f.issue(t, 5)
	second := f.issue(t, 5)
	f.svc.Fill(context.Background(), second.ID, f.pharmacistID, "")

	rxs, total, err := f.svc.ListPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || rxs[0].ID != first.ID {
		t.Errorf("expected only the unfilled prescription, got total=%d", total)
	}
}

func TestStatusStateMachine(t *testing.T) {
	if !StatusPending.CanAdvanceTo(StatusFilled) {
		t.Error("PENDING should advance to FILLED")
	}
	if StatusPending.CanAdvanceTo(StatusCompleted) {
		t.Error("PENDING must not skip to COMPLETED")
	}
	if StatusCompleted.CanAdvanceTo(StatusPending) {
		t.Error("COMPLETED is terminal")
	}
}
