package restock

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/errs"
)

// The mock store backs the repository and the stock hooks so one transaction
// runner can snapshot and restore everything, mimicking a rollback.
type mockStore struct {
	reqs  map[uuid.UUID]*Request
	stock map[uuid.UUID]int
	seq   int
}

func newMockStore() *mockStore {
	return &mockStore{
		reqs:  make(map[uuid.UUID]*Request),
		stock: make(map[uuid.UUID]int),
	}
}

func (m *mockStore) snapshot() (map[uuid.UUID]*Request, map[uuid.UUID]int) {
	reqs := make(map[uuid.UUID]*Request, len(m.reqs))
	for id, rr := range m.reqs {
		cp := *rr
		reqs[id] = &cp
	}
	stock := make(map[uuid.UUID]int, len(m.stock))
	for id, q := range m.stock {
		stock[id] = q
	}
	return reqs, stock
}

func (m *mockStore) runner(ctx context.Context, fn func(ctx context.Context) error) error {
	reqs, stock := m.snapshot()
	if err := fn(ctx); err != nil {
		m.reqs, m.stock = reqs, stock
		return err
	}
	return nil
}

func (m *mockStore) Create(_ context.Context, rr *Request) error {
	rr.ID = uuid.New()
	// Deterministic creation times so queue-ordering tests are stable.
	m.seq++
	rr.RequestedAt = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(m.seq) * time.Minute)
	m.reqs[rr.ID] = rr
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*Request, error) {
	rr, ok := m.reqs[id]
	if !ok {
		return nil, errs.NotFound("restock request")
	}
	cp := *rr
	return &cp, nil
}

func (m *mockStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error) {
	return m.GetByID(ctx, id)
}

func (m *mockStore) ListPending(_ context.Context, limit, offset int) ([]*Request, int, error) {
	var result []*Request
	for _, rr := range m.reqs {
		if rr.Status == StatusPending {
			cp := *rr
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority.Rank() != result[j].Priority.Rank() {
			return result[i].Priority.Rank() < result[j].Priority.Rank()
		}
		return result[i].RequestedAt.Before(result[j].RequestedAt)
	})
	return result, len(result), nil
}

func (m *mockStore) List(_ context.Context, limit, offset int) ([]*Request, int, error) {
	var result []*Request
	for _, rr := range m.reqs {
		cp := *rr
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockStore) ListByMedication(_ context.Context, medicationID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	var result []*Request
	for _, rr := range m.reqs {
		if rr.MedicationID == medicationID {
			cp := *rr
			result = append(result, &cp)
		}
	}
	return result, len(result), nil
}

func (m *mockStore) Decide(_ context.Context, id, approverID uuid.UUID, to Status, notes *string) (bool, error) {
	rr, ok := m.reqs[id]
	if !ok || rr.Status != StatusPending {
		return false, nil
	}
	now := time.Now()
	rr.Status = to
	rr.ApproverID = &approverID
	rr.ManagerNotes = notes
	rr.DecidedAt = &now
	return true, nil
}

func (m *mockStore) Advance(_ context.Context, id uuid.UUID, from, to Status) (bool, error) {
	rr, ok := m.reqs[id]
	if !ok || rr.Status != from {
		return false, nil
	}
	rr.Status = to
	return true, nil
}

func (m *mockStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.reqs[id]; !ok {
		return errs.NotFound("restock request")
	}
	delete(m.reqs, id)
	return nil
}

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

func (m *mockStore) GetStockLevel(_ context.Context, medicationID uuid.UUID) (int, error) {
	q, ok := m.stock[medicationID]
	if !ok {
		return 0, errs.NotFound("medication")
	}
	return q, nil
}

type fixture struct {
	svc          *Service
	store        *mockStore
	requesterID  uuid.UUID
	managerID    uuid.UUID
	medicationID uuid.UUID
}

func newFixture(initialStock int) *fixture {
	f := &fixture{
		store:        newMockStore(),
		requesterID:  uuid.New(),
		managerID:    uuid.New(),
		medicationID: uuid.New(),
	}
	f.store.stock[f.medicationID] = initialStock
	f.svc = NewService(f.store, f.store, f.store, f.store.runner)
	return f
}

func (f *fixture) request(t *testing.T, qty int, prio Priority) *Request {
	t.Helper()
	rr, err := f.svc.Request(context.Background(), f.requesterID, RequestInput{
		MedicationID:      f.medicationID,
		RequestedQuantity: qty,
		Priority:          prio,
		Reason:            "running low",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return rr
}

func TestRequest(t *testing.T) {
	f := newFixture(20)

	rr := f.request(t, 100, PriorityUrgent)
	if rr.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", rr.Status)
	}
	if rr.CurrentStock != 20 {
		t.Errorf("expected stock snapshot 20, got %d", rr.CurrentStock)
	}
}

func TestRequest_Validation(t *testing.T) {
	f := newFixture(20)

	if _, err := f.svc.Request(context.Background(), f.requesterID, RequestInput{
		MedicationID: f.medicationID, RequestedQuantity: 0, Priority: PriorityLow,
	}); !errs.Is(err, errs.KindInvalid) {
		t.Errorf("expected KindInvalid for zero quantity, got %v", err)
	}
	if _, err := f.svc.Request(context.Background(), f.requesterID, RequestInput{
		MedicationID: f.medicationID, RequestedQuantity: 5, Priority: "WHENEVER",
	}); !errs.Is(err, errs.KindInvalid) {
		t.Errorf("expected KindInvalid for unknown priority, got %v", err)
	}
	if _, err := f.svc.Request(context.Background(), f.requesterID, RequestInput{
		MedicationID: uuid.New(), RequestedQuantity: 5, Priority: PriorityLow,
	}); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("expected KindNotFound for unknown medication, got %v", err)
	}
}

func TestApprove(t *testing.T) {
	f := newFixture(20)
	rr := f.request(t, 100, PriorityUrgent)

	approved, err := f.svc.Approve(context.Background(), rr.ID, f.managerID, "go ahead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Errorf("expected APPROVED, got %s", approved.Status)
	}
	if approved.ApproverID == nil || *approved.ApproverID != f.managerID {
		t.Error("approver not recorded")
	}
	if f.store.stock[f.medicationID] != 120 {
		t.Errorf("expected stock 120, got %d", f.store.stock[f.medicationID])
	}
}

func TestReject_NoStockEffect(t *testing.T) {
	f := newFixture(20)
	rr := f.request(t, 100, PriorityHigh)

	rejected, err := f.svc.Reject(context.Background(), rr.ID, f.managerID, "budget")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}
	if f.store.stock[f.medicationID] != 20 {
		t.Errorf("stock changed on reject: %d", f.store.stock[f.medicationID])
	}
}

func TestApprove_Twice(t *testing.T) {
	f := newFixture(20)
	rr := f.request(t, 100, PriorityMedium)

	if _, err := f.svc.Approve(context.Background(), rr.ID, f.managerID, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.Approve(context.Background(), rr.ID, f.managerID, "")
	if !errs.Is(err, errs.KindInvalidTransition) {
		t.Errorf("expected KindInvalidTransition, got %v", err)
	}
	// Stock incremented exactly once.
	if f.store.stock[f.medicationID] != 120 {
		t.Errorf("expected stock 120, got %d", f.store.stock[f.medicationID])
	}
}

func TestApprove_AfterReject(t *testing.T) {
	f := newFixture(20)
	rr := f.request(t, 50, PriorityLow)
	f.svc.Reject(context.Background(), rr.ID, f.managerID, "")

	_, err := f.svc.Approve(context.Background(), rr.ID, f.managerID, "")
	if !errs.Is(err, errs.KindInvalidTransition) {
		t.Errorf("expected KindInvalidTransition, got %v", err)
	}
}

func TestSupplyChain(t *testing.T) {
	f := newFixture(20)
	rr := f.request(t, 50, PriorityHigh)
	f.svc.Approve(context.Background(), rr.ID, f.managerID, "")

	ordered, err := f.svc.MarkOrdered(context.Background(), rr.ID)
	if err != nil {
		t.Fatalf("mark ordered: %v", err)
	}
	if ordered.Status != StatusOrdered {
		t.Errorf("expected ORDERED, got %s", ordered.Status)
	}

	received, err := f.svc.MarkReceived(context.Background(), rr.ID)
	if err != nil {
		t.Fatalf("mark received: %v", err)
	}
	if received.Status != StatusReceived {
		t.Errorf("expected RECEIVED, got %s", received.Status)
	}
}

func TestMarkOrdered_RequiresApproval(t *testing.T) {
	f := newFixture(20)
	rr := f.request(t, 50, PriorityHigh)

	if _, err := f.svc.MarkOrdered(context.Background(), rr.ID); !errs.Is(err, errs.KindInvalidTransition) {
		t.Errorf("expected KindInvalidTransition, got %v", err)
	}
}

func TestListPending_PriorityOrder(t *testing.T) {
	f := newFixture(500)

	low := f.request(t, 10, PriorityLow)
	urgentOld := f.request(t, 10, PriorityUrgent)
	high := f.request(t, 10, PriorityHigh)
	urgentNew := f.request(t, 10, PriorityUrgent)

	reqs, _, err := f.svc.ListPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uuid.UUID{urgentOld.ID, urgentNew.ID, high.ID, low.ID}
	if len(reqs) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(reqs))
	}
	for i, id := range want {
		if reqs[i].ID != id {
			t.Errorf("position %d: expected %s, got %s (priority %s)", i, id, reqs[i].ID, reqs[i].Priority)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	ranks := []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
	for i := 1; i < len(ranks); i++ {
		if ranks[i-1].Rank() >= ranks[i].Rank() {
			t.Errorf("%s should rank ahead of %s", ranks[i-1], ranks[i])
		}
	}
}

func TestDelete_ApprovedFails(t *testing.T) {
	f := newFixture(20)
	rr := f.request(t, 50, PriorityLow)
	f.svc.Approve(context.Background(), rr.ID, f.managerID, "")

	if err := f.svc.Delete(context.Background(), rr.ID); !errs.Is(err, errs.KindConflict) {
		t.Errorf("expected KindConflict, got %v", err)
	}
}
