package medication

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/errs"
)

type mockRepo struct {
	meds  map[uuid.UUID]*Medication
	stock map[uuid.UUID]*Inventory
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		meds:  make(map[uuid.UUID]*Medication),
		stock: make(map[uuid.UUID]*Inventory),
	}
}

func (m *mockRepo) Create(_ context.Context, med *Medication, initialStock, reorderLevel int) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	m.meds[med.ID] = med
	m.stock[med.ID] = &Inventory{
		MedicationID:      med.ID,
		QuantityAvailable: initialStock,
		ReorderLevel:      reorderLevel,
	}
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, errs.NotFound("medication")
	}
	return med, nil
}

func (m *mockRepo) stocked() []*StockedMedication {
	var result []*StockedMedication
	for id, med := range m.meds {
		inv := m.stock[id]
		result = append(result, &StockedMedication{
			Medication:        *med,
			QuantityAvailable: inv.QuantityAvailable,
			ReorderLevel:      inv.ReorderLevel,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*StockedMedication, int, error) {
	all := m.stocked()
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Search(_ context.Context, q string, limit, offset int) ([]*StockedMedication, int, error) {
	needle := strings.ToLower(q)
	var matched []*StockedMedication
	for _, sm := range m.stocked() {
		generic := ""
		if sm.GenericName != nil {
			generic = *sm.GenericName
		}
		if strings.Contains(strings.ToLower(sm.Name), needle) ||
			strings.Contains(strings.ToLower(generic), needle) ||
			strings.Contains(strings.ToLower(sm.Category), needle) {
			matched = append(matched, sm)
		}
	}
	return matched, len(matched), nil
}

func (m *mockRepo) Update(_ context.Context, med *Medication) error {
	if _, ok := m.meds[med.ID]; !ok {
		return errs.NotFound("medication")
	}
	m.meds[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.meds[id]; !ok {
		return errs.NotFound("medication")
	}
	delete(m.meds, id)
	delete(m.stock, id)
	return nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.meds[id]
	return ok, nil
}

func (m *mockRepo) GetStock(_ context.Context, id uuid.UUID) (*Inventory, error) {
	inv, ok := m.stock[id]
	if !ok {
		return nil, errs.NotFound("inventory")
	}
	return inv, nil
}

func (m *mockRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	inv, ok := m.stock[id]
	if !ok {
		return errs.NotFound("medication")
	}
	if inv.QuantityAvailable+delta < 0 {
		return errs.InsufficientStock(id.String())
	}
	inv.QuantityAvailable += delta
	return nil
}

func (m *mockRepo) SetReorderLevel(_ context.Context, id uuid.UUID, level int) error {
	inv, ok := m.stock[id]
	if !ok {
		return errs.NotFound("medication")
	}
	inv.ReorderLevel = level
	return nil
}

func (m *mockRepo) ListLowStock(_ context.Context) ([]*StockedMedication, error) {
	var result []*StockedMedication
	for _, sm := range m.stocked() {
		if sm.QuantityAvailable <= sm.ReorderLevel {
			result = append(result, sm)
		}
	}
	return result, nil
}

func mustCreate(t *testing.T, svc *Service, name string, stock, reorder int) *Medication {
	t.Helper()
	m, err := svc.Create(context.Background(), &CreateInput{
		Medication:   Medication{Name: name, Category: "analgesic", UnitPrice: 4.50},
		InitialStock: stock,
		ReorderLevel: reorder,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return m
}

func TestCreate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	m := mustCreate(t, svc, "Paracetamol", 100, 20)
	inv, err := svc.GetStock(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.QuantityAvailable != 100 || inv.ReorderLevel != 20 {
		t.Errorf("unexpected inventory: %+v", inv)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name string
		in   *CreateInput
	}{
		{"missing name", &CreateInput{InitialStock: 10}},
		{"negative price", &CreateInput{Medication: Medication{Name: "X", UnitPrice: -1}}},
		{"negative stock", &CreateInput{Medication: Medication{Name: "X"}, InitialStock: -5}},
		{"negative reorder", &CreateInput{Medication: Medication{Name: "X"}, ReorderLevel: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !errs.Is(err, errs.KindInvalid) {
				t.Errorf("expected KindInvalid, got %v", err)
			}
		})
	}
}

func TestAdjustStock(t *testing.T) {
	svc := NewService(newMockRepo())
	m := mustCreate(t, svc, "Ibuprofen", 50, 10)

	if err := svc.AdjustStock(context.Background(), m.ID, -30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv, _ := svc.GetStock(context.Background(), m.ID)
	if inv.QuantityAvailable != 20 {
		t.Errorf("expected 20, got %d", inv.QuantityAvailable)
	}
}

func TestAdjustStock_Insufficient(t *testing.T) {
	svc := NewService(newMockRepo())
	m := mustCreate(t, svc, "Ibuprofen", 50, 10)

	err := svc.AdjustStock(context.Background(), m.ID, -60)
	if !errs.Is(err, errs.KindInsufficientStock) {
		t.Errorf("expected KindInsufficientStock, got %v", err)
	}
	inv, _ := svc.GetStock(context.Background(), m.ID)
	if inv.QuantityAvailable != 50 {
		t.Errorf("stock changed on failed adjustment: %d", inv.QuantityAvailable)
	}
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	svc := NewService(newMockRepo())
	m := mustCreate(t, svc, "Ibuprofen", 50, 10)

	if err := svc.AdjustStock(context.Background(), m.ID, 0); !errs.Is(err, errs.KindInvalid) {
		t.Errorf("expected KindInvalid, got %v", err)
	}
}

func TestAdjustStock_UnknownMedication(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.AdjustStock(context.Background(), uuid.New(), -1); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("expected KindNotFound, got %v", err)
	}
}

func TestListLowStock(t *testing.T) {
	svc := NewService(newMockRepo())
	mustCreate(t, svc, "Plenty", 100, 20)
	low := mustCreate(t, svc, "Running Out", 5, 20)

	meds, err := svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meds) != 1 || meds[0].ID != low.ID {
		t.Errorf("expected only the low medication, got %+v", meds)
	}
}

func TestList_Search(t *testing.T) {
	svc := NewService(newMockRepo())
	mustCreate(t, svc, "Paracetamol", 100, 20)
	mustCreate(t, svc, "Amoxicillin", 40, 10)

	meds, total, err := svc.List(context.Background(), "parac", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || meds[0].Name != "Paracetamol" {
		t.Errorf("unexpected search result: total=%d %+v", total, meds)
	}
}
