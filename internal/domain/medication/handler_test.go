package medication

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(NewService(newMockRepo())), echo.New()
}

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Paracetamol","category":"analgesic","unit_price":4.5,"initial_stock":100,"reorder_level":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/medications", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_AdjustStock_Insufficient(t *testing.T) {
	h, e := newTestHandler()
	m, err := h.svc.Create(context.Background(), &CreateInput{
		Medication: Medication{Name: "Ibuprofen", UnitPrice: 2}, InitialStock: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `{"delta":-50}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	err = h.AdjustStock(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409 HTTPError, got %v", err)
	}
}

func TestHandler_AdjustStock(t *testing.T) {
	h, e := newTestHandler()
	m, _ := h.svc.Create(context.Background(), &CreateInput{
		Medication: Medication{Name: "Ibuprofen", UnitPrice: 2}, InitialStock: 10,
	})

	body := `{"delta":15}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	if err := h.AdjustStock(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var inv Inventory
	json.Unmarshal(rec.Body.Bytes(), &inv)
	if inv.QuantityAvailable != 25 {
		t.Errorf("expected 25, got %d", inv.QuantityAvailable)
	}
}

func TestHandler_ListLowStock(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Create(context.Background(), &CreateInput{
		Medication: Medication{Name: "Low Med", UnitPrice: 1}, InitialStock: 2, ReorderLevel: 10,
	})
	h.svc.Create(context.Background(), &CreateInput{
		Medication: Medication{Name: "Fine Med", UnitPrice: 1}, InitialStock: 99, ReorderLevel: 10,
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListLowStock(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Low Med") || strings.Contains(rec.Body.String(), "Fine Med") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
