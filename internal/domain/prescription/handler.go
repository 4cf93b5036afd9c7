package prescription

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/internal/platform/errs"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Every clinical role can read prescriptions.
	api.GET("/prescriptions/:id", h.Get)
	api.GET("/prescriptions", h.List)

	api.POST("/prescriptions", h.Issue, auth.RequireRole("doctor"))

	pharmacy := api.Group("", auth.RequireRole("pharmacist"))
	pharmacy.GET("/prescriptions/pending", h.ListPending)
	pharmacy.POST("/prescriptions/:id/fill", h.Fill)
	pharmacy.POST("/prescriptions/:id/ready", h.MarkReady)
	pharmacy.POST("/prescriptions/:id/complete", h.Complete)

	api.DELETE("/prescriptions/:id", h.Delete, auth.RequireRole("doctor", "clinic_admin"))
}

func (h *Handler) Issue(c echo.Context) error {
	var in IssueInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Issue(c.Request().Context(), doctorID, in)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

// List requires a patient_id or doctor_id filter; there is no unfiltered
// listing of all prescriptions.
func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	ctx := c.Request().Context()

	switch {
	case c.QueryParam("patient_id") != "":
		patientID, err := uuid.Parse(c.QueryParam("patient_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		rxs, total, err := h.svc.ListByPatient(ctx, patientID, p.Limit, p.Offset)
		if err != nil {
			return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(rxs, total, p.Limit, p.Offset))
	case c.QueryParam("doctor_id") != "":
		doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		rxs, total, err := h.svc.ListByDoctor(ctx, doctorID, p.Limit, p.Offset)
		if err != nil {
			return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(rxs, total, p.Limit, p.Offset))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "patient_id or doctor_id filter is required")
}

func (h *Handler) ListPending(c echo.Context) error {
	p := pagination.FromContext(c)
	rxs, total, err := h.svc.ListPending(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(rxs, total, p.Limit, p.Offset))
}

type fillRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) Fill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req fillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pharmacistID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Fill(c.Request().Context(), id, pharmacistID, req.Notes)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) MarkReady(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.MarkReady(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Complete(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
