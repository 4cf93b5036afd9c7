package restock

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
	pharmacy := api.Group("", auth.RequireRole("pharmacist", "pharmacy_manager"))
	pharmacy.GET("/restock-requests", h.List)
	pharmacy.GET("/restock-requests/:id", h.Get)
	pharmacy.POST("/restock-requests", h.Create, auth.RequireRole("pharmacist"))

	manager := api.Group("", auth.RequireRole("pharmacy_manager"))
	manager.GET("/restock-requests/pending", h.ListPending)
	manager.POST("/restock-requests/:id/approve", h.Approve)
	manager.POST("/restock-requests/:id/reject", h.Reject)
	manager.POST("/restock-requests/:id/ordered", h.MarkOrdered)
	manager.POST("/restock-requests/:id/received", h.MarkReceived)
	manager.DELETE("/restock-requests/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var in RequestInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	requesterID := auth.UserIDFromContext(c.Request().Context())
	rr, err := h.svc.Request(c.Request().Context(), requesterID, in)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, rr)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rr)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	ctx := c.Request().Context()

	if raw := c.QueryParam("medication_id"); raw != "" {
		medicationID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid medication_id")
		}
		reqs, total, err := h.svc.ListByMedication(ctx, medicationID, p.Limit, p.Offset)
		if err != nil {
			return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(reqs, total, p.Limit, p.Offset))
	}

	reqs, total, err := h.svc.List(ctx, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reqs, total, p.Limit, p.Offset))
}

func (h *Handler) ListPending(c echo.Context) error {
	p := pagination.FromContext(c)
	reqs, total, err := h.svc.ListPending(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reqs, total, p.Limit, p.Offset))
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	approverID := auth.UserIDFromContext(c.Request().Context())
	rr, err := h.svc.Approve(c.Request().Context(), id, approverID, req.Notes)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rr)
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	approverID := auth.UserIDFromContext(c.Request().Context())
	rr, err := h.svc.Reject(c.Request().Context(), id, approverID, req.Notes)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rr)
}

func (h *Handler) MarkOrdered(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rr, err := h.svc.MarkOrdered(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rr)
}

func (h *Handler) MarkReceived(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rr, err := h.svc.MarkReceived(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rr)
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
