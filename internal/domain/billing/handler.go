package billing

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/billing/", h.Create)
	api.GET("/billing/", h.List)
	// Statistics before :id so the router never swallows them.
	api.GET("/billing/statistics/summary", h.Statistics)
	api.GET("/billing/statistics/monthly-revenue", h.MonthlyRevenue)
	api.GET("/billing/patient/:patientID", h.ListByPatient)
	api.GET("/billing/patient/:patientID/total", h.PatientTotal)
	api.GET("/billing/:id", h.Get)
	api.PUT("/billing/:id", h.Update)
	api.PUT("/billing/:id/pay", h.Pay)
	api.DELETE("/billing/:id", h.Delete)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Billing record not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) List(c echo.Context) error {
	var status *string
	if v := c.QueryParam("status"); v != "" {
		status = &v
	}
	items, err := h.svc.List(c.Request().Context(), status)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*BillingDetail{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*BillingDetail{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) PatientTotal(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	total, err := h.svc.PatientTotal(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, total)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Pay(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.Pay(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Billing record deleted successfully"})
}

func (h *Handler) Statistics(c echo.Context) error {
	sum, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) MonthlyRevenue(c echo.Context) error {
	year := time.Now().Year()
	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		year = y
	}
	rev, err := h.svc.MonthlyRevenue(c.Request().Context(), year)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rev)
}
