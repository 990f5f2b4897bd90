package workflow

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports/", h.CreateReport)
	api.GET("/reports/", h.ListReports)
	api.GET("/reports/:id", h.GetReport)
	api.GET("/reports/patient/:patientID", h.ListReportsByPatient)
	api.GET("/reports/staff/:staffID", h.ListReportsByStaff)
	api.PUT("/reports/:id", h.UpdateReport)
	api.PUT("/reports/:id/confirm", h.ConfirmReport)

	api.POST("/tests/", h.CreateTest)
	api.GET("/tests/", h.ListTests)
	api.GET("/tests/:id", h.GetTest)
	api.GET("/tests/patient/:patientID", h.ListTestsByPatient)
	api.PUT("/tests/:id", h.UpdateTest)
	api.DELETE("/tests/:id", h.DeleteTest)

	api.POST("/appointments/", h.CreateAppointment)
	api.GET("/appointments/", h.ListAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.GET("/appointments/patient/:patientID", h.ListAppointmentsByPatient)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
}

func httpError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
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

func statusFilter(c echo.Context) *string {
	if v := c.QueryParam("status"); v != "" {
		return &v
	}
	return nil
}

// =========== Diagnosis reports ===========

func (h *Handler) CreateReport(c echo.Context) error {
	var req CreateReportInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.CreateReport(c.Request().Context(), req)
	if err != nil {
		return httpError(err, "Report not found")
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListReports(c echo.Context) error {
	items, err := h.svc.ListReports(c.Request().Context(), statusFilter(c))
	if err != nil {
		return httpError(err, "Report not found")
	}
	if items == nil {
		items = []*DiagnosisReport{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Report not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListReportsByPatient(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	items, err := h.svc.ListReportsByPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Report not found")
	}
	if items == nil {
		items = []*DiagnosisReport{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListReportsByStaff(c echo.Context) error {
	id, err := pathID(c, "staffID")
	if err != nil {
		return err
	}
	items, err := h.svc.ListReportsByStaff(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Report not found")
	}
	if items == nil {
		items = []*DiagnosisReport{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateReportInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.UpdateReport(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err, "Report not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ConfirmReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.svc.ConfirmReport(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Report not found")
	}
	return c.JSON(http.StatusOK, r)
}

// =========== Medical tests ===========

func (h *Handler) CreateTest(c echo.Context) error {
	var req CreateTestInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := h.svc.CreateTest(c.Request().Context(), req)
	if err != nil {
		return httpError(err, "Test not found")
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTests(c echo.Context) error {
	items, err := h.svc.ListTests(c.Request().Context(), statusFilter(c))
	if err != nil {
		return httpError(err, "Test not found")
	}
	if items == nil {
		items = []*MedicalTest{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Test not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTestsByPatient(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	items, err := h.svc.ListTestsByPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Test not found")
	}
	if items == nil {
		items = []*MedicalTest{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateTest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateTestInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := h.svc.UpdateTest(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err, "Test not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTest(c.Request().Context(), id); err != nil {
		return httpError(err, "Test not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Test deleted successfully"})
}

// =========== Appointments ===========

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req CreateAppointmentInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), req)
	if err != nil {
		return httpError(err, "Appointment not found")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	items, err := h.svc.ListAppointments(c.Request().Context(), statusFilter(c))
	if err != nil {
		return httpError(err, "Appointment not found")
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointmentsByPatient(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	items, err := h.svc.ListAppointmentsByPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Appointment not found")
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateAppointmentInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err, "Appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return httpError(err, "Appointment not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment deleted successfully"})
}
