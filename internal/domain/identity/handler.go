package identity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the identity endpoints. Only /users/me requires a
// bearer token; registration and login are open by definition and the rest
// mirror the read surface of the other services.
func (h *Handler) RegisterRoutes(api *echo.Group, authRequired echo.MiddlewareFunc) {
	api.POST("/users/login", h.Login)
	api.GET("/users/me", h.Me, authRequired)
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.PUT("/users/:id/activate", h.ActivateUser)
	api.PUT("/users/:id/deactivate", h.DeactivateUser)

	api.POST("/patients/", h.RegisterPatient)
	api.GET("/patients/", h.ListPatients)
	api.GET("/patients/:patientID", h.GetPatient)
	api.GET("/patients/user/:userID", h.GetPatientByUser)
	api.PUT("/patients/:patientID", h.UpdatePatient)

	api.POST("/staff/", h.RegisterStaff)
	api.GET("/staff/", h.ListStaff)
	api.GET("/staff/:staffID", h.GetStaff)
	api.GET("/staff/user/:userID", h.GetStaffByUser)
	api.PUT("/staff/:staffID", h.UpdateStaff)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrAccountDeactivated):
		return echo.NewHTTPError(http.StatusForbidden, "User account is deactivated")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
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

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tok, u, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loginResponse{AccessToken: tok, TokenType: "bearer", User: u})
}

func (h *Handler) Me(c echo.Context) error {
	subjectID := auth.SubjectIDFromContext(c.Request().Context())
	u, err := h.svc.GetUser(c.Request().Context(), subjectID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if users == nil {
		users = []*User{}
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ActivateUser(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *Handler) DeactivateUser(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *Handler) setActive(c echo.Context, active bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.svc.SetActive(c.Request().Context(), id, active)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req RegisterPatientInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.RegisterPatient(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPatientByUser(c echo.Context) error {
	id, err := pathID(c, "userID")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatientByUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := pathID(c, "patientID")
	if err != nil {
		return err
	}
	var req UpdatePatientInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) RegisterStaff(c echo.Context) error {
	var req RegisterStaffInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.RegisterStaff(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) ListStaff(c echo.Context) error {
	staff, err := h.svc.ListStaff(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if staff == nil {
		staff = []*MedicalStaff{}
	}
	return c.JSON(http.StatusOK, staff)
}

func (h *Handler) GetStaff(c echo.Context) error {
	id, err := pathID(c, "staffID")
	if err != nil {
		return err
	}
	st, err := h.svc.GetStaff(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Staff not found")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) GetStaffByUser(c echo.Context) error {
	id, err := pathID(c, "userID")
	if err != nil {
		return err
	}
	st, err := h.svc.GetStaffByUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := pathID(c, "staffID")
	if err != nil {
		return err
	}
	var req UpdateStaffInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.UpdateStaff(c.Request().Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Staff not found")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}
