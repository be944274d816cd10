package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/hospital/internal/platform/auth"
)

type Handler struct {
	svc Operations
}

func NewHandler(svc Operations) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the login and registration endpoints on the auth
// group. Patients may self-register; practitioner accounts carry staff
// access and are created by administrators.
func (h *Handler) RegisterRoutes(authGroup *echo.Group) {
	authGroup.POST("/login", h.Login)
	authGroup.POST("/register-patient", h.RegisterPatient)
	authGroup.POST("/register-practitioner", h.RegisterPractitioner, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	resp, err := h.svc.Login(c.Request().Context(), req.Username, req.Password.Reveal())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req PatientRegistration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.svc.RegisterPatient(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) RegisterPractitioner(c echo.Context) error {
	var req PractitionerRegistration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.svc.RegisterPractitioner(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}
