package user

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

// RegisterRoutes mounts account creation under the auth group. Creating an
// account with an arbitrary role is restricted to administrators.
func (h *Handler) RegisterRoutes(authGroup *echo.Group) {
	authGroup.POST("/register", h.Register, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Register(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, err := h.svc.CreateUser(c.Request().Context(), req.Username, req.Password.Reveal(), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}
