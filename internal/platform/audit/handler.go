package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/hospital/internal/platform/auth"
	"github.com/ehr/hospital/pkg/pagination"
)

// Handler serves the audit query surface. Reads go straight to the store
// and are not themselves audited.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/audit", auth.RequireRole(auth.RoleAdmin))
	g.GET("", h.List)
	g.GET("/users/:username", h.ListByUser)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	records, total, err := h.store.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ToViews(records), total, pg))
}

func (h *Handler) ListByUser(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}
	pg := pagination.FromContext(c)
	records, total, err := h.store.ListByActor(c.Request().Context(), username, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ToViews(records), total, pg))
}
