package order

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mealtrace/catering/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/orders")
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	create := g.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDietician))
	create.POST("", h.Create)

	kitchen := g.Group("", auth.RequireRole(auth.RoleKitchen, auth.RoleVendor, auth.RoleAdmin))
	kitchen.PUT("/:id/kitchen-status", h.KitchenStatus)

	delivery := g.Group("", auth.RequireRole(auth.RoleDelivery, auth.RoleAdmin))
	delivery.PUT("/:id/deliver", h.DeliveryStatus)

	admin := g.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.PUT("/:id/status", h.AdminStatus)
	admin.POST("/bulk-deliver", h.BulkDeliver)
}

func (h *Handler) List(c echo.Context) error {
	out, err := h.svc.ListForDay(c.Request().Context(), auth.HospitalIDFromContext(c), c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.Create(c.Request().Context(), auth.HospitalIDFromContext(c), in, auth.UserIDFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) KitchenStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		KitchenStatus string `json:"kitchenStatus"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.UpdateKitchenStatus(c.Request().Context(), id, body.KitchenStatus, auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) DeliveryStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		DeliveryStatus string `json:"deliveryStatus"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.UpdateDeliveryStatus(c.Request().Context(), id, body.DeliveryStatus, auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) AdminStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		KitchenStatus  string `json:"kitchenStatus"`
		DeliveryStatus string `json:"deliveryStatus"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.AdminStatusUpdate(c.Request().Context(), id, body.KitchenStatus, body.DeliveryStatus, auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) BulkDeliver(c echo.Context) error {
	var body struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.BulkDeliver(c.Request().Context(), body.IDs, auth.UserIDFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"modifiedCount": n})
}
