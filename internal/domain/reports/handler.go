package reports

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mealtrace/catering/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, cache echo.MiddlewareFunc) {
	g := api.Group("/reports")
	if cache != nil {
		g.Use(cache)
	}

	daily := g.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDietSupervisor, auth.RoleDietician))
	daily.GET("/diet-supervisor/today", h.SupervisorToday)

	vendor := g.Group("", auth.RequireRole(auth.RoleAdmin))
	vendor.GET("/vendor/business-range", h.BusinessRange)
	vendor.GET("/vendor/business-range/export", h.BusinessRangeExport)

	analytics := g.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDietician))
	analytics.GET("/analytics", h.Analytics)
}

func (h *Handler) SupervisorToday(c echo.Context) error {
	rows, err := h.svc.SupervisorToday(c.Request().Context(), auth.HospitalIDFromContext(c),
		c.QueryParam("date"), c.QueryParam("roomType"), c.QueryParam("roomNo"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) BusinessRange(c echo.Context) error {
	rows, err := h.svc.BusinessRange(c.Request().Context(), auth.HospitalIDFromContext(c),
		c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) BusinessRangeExport(c echo.Context) error {
	rows, err := h.svc.BusinessRange(c.Request().Context(), auth.HospitalIDFromContext(c),
		c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data, err := BusinessRangeXLSX(rows)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="business-range.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) Analytics(c echo.Context) error {
	out, err := h.svc.Analytics(c.Request().Context(), auth.HospitalIDFromContext(c),
		c.QueryParam("from"), c.QueryParam("to"), c.QueryParam("granularity"), c.QueryParam("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
