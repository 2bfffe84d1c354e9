package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketledger/base/ctx"
	hcdomain "github.com/x-xyz/marketledger/domain/healthcheck"
)

type healthResponse struct {
	Healthy    bool            `json:"healthy"`
	Components hcdomain.Report `json:"components"`
}

type healthCheckHandler struct {
	healthCheck hcdomain.HealthCheckUsecase
}

// New will initialize the healthcheck/
func New(e *echo.Echo, us hcdomain.HealthCheckUsecase) {
	handler := &healthCheckHandler{
		healthCheck: us,
	}
	g := e.Group("/health")
	g.GET("", handler.check)
}

func (h *healthCheckHandler) check(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	report, err := h.healthCheck.Check(context)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{
			Components: report,
		})
	}
	return c.JSON(http.StatusOK, healthResponse{
		Healthy:    true,
		Components: report,
	})
}
