package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	hcdomain "github.com/x-xyz/marketledger/domain/healthcheck"
	"github.com/x-xyz/marketledger/domain/healthcheck/mocks"
	"github.com/x-xyz/marketledger/middleware"
	hc_usecase "github.com/x-xyz/marketledger/stores/healthcheck/usecase"
)

func serve(repo hcdomain.HealthCheckRepo) (int, healthResponse) {
	e := echo.New()
	e.Use(middleware.InitMiddleware(nil).AddContext())
	New(e, hc_usecase.New(repo))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	res := healthResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	return rec.Code, res
}

func TestHealthy(t *testing.T) {
	req := require.New(t)
	repo := &mocks.HealthCheckRepo{}
	repo.On("PingStore", mock.Anything).Return(nil)
	repo.On("PingMongo", mock.Anything).Return(hcdomain.ErrDisabled)
	repo.On("PingRedis", mock.Anything).Return(hcdomain.ErrDisabled)

	code, res := serve(repo)
	req.Equal(http.StatusOK, code)
	req.True(res.Healthy)
	req.Equal(hcdomain.StatusOK, res.Components[hcdomain.ComponentStore])
	req.Equal(hcdomain.StatusDisabled, res.Components[hcdomain.ComponentRedis])
}

func TestUnhealthy(t *testing.T) {
	req := require.New(t)
	repo := &mocks.HealthCheckRepo{}
	repo.On("PingStore", mock.Anything).Return(errors.New("database not open"))
	repo.On("PingMongo", mock.Anything).Return(hcdomain.ErrDisabled)
	repo.On("PingRedis", mock.Anything).Return(hcdomain.ErrDisabled)

	code, res := serve(repo)
	req.Equal(http.StatusServiceUnavailable, code)
	req.False(res.Healthy)
	req.Equal("database not open", res.Components[hcdomain.ComponentStore])
}
