package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketledger/base/ctx"
	hcdomain "github.com/x-xyz/marketledger/domain/healthcheck"
	"github.com/x-xyz/marketledger/domain/healthcheck/mocks"
)

func TestCheck(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	repo := &mocks.HealthCheckRepo{}
	repo.On("PingStore", mock.Anything).Return(nil)
	repo.On("PingMongo", mock.Anything).Return(hcdomain.ErrDisabled)
	repo.On("PingRedis", mock.Anything).Return(nil)

	report, err := New(repo).Check(c)
	req.NoError(err)
	req.Equal(hcdomain.Report{
		hcdomain.ComponentStore: hcdomain.StatusOK,
		hcdomain.ComponentMongo: hcdomain.StatusDisabled,
		hcdomain.ComponentRedis: hcdomain.StatusOK,
	}, report)
}

func TestCheckFailure(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	down := errors.New("connection refused")
	repo := &mocks.HealthCheckRepo{}
	repo.On("PingStore", mock.Anything).Return(nil)
	repo.On("PingMongo", mock.Anything).Return(nil)
	repo.On("PingRedis", mock.Anything).Return(down)

	report, err := New(repo).Check(c)
	req.ErrorIs(err, down)
	req.Equal("connection refused", report[hcdomain.ComponentRedis])
	req.Equal(hcdomain.StatusOK, report[hcdomain.ComponentMongo])
	repo.AssertExpectations(t)
}
