package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/base/ctx"
	hcdomain "github.com/x-xyz/marketledger/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
	}
}

// Check pings every component and reports the first failure
func (im *impl) Check(context ctx.Ctx) (hcdomain.Report, error) {
	pings := []struct {
		name string
		ping func(ctx.Ctx) error
	}{
		{hcdomain.ComponentStore, im.repo.PingStore},
		{hcdomain.ComponentMongo, im.repo.PingMongo},
		{hcdomain.ComponentRedis, im.repo.PingRedis},
	}

	report := hcdomain.Report{}
	var failed error
	for _, p := range pings {
		err := p.ping(context)
		switch {
		case err == nil:
			report[p.name] = hcdomain.StatusOK
		case xerrors.Is(err, hcdomain.ErrDisabled):
			report[p.name] = hcdomain.StatusDisabled
		default:
			report[p.name] = err.Error()
			if failed == nil {
				failed = xerrors.Errorf("%s unhealthy: %w", p.name, err)
			}
		}
	}
	return report, failed
}
