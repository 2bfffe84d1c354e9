package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain/gate"
	hcdomain "github.com/x-xyz/marketledger/domain/healthcheck"
	"github.com/x-xyz/marketledger/domain/marketplace"
	gateUC "github.com/x-xyz/marketledger/stores/gate/usecase"
	"github.com/x-xyz/marketledger/stores/state/bolt"
)

func TestPing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "market.db"))
	req.NoError(err)
	defer store.Close()

	repo := New(store, nil, nil)
	req.Error(repo.PingStore(c), "config not initialised yet")

	req.NoError(store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		_, err := gateUC.New(tx.Config()).Init(c, gate.Config{
			Owner:            "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
			ListingFee:       uint256.NewInt(10),
			WithdrawalPeriod: time.Hour,
		})
		return err
	}))
	req.NoError(repo.PingStore(c))
	req.ErrorIs(repo.PingMongo(c), hcdomain.ErrDisabled)
	req.ErrorIs(repo.PingRedis(c), hcdomain.ErrDisabled)
}
