package usecase

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/stores/state/bolt"
)

var (
	collection = domain.Address("0xdcf0de6b17785a143d006e1515a6afd123cde8ba")
	alice      = domain.Address("0xce4468e7ce84aceb74363f4ea64e5a038176f369")
	bob        = domain.Address("0xdf8650b0ca1260f7a2f4fdff9082aede554f65ad")
	market     = domain.Address("0x1a01ecd2263a9d5b5967667e508ea22db478bc4b")
)

func newStore(t *testing.T) (marketplace.Store, string) {
	path := filepath.Join(t.TempDir(), "market.db")
	store, err := bolt.Open(path)
	require.NoError(t, err)
	return store, path
}

func newRegistry(t *testing.T) asset.Registry {
	store, _ := newStore(t)
	t.Cleanup(func() { store.Close() })
	return NewStored(store)
}

func TestMintAndOwnerOf(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	im := newRegistry(t)

	_, err := im.OwnerOf(c, collection, "1")
	req.ErrorIs(err, asset.ErrUnknownCollection)
	req.ErrorIs(err, domain.ErrUnrecognized)

	req.NoError(im.Mint(c, collection, "1", alice))
	req.ErrorIs(im.Mint(c, collection, "1", bob), asset.ErrTokenExists)
	req.ErrorIs(im.Mint(c, collection, "2", domain.EmptyAddress), asset.ErrZeroReceiver)

	owner, err := im.OwnerOf(c, collection, "1")
	req.NoError(err)
	req.Equal(alice, owner)

	_, err = im.OwnerOf(c, collection, "2")
	req.ErrorIs(err, asset.ErrUnknownToken)
}

func TestApprovals(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	im := newRegistry(t)
	req.NoError(im.Mint(c, collection, "1", alice))

	ok, err := im.IsApprovedOperator(c, collection, "1", market)
	req.NoError(err)
	req.False(ok)

	req.ErrorIs(im.Approve(c, collection, "1", bob, market), asset.ErrNotAuthorized)
	req.NoError(im.Approve(c, collection, "1", alice, market))
	approved, err := im.GetApproved(c, collection, "1")
	req.NoError(err)
	req.Equal(market, approved)

	ok, err = im.IsApprovedOperator(c, collection, "1", market)
	req.NoError(err)
	req.True(ok)

	// revoke
	req.NoError(im.Approve(c, collection, "1", alice, domain.EmptyAddress))
	ok, err = im.IsApprovedOperator(c, collection, "1", market)
	req.NoError(err)
	req.False(ok)
	approved, err = im.GetApproved(c, collection, "1")
	req.NoError(err)
	req.Equal(domain.EmptyAddress, approved)

	req.ErrorIs(im.SetApprovalForAll(c, "0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0", alice, market, true), asset.ErrUnknownCollection)
	req.NoError(im.SetApprovalForAll(c, collection, alice, market, true))
	ok, err = im.IsApprovedOperator(c, collection, "1", market)
	req.NoError(err)
	req.True(ok)

	// an operator approved for all may approve single tokens
	req.NoError(im.Approve(c, collection, "1", market, bob))

	req.NoError(im.SetApprovalForAll(c, collection, alice, market, false))
	ok, err = im.IsApprovedOperator(c, collection, "1", market)
	req.NoError(err)
	req.False(ok)
}

func TestTransfer(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	im := newRegistry(t)
	req.NoError(im.Mint(c, collection, "1", alice))

	req.ErrorIs(im.Transfer(c, collection, "1", market, alice, bob), asset.ErrNotAuthorized)

	req.NoError(im.Approve(c, collection, "1", alice, market))
	req.ErrorIs(im.Transfer(c, collection, "1", market, bob, alice), asset.ErrWrongFrom)
	req.ErrorIs(im.Transfer(c, collection, "1", market, alice, domain.EmptyAddress), asset.ErrZeroReceiver)
	req.NoError(im.Transfer(c, collection, "1", market, alice, bob))

	owner, err := im.OwnerOf(c, collection, "1")
	req.NoError(err)
	req.Equal(bob, owner)

	// the single token approval does not survive a transfer
	approved, err := im.GetApproved(c, collection, "1")
	req.NoError(err)
	req.Equal(domain.EmptyAddress, approved)
	req.ErrorIs(im.Transfer(c, collection, "1", market, bob, alice), asset.ErrNotAuthorized)
}

func TestCustodyPersists(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	store, path := newStore(t)

	im := NewStored(store)
	req.NoError(im.Mint(c, collection, "1", alice))
	req.NoError(im.SetApprovalForAll(c, collection, alice, market, true))
	req.NoError(im.Transfer(c, collection, "1", market, alice, bob))
	req.NoError(store.Close())

	store, err := bolt.Open(path)
	req.NoError(err)
	defer store.Close()
	im = NewStored(store)

	owner, err := im.OwnerOf(c, collection, "1")
	req.NoError(err)
	req.Equal(bob, owner)

	// the approval was granted by alice, bob never gave one
	ok, err := im.IsApprovedOperator(c, collection, "1", market)
	req.NoError(err)
	req.False(ok)
}

func TestAbortedTransactionKeepsCustody(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	store, _ := newStore(t)
	defer store.Close()
	im := NewStored(store)
	req.NoError(im.Mint(c, collection, "1", alice))

	err := store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		req.NoError(New(tx.Assets()).Transfer(c, collection, "1", alice, alice, bob))
		return domain.ErrConflict
	})
	req.ErrorIs(err, domain.ErrConflict)

	owner, err := im.OwnerOf(c, collection, "1")
	req.NoError(err)
	req.Equal(alice, owner)
}
