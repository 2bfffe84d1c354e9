package mongo

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/database/mongoclient"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/escrow"
	"github.com/x-xyz/marketledger/domain/gate"
	"github.com/x-xyz/marketledger/domain/listing"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/service/query"
)

var (
	mockId = listing.Id{Collection: "0xdcf0de6b17785a143d006e1515a6afd123cde8ba", TokenId: "1"}
	seller = domain.Address("0xce4468e7ce84aceb74363f4ea64e5a038176f369")
)

type storeSuite struct {
	suite.Suite

	client *mongoclient.Client
	store  marketplace.Store
}

// The suite needs a replica set for transactions, e.g.
// MONGO_URI="mongodb://localhost:27017/?replicaSet=rs0"
func TestStoreSuite(t *testing.T) {
	if os.Getenv("MONGO_URI") == "" {
		t.Skip("MONGO_URI is not set")
	}
	suite.Run(t, new(storeSuite))
}

func (s *storeSuite) SetupSuite() {
	s.client = mongoclient.MustConnect(mongoclient.Config{
		URI:      os.Getenv("MONGO_URI"),
		DBName:   "marketledger_test",
		SetSafe:  true,
		PoolSize: 1,
	})
	s.store = New(query.New(s.client, false))
}

func (s *storeSuite) SetupTest() {
	db := s.client.Database(s.client.DbName)
	for _, table := range []domain.Table{domain.TableListings, domain.TableEscrowBalances, domain.TableMarketConfig, domain.TableCounters,
		domain.TableAssetCollections, domain.TableAssetTokens, domain.TableAssetOperators, domain.TableWalletBalances,
	} {
		s.Require().NoError(db.Collection(string(table)).Drop(ctx.Background()))
		// collections cannot be created inside a transaction before 4.4
		s.Require().NoError(db.CreateCollection(ctx.Background(), string(table)))
	}
}

func (s *storeSuite) TearDownSuite() {
	s.Require().NoError(s.client.Disconnect(ctx.Background()))
}

func (s *storeSuite) TestListings() {
	c := ctx.Background()
	s.Require().NoError(s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return tx.Listings().Insert(c, &listing.Listing{Id: mockId, Price: uint256.NewInt(100), Seller: seller})
	}))

	s.Require().NoError(s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		l, err := tx.Listings().FindOne(c, mockId)
		s.Require().NoError(err)
		s.Equal(uint64(100), l.Price.Uint64())
		s.Equal(seller, l.Seller)

		n, err := tx.Listings().Count(c)
		s.Require().NoError(err)
		s.Equal(uint64(1), n)
		return nil
	}))

	err := s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return tx.Listings().Insert(c, &listing.Listing{Id: mockId, Price: uint256.NewInt(1), Seller: seller})
	})
	s.ErrorIs(err, domain.ErrConflict)

	s.Require().NoError(s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return tx.Listings().Remove(c, mockId)
	}))
	s.Require().NoError(s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		_, err := tx.Listings().FindOne(c, mockId)
		s.ErrorIs(err, domain.ErrNotFound)
		n, err := tx.Listings().Count(c)
		s.Require().NoError(err)
		s.Zero(n)
		return nil
	}))
}

func (s *storeSuite) TestRollback() {
	c := ctx.Background()
	boom := errors.New("boom")

	err := s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		s.Require().NoError(tx.Escrow().Upsert(c, &escrow.Balance{Payee: seller, Pending: uint256.NewInt(5)}))
		return boom
	})
	s.ErrorIs(err, boom)

	s.Require().NoError(s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		_, err := tx.Escrow().FindOne(c, seller)
		s.ErrorIs(err, domain.ErrNotFound)
		return nil
	}))
}

func (s *storeSuite) TestConfig() {
	c := ctx.Background()
	s.Require().NoError(s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return tx.Config().Put(c, &gate.Config{Owner: seller, ListingFee: uint256.NewInt(3), WithdrawalPeriod: time.Minute})
	}))
	s.Require().NoError(s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		cfg, err := tx.Config().Get(c)
		s.Require().NoError(err)
		s.Equal(seller, cfg.Owner)
		s.Equal(uint64(3), cfg.ListingFee.Uint64())
		s.Equal(time.Minute, cfg.WithdrawalPeriod)
		s.False(cfg.Paused)
		return nil
	}))
}

func (s *storeSuite) TestAssetsAndWallet() {
	c := ctx.Background()
	operator := domain.Address("0xdf8650b0ca1260f7a2f4fdff9082aede554f65ad")

	s.Require().NoError(s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		assets := tx.Assets()
		s.Require().NoError(assets.AddCollection(c, mockId.Collection))
		s.Require().NoError(assets.UpsertToken(c, &asset.Token{Collection: mockId.Collection, TokenId: mockId.TokenId, Owner: seller}))
		s.Require().NoError(assets.SetOperator(c, mockId.Collection, seller, operator, true))
		return tx.Wallet().Put(c, seller, uint256.NewInt(42))
	}))

	s.Require().NoError(s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		ok, err := tx.Assets().HasCollection(c, mockId.Collection)
		s.Require().NoError(err)
		s.True(ok)
		tok, err := tx.Assets().FindToken(c, mockId.Collection, mockId.TokenId)
		s.Require().NoError(err)
		s.Equal(seller, tok.Owner)
		s.True(tok.Approved.IsEmpty())
		ok, err = tx.Assets().IsOperator(c, mockId.Collection, seller, operator)
		s.Require().NoError(err)
		s.True(ok)

		b, err := tx.Wallet().BalanceOf(c, seller)
		s.Require().NoError(err)
		s.Equal(uint64(42), b.Uint64())
		b, err = tx.Wallet().BalanceOf(c, operator)
		s.Require().NoError(err)
		s.True(b.IsZero())
		return nil
	}))

	// custody and value roll back with the rest of the transaction
	boom := errors.New("boom")
	err := s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		s.Require().NoError(tx.Assets().UpsertToken(c, &asset.Token{Collection: mockId.Collection, TokenId: mockId.TokenId, Owner: operator}))
		s.Require().NoError(tx.Wallet().Put(c, seller, uint256.NewInt(0)))
		return boom
	})
	s.ErrorIs(err, boom)
	s.Require().NoError(s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		tok, err := tx.Assets().FindToken(c, mockId.Collection, mockId.TokenId)
		s.Require().NoError(err)
		s.Equal(seller, tok.Owner)
		b, err := tx.Wallet().BalanceOf(c, seller)
		s.Require().NoError(err)
		s.Equal(uint64(42), b.Uint64())
		return nil
	}))
}
