package mongo

import (
	"github.com/holiman/uint256"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/escrow"
	"github.com/x-xyz/marketledger/domain/gate"
	"github.com/x-xyz/marketledger/domain/listing"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/domain/payment"
	"github.com/x-xyz/marketledger/service/query"
	"github.com/x-xyz/marketledger/stores/state"
)

type store struct {
	q query.Mongo
}

// New returns a store whose updates run in mongo transactions
func New(q query.Mongo) marketplace.Store {
	return &store{q}
}

func (s *store) Update(c ctx.Ctx, fn marketplace.TxFunc) error {
	return s.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		return fn(c, &stateTx{s.q})
	})
}

func (s *store) View(c ctx.Ctx, fn marketplace.TxFunc) error {
	return fn(c, &stateTx{s.q})
}

// Close is a no-op, the client is owned by the caller of New
func (s *store) Close() error {
	return nil
}

type stateTx struct {
	q query.Mongo
}

func (t *stateTx) Listings() listing.Repo {
	return &listingRepo{t.q}
}

func (t *stateTx) Escrow() escrow.Repo {
	return &escrowRepo{t.q}
}

func (t *stateTx) Config() gate.Repo {
	return &configRepo{t.q}
}

func (t *stateTx) Assets() asset.Repo {
	return &assetRepo{t.q}
}

func (t *stateTx) Wallet() payment.Repo {
	return &walletRepo{t.q}
}

func notFound(err error) error {
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	}
	return err
}

type counter struct {
	Key string `bson:"_id"`
	N   int64  `bson:"n"`
}

type listingRepo struct {
	q query.Mongo
}

func (r *listingRepo) FindOne(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	rec := &state.ListingRecord{}
	if err := r.q.FindOne(c, domain.TableListings, bson.M{"_id": id.Key()}, rec); err != nil {
		return nil, notFound(err)
	}
	return rec.ToListing()
}

func (r *listingRepo) Insert(c ctx.Ctx, l *listing.Listing) error {
	if err := r.q.Insert(c, domain.TableListings, state.FromListing(l)); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		return err
	}
	return r.add(c, 1)
}

func (r *listingRepo) Update(c ctx.Ctx, l *listing.Listing) error {
	if _, err := r.FindOne(c, l.Id); err != nil {
		return err
	}
	return r.q.Upsert(c, domain.TableListings, bson.M{"_id": l.Key()}, state.FromListing(l))
}

func (r *listingRepo) Remove(c ctx.Ctx, id listing.Id) error {
	if err := r.q.Remove(c, domain.TableListings, bson.M{"_id": id.Key()}); err != nil {
		return notFound(err)
	}
	return r.add(c, -1)
}

func (r *listingRepo) Count(c ctx.Ctx) (uint64, error) {
	res := &counter{}
	if err := r.q.FindOne(c, domain.TableCounters, bson.M{"_id": state.ListingCountKey}, res); err == query.ErrNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return uint64(res.N), nil
}

func (r *listingRepo) add(c ctx.Ctx, delta int64) error {
	res := &counter{}
	return r.q.Increment(c, domain.TableCounters, bson.M{"_id": state.ListingCountKey}, res, "n", delta)
}

type escrowRepo struct {
	q query.Mongo
}

func (r *escrowRepo) FindOne(c ctx.Ctx, payee domain.Address) (*escrow.Balance, error) {
	rec := &state.BalanceRecord{}
	if err := r.q.FindOne(c, domain.TableEscrowBalances, bson.M{"_id": payee.ToLower()}, rec); err != nil {
		return nil, notFound(err)
	}
	return rec.ToBalance()
}

func (r *escrowRepo) Upsert(c ctx.Ctx, b *escrow.Balance) error {
	return r.q.Upsert(c, domain.TableEscrowBalances, bson.M{"_id": b.Payee.ToLower()}, state.FromBalance(b))
}

type configRepo struct {
	q query.Mongo
}

func (r *configRepo) Get(c ctx.Ctx) (*gate.Config, error) {
	rec := &state.ConfigRecord{}
	if err := r.q.FindOne(c, domain.TableMarketConfig, bson.M{"_id": state.ConfigKey}, rec); err != nil {
		return nil, notFound(err)
	}
	return rec.ToConfig()
}

func (r *configRepo) Put(c ctx.Ctx, cfg *gate.Config) error {
	return r.q.Upsert(c, domain.TableMarketConfig, bson.M{"_id": state.ConfigKey}, state.FromConfig(cfg))
}

type assetRepo struct {
	q query.Mongo
}

// exists reports whether a document with id is in table
func exists(c ctx.Ctx, q query.Mongo, table domain.Table, id string) (bool, error) {
	res := bson.M{}
	if err := q.FindOne(c, table, bson.M{"_id": id}, &res); err == query.ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (r *assetRepo) HasCollection(c ctx.Ctx, collection domain.Address) (bool, error) {
	return exists(c, r.q, domain.TableAssetCollections, collection.ToLowerStr())
}

func (r *assetRepo) AddCollection(c ctx.Ctx, collection domain.Address) error {
	return r.q.Upsert(c, domain.TableAssetCollections, bson.M{"_id": collection.ToLower()}, &state.CollectionRecord{Collection: collection.ToLower()})
}

func (r *assetRepo) FindToken(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*asset.Token, error) {
	rec := &state.TokenRecord{}
	if err := r.q.FindOne(c, domain.TableAssetTokens, bson.M{"_id": state.TokenKey(collection, tokenId)}, rec); err != nil {
		return nil, notFound(err)
	}
	return rec.ToToken(), nil
}

func (r *assetRepo) UpsertToken(c ctx.Ctx, t *asset.Token) error {
	rec := state.FromToken(t)
	return r.q.Upsert(c, domain.TableAssetTokens, bson.M{"_id": rec.Key}, rec)
}

func (r *assetRepo) IsOperator(c ctx.Ctx, collection domain.Address, owner, operator domain.Address) (bool, error) {
	return exists(c, r.q, domain.TableAssetOperators, state.OperatorKey(collection, owner, operator))
}

func (r *assetRepo) SetOperator(c ctx.Ctx, collection domain.Address, owner, operator domain.Address, approved bool) error {
	key := state.OperatorKey(collection, owner, operator)
	if approved {
		return r.q.Upsert(c, domain.TableAssetOperators, bson.M{"_id": key}, &state.OperatorRecord{Key: key})
	}
	if err := r.q.Remove(c, domain.TableAssetOperators, bson.M{"_id": key}); err != nil && err != query.ErrNotFound {
		return err
	}
	return nil
}

type walletRepo struct {
	q query.Mongo
}

func (r *walletRepo) BalanceOf(c ctx.Ctx, account domain.Address) (*uint256.Int, error) {
	rec := &state.WalletRecord{}
	if err := r.q.FindOne(c, domain.TableWalletBalances, bson.M{"_id": account.ToLower()}, rec); err == query.ErrNotFound {
		return domain.Zero(), nil
	} else if err != nil {
		return nil, err
	}
	return rec.ToBalance()
}

func (r *walletRepo) Put(c ctx.Ctx, account domain.Address, balance *uint256.Int) error {
	return r.q.Upsert(c, domain.TableWalletBalances, bson.M{"_id": account.ToLower()}, &state.WalletRecord{
		Account: account.ToLower(),
		Balance: domain.AmountString(balance),
	})
}
