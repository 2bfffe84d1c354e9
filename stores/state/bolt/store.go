package bolt

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/holiman/uint256"
	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/escrow"
	"github.com/x-xyz/marketledger/domain/gate"
	"github.com/x-xyz/marketledger/domain/listing"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/domain/payment"
	"github.com/x-xyz/marketledger/stores/state"
)

const openTimeout = 3 * time.Second

var buckets = []domain.Table{
	domain.TableListings,
	domain.TableEscrowBalances,
	domain.TableMarketConfig,
	domain.TableCounters,
	domain.TableAssetCollections,
	domain.TableAssetTokens,
	domain.TableAssetOperators,
	domain.TableWalletBalances,
}

type store struct {
	db *bbolt.DB
}

// Open opens (or creates) the bolt file at path
func Open(path string) (marketplace.Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, xerrors.Errorf("open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, xerrors.Errorf("create buckets: %w", err)
	}

	log.Log().WithField("path", path).Info("bolt store opened")
	return &store{db}, nil
}

func (s *store) Update(c ctx.Ctx, fn marketplace.TxFunc) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(c, &stateTx{tx})
	})
}

func (s *store) View(c ctx.Ctx, fn marketplace.TxFunc) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(c, &stateTx{tx})
	})
}

func (s *store) Close() error {
	return s.db.Close()
}

type stateTx struct {
	tx *bbolt.Tx
}

func (t *stateTx) Listings() listing.Repo {
	return &listingRepo{t.tx}
}

func (t *stateTx) Escrow() escrow.Repo {
	return &escrowRepo{t.tx}
}

func (t *stateTx) Config() gate.Repo {
	return &configRepo{t.tx}
}

func (t *stateTx) Assets() asset.Repo {
	return &assetRepo{t.tx}
}

func (t *stateTx) Wallet() payment.Repo {
	return &walletRepo{t.tx}
}

func bucket(tx *bbolt.Tx, table domain.Table) *bbolt.Bucket {
	return tx.Bucket([]byte(table))
}

func get(tx *bbolt.Tx, table domain.Table, key string, v interface{}) error {
	raw := bucket(tx, table).Get([]byte(key))
	if raw == nil {
		return domain.ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return xerrors.Errorf("decode %s/%s: %w", table, key, err)
	}
	return nil
}

func put(tx *bbolt.Tx, table domain.Table, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return xerrors.Errorf("encode %s/%s: %w", table, key, err)
	}
	return bucket(tx, table).Put([]byte(key), raw)
}

type listingRepo struct {
	tx *bbolt.Tx
}

func (r *listingRepo) FindOne(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	rec := &state.ListingRecord{}
	if err := get(r.tx, domain.TableListings, id.Key(), rec); err != nil {
		return nil, err
	}
	rec.Key = id.Key()
	return rec.ToListing()
}

func (r *listingRepo) Insert(c ctx.Ctx, l *listing.Listing) error {
	if bucket(r.tx, domain.TableListings).Get([]byte(l.Key())) != nil {
		return domain.ErrConflict
	}
	if err := put(r.tx, domain.TableListings, l.Key(), state.FromListing(l)); err != nil {
		return err
	}
	return r.add(1)
}

func (r *listingRepo) Update(c ctx.Ctx, l *listing.Listing) error {
	if bucket(r.tx, domain.TableListings).Get([]byte(l.Key())) == nil {
		return domain.ErrNotFound
	}
	return put(r.tx, domain.TableListings, l.Key(), state.FromListing(l))
}

func (r *listingRepo) Remove(c ctx.Ctx, id listing.Id) error {
	b := bucket(r.tx, domain.TableListings)
	if b.Get([]byte(id.Key())) == nil {
		return domain.ErrNotFound
	}
	if err := b.Delete([]byte(id.Key())); err != nil {
		return err
	}
	return r.add(-1)
}

func (r *listingRepo) Count(c ctx.Ctx) (uint64, error) {
	raw := bucket(r.tx, domain.TableCounters).Get([]byte(state.ListingCountKey))
	if raw == nil {
		return 0, nil
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (r *listingRepo) add(delta int64) error {
	n, _ := r.Count(ctx.Background())
	if delta < 0 && n < uint64(-delta) {
		return xerrors.Errorf("listing counter underflow at %d", n)
	}
	n = uint64(int64(n) + delta)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return bucket(r.tx, domain.TableCounters).Put([]byte(state.ListingCountKey), buf)
}

type escrowRepo struct {
	tx *bbolt.Tx
}

func (r *escrowRepo) FindOne(c ctx.Ctx, payee domain.Address) (*escrow.Balance, error) {
	rec := &state.BalanceRecord{}
	if err := get(r.tx, domain.TableEscrowBalances, payee.ToLowerStr(), rec); err != nil {
		return nil, err
	}
	return rec.ToBalance()
}

func (r *escrowRepo) Upsert(c ctx.Ctx, b *escrow.Balance) error {
	return put(r.tx, domain.TableEscrowBalances, b.Payee.ToLowerStr(), state.FromBalance(b))
}

type configRepo struct {
	tx *bbolt.Tx
}

func (r *configRepo) Get(c ctx.Ctx) (*gate.Config, error) {
	rec := &state.ConfigRecord{}
	if err := get(r.tx, domain.TableMarketConfig, state.ConfigKey, rec); err != nil {
		return nil, err
	}
	return rec.ToConfig()
}

func (r *configRepo) Put(c ctx.Ctx, cfg *gate.Config) error {
	return put(r.tx, domain.TableMarketConfig, state.ConfigKey, state.FromConfig(cfg))
}

type assetRepo struct {
	tx *bbolt.Tx
}

func (r *assetRepo) HasCollection(c ctx.Ctx, collection domain.Address) (bool, error) {
	return bucket(r.tx, domain.TableAssetCollections).Get([]byte(collection.ToLowerStr())) != nil, nil
}

func (r *assetRepo) AddCollection(c ctx.Ctx, collection domain.Address) error {
	return put(r.tx, domain.TableAssetCollections, collection.ToLowerStr(), &state.CollectionRecord{Collection: collection.ToLower()})
}

func (r *assetRepo) FindToken(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*asset.Token, error) {
	rec := &state.TokenRecord{}
	if err := get(r.tx, domain.TableAssetTokens, state.TokenKey(collection, tokenId), rec); err != nil {
		return nil, err
	}
	return rec.ToToken(), nil
}

func (r *assetRepo) UpsertToken(c ctx.Ctx, t *asset.Token) error {
	return put(r.tx, domain.TableAssetTokens, state.TokenKey(t.Collection, t.TokenId), state.FromToken(t))
}

func (r *assetRepo) IsOperator(c ctx.Ctx, collection domain.Address, owner, operator domain.Address) (bool, error) {
	key := state.OperatorKey(collection, owner, operator)
	return bucket(r.tx, domain.TableAssetOperators).Get([]byte(key)) != nil, nil
}

func (r *assetRepo) SetOperator(c ctx.Ctx, collection domain.Address, owner, operator domain.Address, approved bool) error {
	key := state.OperatorKey(collection, owner, operator)
	if !approved {
		return bucket(r.tx, domain.TableAssetOperators).Delete([]byte(key))
	}
	return put(r.tx, domain.TableAssetOperators, key, &state.OperatorRecord{})
}

type walletRepo struct {
	tx *bbolt.Tx
}

func (r *walletRepo) BalanceOf(c ctx.Ctx, account domain.Address) (*uint256.Int, error) {
	rec := &state.WalletRecord{}
	if err := get(r.tx, domain.TableWalletBalances, account.ToLowerStr(), rec); err == domain.ErrNotFound {
		return domain.Zero(), nil
	} else if err != nil {
		return nil, err
	}
	return rec.ToBalance()
}

func (r *walletRepo) Put(c ctx.Ctx, account domain.Address, balance *uint256.Int) error {
	return put(r.tx, domain.TableWalletBalances, account.ToLowerStr(), &state.WalletRecord{
		Account: account.ToLower(),
		Balance: domain.AmountString(balance),
	})
}
