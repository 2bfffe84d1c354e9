package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/database/mongoclient"
	"github.com/x-xyz/marketledger/base/database/redisclient"
	"github.com/x-xyz/marketledger/base/goroutine"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/base/metrics"
	"github.com/x-xyz/marketledger/base/price"
	bValidator "github.com/x-xyz/marketledger/base/validator"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/domain/gate"
	"github.com/x-xyz/marketledger/domain/marketplace"
	mmiddleware "github.com/x-xyz/marketledger/middleware"
	"github.com/x-xyz/marketledger/service/chain"
	"github.com/x-xyz/marketledger/service/chain/contract"
	"github.com/x-xyz/marketledger/service/query"
	"github.com/x-xyz/marketledger/service/redis"
	asset_delivery "github.com/x-xyz/marketledger/stores/asset/delivery/http"
	asset_usecase "github.com/x-xyz/marketledger/stores/asset/usecase"
	event_delivery "github.com/x-xyz/marketledger/stores/event/delivery/http"
	event_repository "github.com/x-xyz/marketledger/stores/event/repository"
	gate_usecase "github.com/x-xyz/marketledger/stores/gate/usecase"
	hc_delivery "github.com/x-xyz/marketledger/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/marketledger/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/marketledger/stores/healthcheck/usecase"
	marketplace_delivery "github.com/x-xyz/marketledger/stores/marketplace/delivery/http"
	marketplace_usecase "github.com/x-xyz/marketledger/stores/marketplace/usecase"
	"github.com/x-xyz/marketledger/stores/state/bolt"
	state_mongo "github.com/x-xyz/marketledger/stores/state/mongo"
	wallet_delivery "github.com/x-xyz/marketledger/stores/wallet/delivery/http"
	wallet_usecase "github.com/x-xyz/marketledger/stores/wallet/usecase"
)

const journalLimit = 10000

func init() {
	configFile := pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	viper.SetEnvPrefix("MARKET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	log.SetLevel(viper.GetString("log.level"))
	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func mustAddress(key string) domain.Address {
	addr, err := domain.ParseAddress(viper.GetString(key))
	if err != nil {
		log.Log().WithFields(log.Fields{"key": key, "err": err}).Panic("invalid address in config")
	}
	return addr
}

func main() {
	context := ctx.Background()

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware(metrics.New("http"))
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middL.CORS)
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	// init mongo client, needed by the mongo store
	var q query.Mongo
	if viper.GetString("store.driver") == "mongo" || viper.GetString("events.sink") == "mongo" {
		context.Info("init mongo")
		mongoCfg := mongoclient.Config{}
		if err := viper.UnmarshalKey("mongo", &mongoCfg); err != nil {
			context.WithField("err", err).Panic("invalid mongo config")
		}
		q = query.New(mongoclient.MustConnect(mongoCfg), viper.GetBool("mongo.checkIndex"))
	}

	// init Redis service, needed by the redis event sink
	var redisService redis.Service
	if uri := viper.GetString("redis.uri"); uri != "" {
		context.Info("init redis")
		name := viper.GetString("redis.name")
		pool := redisclient.MustConnectRedis(uri, viper.GetString("redis.password"), redisclient.RedisParam{
			PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
			Retry:          true,
		})
		redisService = redis.New(name, metrics.New(name), &redis.Pools{
			Src: pool,
		})
	}

	// state store
	var store marketplace.Store
	switch driver := viper.GetString("store.driver"); driver {
	case "mongo":
		store = state_mongo.New(q)
	case "", "bolt":
		s, err := bolt.Open(viper.GetString("store.boltPath"))
		if err != nil {
			context.WithField("err", err).Panic("bolt.Open failed")
		}
		store = s
	default:
		context.WithField("driver", driver).Panic("unknown store driver")
	}
	defer store.Close()

	fee, err := price.FromEther(viper.GetString("marketplace.listingFee"))
	if err != nil {
		context.WithField("err", err).Panic("invalid marketplace.listingFee")
	}
	err = store.Update(context, func(c ctx.Ctx, tx marketplace.StateTx) error {
		created, err := gate_usecase.New(tx.Config()).Init(c, gate.Config{
			Owner:            mustAddress("marketplace.owner"),
			ListingFee:       fee,
			WithdrawalPeriod: viper.GetDuration("marketplace.withdrawalPeriod"),
		})
		if created {
			c.Info("marketplace initialised")
		}
		return err
	})
	if err != nil {
		context.WithField("err", err).Panic("marketplace init failed")
	}

	// notifications, always kept in memory for GET /events
	journal := event_repository.NewMemoryJournal(journalLimit)
	var sink event.Publisher
	switch name := viper.GetString("events.sink"); name {
	case "redis":
		if redisService == nil {
			context.Panic("events.sink redis needs redis.uri")
		}
		sink = event_repository.NewRedisJournal(redisService, viper.GetString("events.channel"), viper.GetString("events.key"))
	case "mongo":
		sink = event_repository.NewMongoJournal(q)
	case "", "log":
		sink = event_repository.NewLogPublisher()
	default:
		context.WithField("sink", name).Panic("unknown events.sink")
	}

	// assets and value live in the state store next to the ledger
	assets := asset_usecase.NewStored(store)
	wallet := wallet_usecase.NewStored(store)

	// optional read-only view of an ERC-721 chain
	var onchain asset.Oracle
	if rpcUrl := viper.GetString("chain.rpcUrl"); rpcUrl != "" {
		chainId := viper.GetInt32("chain.chainId")
		chainService, err := chain.NewClient(context, &chain.ClientCfg{
			RpcUrls: map[int32]string{chainId: rpcUrl},
		})
		if err != nil {
			context.WithField("err", err).Warn("chainService started with error")
		} else {
			onchain = contract.NewErc721(chainService, chainId)
		}
	}

	marketAddress := mustAddress("marketplace.address")
	market := marketplace_usecase.New(&marketplace_usecase.Config{
		Address:   marketAddress,
		Store:     store,
		Publisher: event_repository.NewMulti(journal, sink),
		Metrics:   metrics.New("marketplace"),
	})

	hc := hc_usecase.New(hc_repo.New(store, q, redisService))

	hc_delivery.New(e, hc)
	marketplace_delivery.New(e, market)
	asset_delivery.New(e, assets, onchain, marketAddress)
	wallet_delivery.New(e, wallet, viper.GetBool("wallet.faucet"))
	event_delivery.New(e, journal)

	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	crashed := goroutine.RecoverableGo(context, "http-server", func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	})

	// Wait for interrupt signal or a server panic to gracefully shutdown the server with a timeout of 10 seconds.
	select {
	case sig := <-quit:
		log.Log().WithField("signal", sig).Info("received signal")
	case ev, ok := <-crashed:
		if ok {
			log.Log().WithField("task", ev.Task).Error("server task panicked")
		}
	}
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
