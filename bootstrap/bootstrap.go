// Package bootstrap wires config, logger, a concrete adapter, the
// Facade, and the example controller/router together into a runnable
// process, using a staged Register/Init/Go startup (see initializer.go)
// pruned down to the handful of components this module actually has.
package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/adapter/redisstore"
	"github.com/forbearing/gstore/adapter/sqlstore"
	"github.com/forbearing/gstore/config"
	"github.com/forbearing/gstore/controller"
	"github.com/forbearing/gstore/facade"
	"github.com/forbearing/gstore/logger"
	pkgzap "github.com/forbearing/gstore/logger/zap"
	"github.com/forbearing/gstore/router"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// widgetCollection is the single demo collection the example
// controller serves; see package model.
const widgetCollection = "widget"

var (
	initialized bool
	mu          sync.Mutex

	adapter types.Adapter
	f       *facade.Facade
)

// Bootstrap runs every registered init function exactly once: config,
// logger, the configured adapter, the facade, the demo collection's
// schema sync, and the example controller/router.
func Bootstrap() error {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return nil
	}

	Register(
		config.Init,
		pkgzap.Init,
		openAdapter,
		initFacade,
		syncWidgets,
		initController,
	)
	if err := Init(); err != nil {
		return err
	}

	RegisterCleanup(config.Clean)
	RegisterCleanup(pkgzap.Clean)
	RegisterCleanup(teardownAdapter)

	initialized = true
	return nil
}

// openAdapter constructs the concrete types.Adapter named by
// config.App.Facade.Adapter.
func openAdapter() error {
	cfg := types.Config{
		CreatedAt:                 config.App.Facade.CreatedAt,
		UpdatedAt:                 config.App.Facade.UpdatedAt,
		TransactionWarningTimerMS: config.App.Facade.TransactionWarningTimerMS,
	}
	gormLog := pkgzap.NewGormLogger(logger.Database, 200*time.Millisecond)

	switch config.App.Facade.Adapter {
	case "sqlite":
		store, err := sqlstore.Open(sqlstore.SQLite, config.App.Sqlite.Path, cfg, gormLog)
		if err != nil {
			return errors.Wrap(err, "failed to open sqlite adapter")
		}
		adapter = store
	case "postgres":
		store, err := sqlstore.OpenPostgres(sqlstore.PostgresParams{
			Host:     config.App.Postgres.Host,
			Port:     config.App.Postgres.Port,
			Database: config.App.Postgres.Database,
			Username: config.App.Postgres.Username,
			Password: config.App.Postgres.Password,
			SSLMode:  config.App.Postgres.SSLMode,
		}, cfg, gormLog)
		if err != nil {
			return errors.Wrap(err, "failed to open postgres adapter")
		}
		adapter = store
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.App.Redis.Addr,
			Password: config.App.Redis.Password,
			DB:       config.App.Redis.DB,
		})
		adapter = redisstore.New(rdb, config.App.Redis.Prefix, cfg, config.App.Redis.Expiration)
	default:
		return errors.Newf("unknown facade.adapter %q: want sqlite, postgres, or redis", config.App.Facade.Adapter)
	}

	if initer, ok := adapter.(types.Initializer); ok {
		return initer.Initialize(context.Background())
	}
	return nil
}

func teardownAdapter() {
	if teardowner, ok := adapter.(types.Teardowner); ok {
		if err := teardowner.Teardown(context.Background()); err != nil {
			zap.S().Errorw("adapter teardown failed", "err", err)
		}
	}
}

// initFacade upgrades adapter into a Facade, logging through
// logger.Facade and honoring the configured reserved collection name.
func initFacade() error {
	f = facade.New(adapter,
		facade.WithLogger(logger.Facade),
		facade.WithTransactionCollection(config.App.Facade.TransactionCollection),
	)
	return nil
}

// syncWidgets reconciles the demo "widget" collection's schema at
// startup, the same way a host application would call Facade.Sync for
// each of its own collections.
func syncWidgets() error {
	return f.Sync(context.Background(), consts.SyncAlter, widgetCollection, types.Attributes{
		"name": {Type: consts.AttrString},
	})
}

func initController() error {
	ctl := controller.New(f, widgetCollection)
	router.Init(ctl)
	return nil
}

// Run starts the HTTP server and blocks until an interrupt/terminate
// signal arrives or the server itself fails.
func Run() error {
	defer Cleanup()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	errCh := make(chan error, 1)

	go func() { errCh <- router.Run() }()

	select {
	case sig := <-sigCh:
		zap.S().Infow("shutting down", "signal", sig)
		router.Stop()
		return nil
	case err := <-errCh:
		return err
	}
}
