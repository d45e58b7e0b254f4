package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/boltdb/bolt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
}

type App struct {
	logger      *zap.Logger
	config      *Config
	identity    *IdentityStore
	catalog     *CatalogStore
	theme       *ThemeStore
	navigator   *Navigator
	consumer    Consumer
	sweeper     *OverdueSweeper
	boltClient  *bolt.DB
	redisClient *redis.Client
	cleanups    []func()
}

// NewApp provides an instance of App with every component wired.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// Ensure the logs folder exists and setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	tick := NewTickClock(clock)
	writer := NewRotateWriter(config, clock)
	logger, flusher := SetupLogging(config, writer, tick)
	closer := func() {
		if cerr := writer.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	}

	// Setup the durable client-local storage.
	boltClient, err := GetBoltDBClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %s", err)
	}
	storage := NewBoltStorage(logger, &config.BoltDB, boltClient)

	// Setup the journal queue per the configured provider.
	var queue Queuer
	var redisClient *redis.Client
	switch config.Queue.Provider {
	case QueueProviderRedis:
		redisClient, err = GetRedisClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		queue = NewRedisQueue(redisClient)
	default:
		queue = NewMemoryQueue(config.Queue.Size)
	}

	// Setup the stores and the navigation gate.
	directory, err := NewDirectory(SeedUsers())
	if err != nil {
		return nil, fmt.Errorf("failed to build credential directory: %s", err)
	}
	dispatcher := NewLatencyDispatcher(logger, clock, NewIDsHandler(), config.Request.Latency)
	identity := NewIdentityStore(logger, dispatcher, directory, storage)
	catalog := NewCatalogStore(logger, clock, dispatcher, identity, queue, SeedBooks(), SeedBorrowings())
	theme := NewThemeStore(logger, storage)
	navigator := NewNavigator(logger, identity, DefaultRoutes())
	consumer := NewBoltJournalConsumer(logger, queue, storage)
	sweeper := NewOverdueSweeper(logger, tick, catalog, config.Overdue.After, config.Overdue.Sweep)

	cleanups := []func(){
		func() {
			if ferr := flusher(); ferr != nil {
				fmt.Println(ferr)
			}
		},
		closer,
		func() {
			if cerr := boltClient.Close(); cerr != nil {
				fmt.Println("error during closing of local database: ", cerr)
			}
		},
	}
	if redisClient != nil {
		cleanups = append(cleanups, func() {
			if cerr := redisClient.Close(); cerr != nil {
				fmt.Println("error during closing of redis client: ", cerr)
			}
		})
	}

	return &App{
		logger:      logger,
		config:      config,
		identity:    identity,
		catalog:     catalog,
		theme:       theme,
		navigator:   navigator,
		consumer:    consumer,
		sweeper:     sweeper,
		boltClient:  boltClient,
		redisClient: redisClient,
		cleanups:    cleanups,
	}, nil
}

// Run starts the journal consumer, the overdue sweeper and the console
// loop, and stops them all on interrupt or when the console exits.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(func() error {
		return app.consumer.Consume(gCtx, CatalogQueue, LedgerQueue)
	})
	if app.config.Overdue.Enable {
		g.Go(func() error {
			return app.sweeper.Run(gCtx)
		})
	}
	g.Go(app.Console(gCtx, stop))

	err := g.Wait()
	app.logger.Info("application stopped", zap.Error(err))
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}
