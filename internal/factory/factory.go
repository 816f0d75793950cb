package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/couplobby/internal/dependencies/clock"
	"github.com/mcoot/couplobby/internal/dependencies/ids"
	"github.com/mcoot/couplobby/internal/dependencies/random"
	"github.com/mcoot/couplobby/internal/gateway"
	"github.com/mcoot/couplobby/internal/messaging"
	"github.com/mcoot/couplobby/internal/publisher"
	"github.com/mcoot/couplobby/internal/pubsub"
	memorybroker "github.com/mcoot/couplobby/internal/pubsub/memory"
	natsbroker "github.com/mcoot/couplobby/internal/pubsub/nats"
	"github.com/mcoot/couplobby/internal/services/dealer"
	"github.com/mcoot/couplobby/internal/services/room"
	"github.com/mcoot/couplobby/internal/storage"
	"github.com/mcoot/couplobby/internal/storage/memory"
	redisstorage "github.com/mcoot/couplobby/internal/storage/redis"
	"github.com/mcoot/couplobby/internal/wire"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Broker type constants
const (
	BrokerTypeMemory = "memory"
	BrokerTypeNATS   = "nats"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.RoomStore

	// Transport
	Broker pubsub.Broker

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Services
	Dealer      *dealer.Dealer
	Coordinator *room.Coordinator
	Publisher   room.Publisher
	Router      *messaging.Router
	Gateway     *gateway.Handler

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// BrokerType selects the pub/sub backend ("memory" or "nats")
	// If empty, defaults to "memory"
	BrokerType string
	// NATSConfig holds NATS connection settings (required if BrokerType is "nats")
	NATSConfig *natsbroker.Config
	// RetainSnapshots replays the last snapshot per topic to late subscribers
	// (memory broker only)
	RetainSnapshots bool
	// PublishStructured also publishes every snapshot on the versioned topic
	PublishStructured bool
	// PublishErrors reports failed inbound requests on the room error topic
	PublishErrors bool
	// AllowedOrigins lists origins allowed to open the websocket
	AllowedOrigins []string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	idGen := ids.New()

	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	// Create storage based on type
	var store storage.RoomStore
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(idGen, clk)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, idGen, clk)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create broker based on type
	var broker pubsub.Broker
	var natsBroker *natsbroker.Broker
	brokerType := cfg.BrokerType
	if brokerType == "" {
		brokerType = BrokerTypeMemory
	}

	switch brokerType {
	case BrokerTypeMemory:
		broker = memorybroker.New(memorybroker.Config{Retain: cfg.RetainSnapshots}, logger)
	case BrokerTypeNATS:
		if cfg.NATSConfig == nil {
			closeAll()
			return nil, errors.New("NATSConfig required when BrokerType is nats")
		}
		nb, err := natsbroker.Connect(*cfg.NATSConfig, logger)
		if err != nil {
			closeAll()
			return nil, err
		}
		broker = nb
		natsBroker = nb
	default:
		closeAll()
		return nil, errors.New("invalid BrokerType: must be 'memory' or 'nats'")
	}
	closers = append(closers, broker.Close)

	app := newWithDependencies(store, broker, clk, rnd, idGen, cfg, logger)
	app.closers = append(closers, app.closers...)

	// NATS clients send requests over subjects rather than the websocket
	if natsBroker != nil {
		unbind, err := natsBroker.BindInbound(app.Router)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() error {
			unbind()
			return nil
		})
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.RoomStore,
	broker pubsub.Broker,
	clk clock.Clock,
	rnd random.Random,
	idGen ids.Generator,
	cfg Config,
	logger *slog.Logger,
) *App {
	legacy := publisher.New(broker, wire.Legacy{}, publisher.StateTopic, logger)
	var pub room.Publisher = legacy
	if cfg.PublishStructured {
		pub = publisher.Multi{
			legacy,
			publisher.New(broker, wire.Structured{}, publisher.StructuredStateTopic, logger),
		}
	}

	var reporter messaging.ErrorReporter
	if cfg.PublishErrors {
		reporter = publisher.NewErrorPublisher(broker)
	}

	// Create services
	cardDealer := dealer.New(rnd)
	coordinator := room.NewCoordinator(store, cardDealer, idGen, clk, pub, logger)
	router := messaging.NewRouter(coordinator, reporter, logger)
	gw := gateway.NewHandler(broker, router, gateway.OriginPatterns(cfg.AllowedOrigins), logger)

	return &App{
		Storage:     store,
		Broker:      broker,
		Clock:       clk,
		Random:      rnd,
		IDs:         idGen,
		Dealer:      cardDealer,
		Coordinator: coordinator,
		Publisher:   pub,
		Router:      router,
		Gateway:     gw,
	}
}

// Close releases the broker and storage connections, newest first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
