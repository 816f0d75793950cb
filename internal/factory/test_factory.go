package factory

import (
	"time"

	"github.com/mcoot/couplobby/internal/dependencies/mocks"
	memorybroker "github.com/mcoot/couplobby/internal/pubsub/memory"
	"github.com/mcoot/couplobby/internal/storage/memory"
	"github.com/mcoot/couplobby/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Memory broker, exposed so tests can observe topics directly
	MemoryBroker *memorybroker.Broker

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig is NewTestApp with the publishing options of cfg.
// Storage and broker are always in memory.
func NewTestAppWithConfig(cfg Config) *TestApp {
	logger := cfg.Logger
	if logger == nil {
		logger = testutil.NopLogger()
	}

	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs()

	store := memory.New(mockIDs, mockClock)
	broker := memorybroker.New(memorybroker.Config{Retain: cfg.RetainSnapshots}, logger)

	app := newWithDependencies(store, broker, mockClock, mockRandom, mockIDs, cfg, logger)
	app.closers = append(app.closers, broker.Close)

	return &TestApp{
		App:          app,
		MemoryBroker: broker,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		MockIDs:      mockIDs,
	}
}
