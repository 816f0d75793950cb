package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/couplobby/internal/dependencies/ids"
	"github.com/mcoot/couplobby/internal/dependencies/mocks"
	"github.com/mcoot/couplobby/internal/dependencies/random"
	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/services/dealer"
	"github.com/mcoot/couplobby/internal/storage"
	"github.com/mcoot/couplobby/internal/storage/memory"
	redisstorage "github.com/mcoot/couplobby/internal/storage/redis"
	"github.com/mcoot/couplobby/internal/testutil"
	"github.com/mcoot/couplobby/internal/wire"
)

// recordingPublisher captures every snapshot handed to it
type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []model.RoomSnapshot
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, snapshot model.RoomSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
	return p.err
}

func (p *recordingPublisher) published() []model.RoomSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]model.RoomSnapshot, len(p.snapshots))
	copy(result, p.snapshots)
	return result
}

type CoordinatorSuite struct {
	suite.Suite
	storage     *memory.Storage
	ids         *mocks.MockIDs
	random      *mocks.MockRandom
	clock       *mocks.MockClock
	publisher   *recordingPublisher
	coordinator *Coordinator
	ctx         context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ids = mocks.NewMockIDs()
	s.random = mocks.NewMockRandom()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(s.ids, s.clock)
	s.publisher = &recordingPublisher{}
	s.coordinator = NewCoordinator(s.storage, dealer.New(s.random), s.ids, s.clock, s.publisher, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *CoordinatorSuite) createRoom(name string) model.RoomToken {
	snapshot, err := s.coordinator.CreateRoom(s.ctx, name)
	s.Require().NoError(err)
	return snapshot.Token
}

// CreateRoom tests

func (s *CoordinatorSuite) TestCreateRoom() {
	s.ids.Queue("tok-1")

	snapshot, err := s.coordinator.CreateRoom(s.ctx, "Test room name")
	s.Require().NoError(err)
	s.Equal(model.RoomToken("tok-1"), snapshot.Token)
	s.Equal("Test room name", snapshot.Name)
	s.NotNil(snapshot.Players)
	s.Empty(snapshot.Players)

	payload, err := wire.Legacy{}.Encode(snapshot)
	s.Require().NoError(err)
	s.Contains(string(payload), `"players":"[]"`)
}

func (s *CoordinatorSuite) TestCreateRoomIssuesFreshTokens() {
	seen := make(map[model.RoomToken]bool)
	for i := 0; i < 20; i++ {
		token := s.createRoom(fmt.Sprintf("Room %d", i))
		s.NotEmpty(token)
		s.False(seen[token])
		seen[token] = true
	}
}

func (s *CoordinatorSuite) TestCreateRoomTrimsName() {
	snapshot, err := s.coordinator.CreateRoom(s.ctx, "  Lobby  ")
	s.Require().NoError(err)
	s.Equal("Lobby", snapshot.Name)
}

func (s *CoordinatorSuite) TestCreateRoomRejectsBlankName() {
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := s.coordinator.CreateRoom(s.ctx, name)
		s.ErrorIs(err, model.ErrInvalidRequest)
	}
}

func (s *CoordinatorSuite) TestCreateRoomDoesNotPublish() {
	s.createRoom("Room")
	s.Empty(s.publisher.published())
}

// JoinRoom tests

func (s *CoordinatorSuite) TestJoinRoomDealsTwoCards() {
	token := s.createRoom("Room")
	s.ids.Queue("player-1")
	s.random.QueueIntn(3, 0)

	snapshot, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)
	s.Require().Len(snapshot.Players, 1)

	player := snapshot.Players[0]
	s.Equal(model.PlayerID("player-1"), player.ID)
	s.Equal("Player 1", player.Name)
	s.Equal([]model.CardType{model.CardCaptain, model.CardDuke}, player.Cards)
}

func (s *CoordinatorSuite) TestJoinRoomKeepsDuplicateCards() {
	token := s.createRoom("Room")
	s.random.QueueIntn(1, 1)

	snapshot, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)
	s.Equal([]model.CardType{model.CardAssassin, model.CardAssassin}, snapshot.Players[0].Cards)
}

func (s *CoordinatorSuite) TestJoinRoomEncodesSinglePlayerRecord() {
	token := s.createRoom("Room")

	snapshot, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)

	payload, err := wire.Legacy{}.Encode(snapshot)
	s.Require().NoError(err)
	decoded, err := wire.Legacy{}.Decode(payload)
	s.Require().NoError(err)

	s.Require().Len(decoded.Players, 1)
	s.Equal("Player 1", decoded.Players[0].Name)
	s.Len(decoded.Players[0].Cards, DealBatchSize)
	for _, card := range decoded.Players[0].Cards {
		s.True(card.Valid())
	}
}

func (s *CoordinatorSuite) TestJoinRoomSetsBackReference() {
	token := s.createRoom("Room")
	_, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)

	room, err := s.storage.Get(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(token, room.Players[0].RoomToken)
	s.Equal(s.clock.Now(), room.Players[0].JoinedAt)
}

func (s *CoordinatorSuite) TestJoinRoomSameNameCreatesDistinctPlayers() {
	token := s.createRoom("Room")

	_, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)
	snapshot, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)

	s.Require().Len(snapshot.Players, 2)
	s.NotEqual(snapshot.Players[0].ID, snapshot.Players[1].ID)
}

func (s *CoordinatorSuite) TestJoinRoomKeepsPlayerNameAsSent() {
	token := s.createRoom("Room")

	snapshot, err := s.coordinator.JoinRoom(s.ctx, token, " Player 1 ")
	s.Require().NoError(err)
	s.Require().Len(snapshot.Players, 1)
	s.Equal(" Player 1 ", snapshot.Players[0].Name)

	room, err := s.storage.Get(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(" Player 1 ", room.Players[0].Name)
}

func (s *CoordinatorSuite) TestJoinRoomUnknownToken() {
	_, err := s.coordinator.JoinRoom(s.ctx, "missing", "Player 1")
	s.ErrorIs(err, model.ErrRoomNotFound)

	exists, err := s.storage.Exists(s.ctx, "missing")
	s.Require().NoError(err)
	s.False(exists)
	s.Empty(s.publisher.published())
}

func (s *CoordinatorSuite) TestJoinRoomRejectsBlankName() {
	token := s.createRoom("Room")

	_, err := s.coordinator.JoinRoom(s.ctx, token, "  ")
	s.ErrorIs(err, model.ErrInvalidRequest)

	snapshot, _ := s.coordinator.Snapshot(s.ctx, token)
	s.Empty(snapshot.Players)
	s.Empty(s.publisher.published())
}

func (s *CoordinatorSuite) TestJoinRoomPublishesSnapshot() {
	token := s.createRoom("Room")

	snapshot, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)

	published := s.publisher.published()
	s.Require().Len(published, 1)
	s.Equal(snapshot, published[0])
	s.Equal(uint64(1), published[0].Revision)
}

func (s *CoordinatorSuite) TestJoinRoomSucceedsWhenPublishFails() {
	token := s.createRoom("Room")
	s.publisher.err = errors.New("broker down")

	snapshot, err := s.coordinator.JoinRoom(s.ctx, token, "Player 1")
	s.Require().NoError(err)
	s.Len(snapshot.Players, 1)
}

func (s *CoordinatorSuite) TestConcurrentJoinsOnOneRoom() {
	token := s.createRoom("Room")
	coordinator := NewCoordinator(s.storage, dealer.New(random.New()), ids.New(), s.clock, s.publisher, testutil.NopLogger())

	const joins = 50
	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := coordinator.JoinRoom(s.ctx, token, fmt.Sprintf("Player %d", i))
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	assertConsistentMembership(s.T(), s.storage, token, joins)
	s.Len(s.publisher.published(), joins)
}

// RequestState tests

func (s *CoordinatorSuite) TestRequestStatePublishesWithoutMutation() {
	token := s.createRoom("Room")
	_, _ = s.coordinator.JoinRoom(s.ctx, token, "Player 1")

	first, err := s.coordinator.RequestState(s.ctx, token)
	s.Require().NoError(err)
	second, err := s.coordinator.RequestState(s.ctx, token)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(uint64(1), second.Revision)
	s.Len(s.publisher.published(), 3)
}

func (s *CoordinatorSuite) TestRequestStateUnknownToken() {
	_, err := s.coordinator.RequestState(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Empty(s.publisher.published())
}

func (s *CoordinatorSuite) TestSnapshotDoesNotPublish() {
	token := s.createRoom("Room")

	snapshot, err := s.coordinator.Snapshot(s.ctx, token)
	s.Require().NoError(err)
	s.Equal("Room", snapshot.Name)
	s.Empty(s.publisher.published())
}

// The same concurrency property must hold when rooms live in Redis.
func TestConcurrentJoinsOnRedisStore(t *testing.T) {
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer client.Close()

	cfg := redisstorage.DefaultConfig()
	cfg.MaxMutateRetries = 1000
	store := redisstorage.NewWithClient(client, cfg, ids.New(), mocks.NewMockClock(time.Now()))

	coordinator := NewCoordinator(store, dealer.New(random.New()), ids.New(), mocks.NewMockClock(time.Now()), &recordingPublisher{}, testutil.NopLogger())
	ctx := context.Background()

	created, err := coordinator.CreateRoom(ctx, "Room")
	require.NoError(t, err)

	const joins = 10
	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := coordinator.JoinRoom(ctx, created.Token, fmt.Sprintf("Player %d", i)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	assertConsistentMembership(t, store, created.Token, joins)
}

func assertConsistentMembership(t *testing.T, store storage.RoomStore, token model.RoomToken, joins int) {
	t.Helper()
	room, err := store.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Len(t, room.Players, joins)
	assert.Equal(t, uint64(joins), room.Revision)

	seen := make(map[model.PlayerID]bool)
	for _, p := range room.Players {
		assert.False(t, seen[p.ID], "duplicate player %s", p.ID)
		seen[p.ID] = true
		assert.Len(t, p.Cards, DealBatchSize)
	}
}
