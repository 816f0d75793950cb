package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/couplobby/internal/dependencies/mocks"
	"github.com/mcoot/couplobby/internal/model"
)

type StorageSuite struct {
	suite.Suite
	ids     *mocks.MockIDs
	clock   *mocks.MockClock
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.ids = mocks.NewMockIDs()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = New(s.ids, s.clock)
	s.ctx = context.Background()
}

func addPlayer(id model.PlayerID, name string) func(room *model.Room) (bool, error) {
	return func(room *model.Room) (bool, error) {
		room.Players = append(room.Players, model.Player{
			ID:        id,
			Name:      name,
			Cards:     []model.CardType{model.CardDuke, model.CardCountess},
			RoomToken: room.Token,
		})
		return true, nil
	}
}

// Create tests

func (s *StorageSuite) TestCreateAndGet() {
	s.ids.Queue("room-1")

	room, err := s.storage.Create(s.ctx, "Test room name")
	s.Require().NoError(err)
	s.Equal(model.RoomToken("room-1"), room.Token)
	s.Equal("Test room name", room.Name)
	s.Empty(room.Players)
	s.Equal(s.clock.Now(), room.CreatedAt)

	retrieved, err := s.storage.Get(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(room.Name, retrieved.Name)
}

func (s *StorageSuite) TestCreateSkipsCollidingToken() {
	s.ids.Queue("room-1", "room-1", "room-2")

	first, err := s.storage.Create(s.ctx, "First")
	s.Require().NoError(err)
	second, err := s.storage.Create(s.ctx, "Second")
	s.Require().NoError(err)

	s.Equal(model.RoomToken("room-1"), first.Token)
	s.Equal(model.RoomToken("room-2"), second.Token)
}

func (s *StorageSuite) TestCreateFailsWhenTokensExhausted() {
	s.ids.Queue("room-1", "room-1", "room-1", "room-1", "room-1", "room-1")
	_, err := s.storage.Create(s.ctx, "First")
	s.Require().NoError(err)

	_, err = s.storage.Create(s.ctx, "Second")
	s.ErrorIs(err, model.ErrTokenExhausted)
}

func (s *StorageSuite) TestGetNotFound() {
	_, err := s.storage.Get(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestExists() {
	s.ids.Queue("room-1")
	_, _ = s.storage.Create(s.ctx, "Room")

	exists, err := s.storage.Exists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.Exists(s.ctx, "nonexistent")
	s.Require().NoError(err)
	s.False(exists)
}

// MutateMembers tests

func (s *StorageSuite) TestMutateMembersCommitsChange() {
	s.ids.Queue("room-1")
	_, _ = s.storage.Create(s.ctx, "Room")
	s.clock.Advance(time.Minute)

	room, err := s.storage.MutateMembers(s.ctx, "room-1", addPlayer("p1", "Player 1"))
	s.Require().NoError(err)
	s.Len(room.Players, 1)
	s.Equal(uint64(1), room.Revision)
	s.Equal(s.clock.Now(), room.UpdatedAt)

	stored, _ := s.storage.Get(s.ctx, "room-1")
	s.Len(stored.Players, 1)
}

func (s *StorageSuite) TestMutateMembersUnchangedKeepsRevision() {
	s.ids.Queue("room-1")
	_, _ = s.storage.Create(s.ctx, "Room")

	room, err := s.storage.MutateMembers(s.ctx, "room-1", func(room *model.Room) (bool, error) {
		return false, nil
	})
	s.Require().NoError(err)
	s.Equal(uint64(0), room.Revision)
}

func (s *StorageSuite) TestMutateMembersErrorDiscardsWorkingCopy() {
	s.ids.Queue("room-1")
	_, _ = s.storage.Create(s.ctx, "Room")
	boom := errors.New("boom")

	_, err := s.storage.MutateMembers(s.ctx, "room-1", func(room *model.Room) (bool, error) {
		room.Players = append(room.Players, model.Player{ID: "half-dealt"})
		return true, boom
	})
	s.ErrorIs(err, boom)

	stored, _ := s.storage.Get(s.ctx, "room-1")
	s.Empty(stored.Players)
	s.Equal(uint64(0), stored.Revision)
}

func (s *StorageSuite) TestMutateMembersCannotRenameRoom() {
	s.ids.Queue("room-1")
	_, _ = s.storage.Create(s.ctx, "Room")

	room, err := s.storage.MutateMembers(s.ctx, "room-1", func(room *model.Room) (bool, error) {
		room.Name = "Renamed"
		return true, nil
	})
	s.Require().NoError(err)
	s.Equal("Room", room.Name)
}

func (s *StorageSuite) TestMutateMembersNotFound() {
	_, err := s.storage.MutateMembers(s.ctx, "nonexistent", addPlayer("p1", "Player 1"))
	s.ErrorIs(err, model.ErrRoomNotFound)

	exists, _ := s.storage.Exists(s.ctx, "nonexistent")
	s.False(exists)
}

func (s *StorageSuite) TestReturnedRoomDoesNotAliasStoredState() {
	s.ids.Queue("room-1")
	_, _ = s.storage.Create(s.ctx, "Room")
	room, _ := s.storage.MutateMembers(s.ctx, "room-1", addPlayer("p1", "Player 1"))

	room.Players[0].Cards[0] = model.CardAssassin
	room.Players = nil

	stored, _ := s.storage.Get(s.ctx, "room-1")
	s.Len(stored.Players, 1)
	s.Equal(model.CardDuke, stored.Players[0].Cards[0])
}

func (s *StorageSuite) TestConcurrentMutationsOnSameRoomAreSerialized() {
	s.ids.Queue("room-1")
	_, _ = s.storage.Create(s.ctx, "Room")

	const joins = 100
	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := model.PlayerID(fmt.Sprintf("p%d", i))
			_, err := s.storage.MutateMembers(s.ctx, "room-1", addPlayer(id, "Player"))
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	room, err := s.storage.Get(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Len(room.Players, joins)
	s.Equal(uint64(joins), room.Revision)

	seen := make(map[model.PlayerID]bool)
	for _, p := range room.Players {
		s.False(seen[p.ID], "duplicate player %s", p.ID)
		seen[p.ID] = true
	}
}

func (s *StorageSuite) TestMutationOnOtherRoomDoesNotBlock() {
	s.ids.Queue("room-a", "room-b")
	_, _ = s.storage.Create(s.ctx, "A")
	_, _ = s.storage.Create(s.ctx, "B")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = s.storage.MutateMembers(s.ctx, "room-a", func(room *model.Room) (bool, error) {
			close(entered)
			<-release
			return false, nil
		})
	}()
	<-entered

	finished := make(chan error, 1)
	go func() {
		_, err := s.storage.MutateMembers(s.ctx, "room-b", addPlayer("p1", "Player 1"))
		finished <- err
	}()

	select {
	case err := <-finished:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("mutation on room-b blocked behind room-a")
	}

	close(release)
	<-done
}
