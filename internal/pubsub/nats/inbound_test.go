package nats

import (
	"context"
	"testing"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/couplobby/internal/testutil"
)

type blockingDispatcher struct {
	received chan string
	release  chan struct{}
}

func (d *blockingDispatcher) Dispatch(ctx context.Context, destination string, body []byte) error {
	d.received <- destination
	<-d.release
	return nil
}

func TestInboundHandlerDoesNotBlockOnSlowDispatch(t *testing.T) {
	b := &Broker{logger: testutil.NopLogger()}
	d := &blockingDispatcher{received: make(chan string, 2), release: make(chan struct{})}
	defer close(d.release)

	handle := b.inboundHandler(d)

	returned := make(chan struct{})
	go func() {
		handle(&natsio.Msg{Subject: "app.join-game.room-1", Data: []byte("Ana")})
		handle(&natsio.Msg{Subject: "app.join-game.room-2", Data: []byte("Bo")})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("handler blocked on dispatch")
	}

	var destinations []string
	for range 2 {
		select {
		case dest := <-d.received:
			destinations = append(destinations, dest)
		case <-time.After(time.Second):
			require.FailNow(t, "dispatch not started", "got %v", destinations)
		}
	}
	assert.ElementsMatch(t, []string{"/app/join-game/room-1", "/app/join-game/room-2"}, destinations)
}
