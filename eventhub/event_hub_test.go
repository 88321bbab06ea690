package eventhub

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AsynkronIT/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tplog "github.com/TopiaNetwork/flowlink/log"
	tplogcmm "github.com/TopiaNetwork/flowlink/log/common"
	"github.com/TopiaNetwork/flowlink/transport"
)

func newStartedHub(t *testing.T, name string) EventHub {
	sysActor := actor.NewActorSystem()
	testLog, _ := tplog.CreateMainLogger(tplogcmm.InfoLevel, tplog.JSONFormat, tplog.StdErrOutput, "")

	evHub := NewEventHub(tplogcmm.InfoLevel, testLog, name)
	require.NoError(t, evHub.Start(sysActor))
	t.Cleanup(evHub.Stop)

	return evHub
}

func TestEventHubDispatchInArrivalOrder(t *testing.T) {
	evHub := newStartedHub(t, "event-actor-order")

	var mu sync.Mutex
	var seen []int64
	done := make(chan struct{})
	_, err := evHub.Observe(context.Background(), EventName_SessionRequest, func(ctx context.Context, data interface{}) error {
		ev, ok := data.(*transport.Event)
		if !ok {
			return fmt.Errorf("Invalid type:%T", data)
		}
		assert.NotEmpty(t, ActorID(ctx))

		mu.Lock()
		seen = append(seen, ev.Request.ID)
		n := len(seen)
		mu.Unlock()
		if n == 20 {
			close(done)
		}
		return nil
	})
	require.NoError(t, err)

	for i := int64(0); i < 20; i++ {
		ev := &transport.Event{Kind: transport.EventKind_Request, Request: &transport.Request{ID: i}}
		require.NoError(t, evHub.Trig(context.Background(), EventNameOf(ev.Kind), ev))
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events not dispatched")
	}

	for i, id := range seen {
		assert.Equal(t, int64(i), id)
	}
}

func TestEventHubObserverOrderAndUnObserve(t *testing.T) {
	evHub := newStartedHub(t, "event-actor-observers")

	calls := make(chan string, 8)
	firstID, err := evHub.Observe(context.Background(), EventName_SessionDeleted, func(ctx context.Context, data interface{}) error {
		calls <- "first"
		return nil
	})
	require.NoError(t, err)
	_, err = evHub.Observe(context.Background(), EventName_SessionDeleted, func(ctx context.Context, data interface{}) error {
		calls <- "second"
		return nil
	})
	require.NoError(t, err)

	ev := &transport.Event{Kind: transport.EventKind_SessionDeleted, Topic: "t"}
	require.NoError(t, evHub.Trig(context.Background(), EventName_SessionDeleted, ev))
	assert.Equal(t, "first", <-calls)
	assert.Equal(t, "second", <-calls)

	require.NoError(t, evHub.UnObserve(context.Background(), firstID, EventName_SessionDeleted))
	require.NoError(t, evHub.Trig(context.Background(), EventName_SessionDeleted, ev))
	assert.Equal(t, "second", <-calls)
}

func TestEventHubRejectsUnknownEvent(t *testing.T) {
	evHub := newStartedHub(t, "event-actor-unknown")

	_, err := evHub.Observe(context.Background(), "BlockAdded", func(ctx context.Context, data interface{}) error { return nil })
	assert.Error(t, err)

	notStarted := NewEventHub(tplogcmm.InfoLevel, tplog.CreateNopLogger(), "never")
	assert.ErrorIs(t, notStarted.Trig(context.Background(), EventName_SessionProposal, &transport.Event{}), ErrNotStarted)
}
