package eventbus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublish_DeliversToSubscribersOfType(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan DomainEvent, 1)
	b.Subscribe(EventQueryChanged, func(e DomainEvent) { got <- e })
	b.Subscribe(EventConfigSaved, func(DomainEvent) { t.Error("wrong event type delivered") })

	b.Publish(QueryChangedEvent{Previous: "androiddev", Current: "pics"})

	select {
	case e := <-got:
		require.Equal(t, QueryChangedEvent{Previous: "androiddev", Current: "pics"}, e)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribe_RemovesOnlyThatHandler(t *testing.T) {
	b := New()
	defer b.Close()

	var first, second atomic.Int32
	unsubscribe := b.Subscribe(EventConfigSaved, func(DomainEvent) { first.Add(1) })
	b.Subscribe(EventConfigSaved, func(DomainEvent) { second.Add(1) })

	unsubscribe()
	unsubscribe()
	b.Publish(ConfigSavedEvent{})

	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Zero(t, first.Load())
}

func TestHandlerPanic_DoesNotStopBus(t *testing.T) {
	b := New()
	defer b.Close()

	var delivered atomic.Int32
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, func(DomainEvent) { delivered.Add(1) })

	b.Publish(ErrorEvent{Message: "first"})
	b.Publish(ErrorEvent{Message: "second"})

	require.Eventually(t, func() bool { return delivered.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestClose_WaitsForHandlersAndIgnoresLaterPublishes(t *testing.T) {
	b := New()

	var done atomic.Bool
	started := make(chan struct{})
	b.Subscribe(EventConfigChanged, func(DomainEvent) {
		close(started)
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
	})
	b.Publish(ConfigChangedEvent{LastCommunity: "golang"})
	<-started

	b.Close()
	require.True(t, done.Load())

	b.Publish(ConfigChangedEvent{LastCommunity: "late"})
	b.Close()
}
