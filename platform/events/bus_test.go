package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"recruit_portal_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncRunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var order []int
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { order = append(order, 1); return nil }))
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { order = append(order, 2); return nil }))
	bus.Subscribe("b", HandlerFunc(func(context.Context, Event) error { order = append(order, 99); return nil }))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "a"}); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected handler order %v", order)
	}
}

func TestPublishSyncStopsAtFirstError(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	boom := errors.New("boom")
	var calls int
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { calls++; return boom }))
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { calls++; return nil }))

	err := bus.PublishSync(context.Background(), testEvent{name: "a"})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected first error and one call, got %v after %d calls", err, calls)
	}
}

func TestPublishRecoversFromPanics(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var handled atomic.Int32
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { panic("bad handler") }))
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { handled.Add(1); return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{name: "a"})
	cancel()
	bus.Wait()

	if handled.Load() != 1 {
		t.Fatalf("expected healthy handler to run once, ran %d times", handled.Load())
	}
}
