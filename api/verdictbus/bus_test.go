package verdictbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	id       string
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	received []Verdict
	sendErr  error
	closed   bool
}

func newFakeSubscriber(id string) *fakeSubscriber {
	ctx, cancel := context.WithCancel(context.Background())
	return &fakeSubscriber{id: id, ctx: ctx, cancel: cancel}
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Send(v Verdict) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, v)
	return nil
}

func (f *fakeSubscriber) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cancel()
	return nil
}

func (f *fakeSubscriber) Context() context.Context { return f.ctx }

func (f *fakeSubscriber) snapshot() []Verdict {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Verdict, len(f.received))
	copy(out, f.received)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBus_PublishDeliversToSubscriber(t *testing.T) {
	bus := New(testLogger())
	sub := newFakeSubscriber("sub-1")

	bus.Subscribe("ns", "app", sub)
	bus.Publish(Verdict{Namespace: "ns", Name: "app", Status: "Ok"})

	received := sub.snapshot()
	require.Len(t, received, 1)
	assert.Equal(t, "Ok", received[0].Status)
	assert.Equal(t, int64(1), received[0].Sequence)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestBus_PublishOnlyReachesMatchingWatch(t *testing.T) {
	bus := New(testLogger())
	subApp := newFakeSubscriber("sub-app")
	subOther := newFakeSubscriber("sub-other")

	bus.Subscribe("ns", "app", subApp)
	bus.Subscribe("ns", "other", subOther)

	bus.Publish(Verdict{Namespace: "ns", Name: "app", Status: "Ok"})

	assert.Len(t, subApp.snapshot(), 1)
	assert.Len(t, subOther.snapshot(), 0)
}

func TestBus_UnsubscribeClosesAndStopsDelivery(t *testing.T) {
	bus := New(testLogger())
	sub := newFakeSubscriber("sub-1")
	bus.Subscribe("ns", "app", sub)

	bus.Unsubscribe("ns", "app", sub)
	assert.True(t, sub.closed)

	bus.Publish(Verdict{Namespace: "ns", Name: "app", Status: "Ok"})
	assert.Len(t, sub.snapshot(), 0)
}

func TestBus_PublishDropsSubscriberOnSendError(t *testing.T) {
	bus := New(testLogger())
	sub := newFakeSubscriber("sub-1")
	sub.sendErr = errors.New("connection reset")
	bus.Subscribe("ns", "app", sub)

	bus.Publish(Verdict{Namespace: "ns", Name: "app", Status: "Invalid"})

	time.Sleep(10 * time.Millisecond)
	assert.True(t, sub.closed)
}

func TestBus_PublishDropsSubscriberWithCancelledContext(t *testing.T) {
	bus := New(testLogger())
	sub := newFakeSubscriber("sub-1")
	bus.Subscribe("ns", "app", sub)
	sub.cancel()

	bus.Publish(Verdict{Namespace: "ns", Name: "app", Status: "Ok"})

	assert.Len(t, sub.snapshot(), 0)
}

func TestBus_SequenceIncrementsAcrossPublishes(t *testing.T) {
	bus := New(testLogger())
	sub := newFakeSubscriber("sub-1")
	bus.Subscribe("ns", "app", sub)

	bus.Publish(Verdict{Namespace: "ns", Name: "app", Status: "Ok"})
	bus.Publish(Verdict{Namespace: "ns", Name: "app", Status: "Invalid"})

	received := sub.snapshot()
	require.Len(t, received, 2)
	assert.Equal(t, int64(1), received[0].Sequence)
	assert.Equal(t, int64(2), received[1].Sequence)
}
