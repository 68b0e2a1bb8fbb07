package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/repair-service/internal/observability"
)

func int64Ptr(v int64) *int64 { return &v }

func nextFrame(t *testing.T, sub *Subscriber) string {
	t.Helper()
	select {
	case frame := <-sub.Frames():
		return string(frame)
	case <-time.After(time.Second):
		t.Fatalf("subscriber %s received no frame", sub.ID())
		return ""
	}
}

func expectNoFrame(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case frame := <-sub.Frames():
		t.Fatalf("unexpected frame %q", frame)
	default:
	}
}

func decodeFrame(t *testing.T, frame string) Event {
	t.Helper()
	if !strings.HasPrefix(frame, "data: ") || !strings.HasSuffix(frame, "\n\n") {
		t.Fatalf("malformed frame %q", frame)
	}
	var ev Event
	if err := json.Unmarshal([]byte(strings.TrimSuffix(strings.TrimPrefix(frame, "data: "), "\n\n")), &ev); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return ev
}

func TestSubscribeQueuesOpenComment(t *testing.T) {
	b := NewBroadcaster(4, zap.NewNop(), nil)
	sub := b.Subscribe()
	if got := nextFrame(t, sub); got != ":ok\n\n" {
		t.Fatalf("first frame = %q", got)
	}
	if b.Len() != 1 {
		t.Fatalf("len = %d", b.Len())
	}
	if sub.ID() == "" {
		t.Fatalf("subscriber id must be generated")
	}
}

func TestPublishFansOutToEverySubscriber(t *testing.T) {
	metrics := observability.NewMetrics()
	b := NewBroadcaster(4, zap.NewNop(), metrics)
	const n = 5
	subs := make([]*Subscriber, n)
	for i := range subs {
		subs[i] = b.Subscribe()
		nextFrame(t, subs[i])
	}

	b.Publish(context.Background(), Event{Type: EventRequestStatus, ID: 1, UID: int64Ptr(3), Status: "completed"})

	for _, sub := range subs {
		ev := decodeFrame(t, nextFrame(t, sub))
		if ev.Type != EventRequestStatus || ev.ID != 1 || ev.Status != "completed" || ev.UID == nil || *ev.UID != 3 {
			t.Fatalf("unexpected event %+v", ev)
		}
		expectNoFrame(t, sub)
	}
	if got := metrics.Snapshot().Broadcast["delivered"]; got != n {
		t.Fatalf("delivered = %d, want %d", got, n)
	}
}

func TestCreatedFrameShape(t *testing.T) {
	serviceType := "repair"
	frame, err := Event{Type: EventRequestCreated, ID: 9, UID: int64Ptr(1), ServiceType: &serviceType, Status: "in progress"}.Frame()
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	want := "data: {\"type\":\"created\",\"id\":9,\"uid\":1,\"serviceType\":\"repair\",\"status\":\"in progress\"}\n\n"
	if string(frame) != want {
		t.Fatalf("frame = %q\nwant    %q", frame, want)
	}

	frame, err = Event{Type: EventRequestStatus, ID: 9, Status: "completed"}.Frame()
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if string(frame) != "data: {\"type\":\"status\",\"id\":9,\"uid\":null,\"status\":\"completed\"}\n\n" {
		t.Fatalf("ownerless status frame = %q", frame)
	}
}

func TestStalledSubscriberIsDroppedWithoutAffectingOthers(t *testing.T) {
	b := NewBroadcaster(1, zap.NewNop(), nil)
	stalled := b.Subscribe() // buffer already full with the open comment
	healthy := b.Subscribe()
	nextFrame(t, healthy)

	b.Publish(context.Background(), Event{Type: EventRequestCreated, ID: 2, Status: "in progress"})

	if ev := decodeFrame(t, nextFrame(t, healthy)); ev.ID != 2 {
		t.Fatalf("healthy subscriber got %+v", ev)
	}
	select {
	case <-stalled.Done():
	default:
		t.Fatalf("stalled subscriber should be unregistered")
	}
	if b.Len() != 1 {
		t.Fatalf("len = %d, want 1", b.Len())
	}
}

func TestDroppedSubscriberIsLoggedWithBufferSize(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	b := NewBroadcaster(4, zap.New(core), nil)
	lagging := b.Subscribe()

	for i := int64(1); i <= 6; i++ {
		b.Publish(context.Background(), Event{Type: EventRequestStatus, ID: i, Status: "completed"})
	}

	select {
	case <-lagging.Done():
	default:
		t.Fatalf("lagging subscriber should be dropped once its buffer is full")
	}
	entries := logs.FilterMessage("dropping subscriber that fell behind").All()
	if len(entries) != 1 {
		t.Fatalf("drop log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["buffer_size"] != int64(4) || fields["queued"] != int64(4) {
		t.Fatalf("drop log fields = %v", fields)
	}
}

func TestDefaultBufferAbsorbsBurst(t *testing.T) {
	b := NewBroadcaster(0, zap.NewNop(), nil)
	sub := b.Subscribe()
	for i := int64(1); i < DefaultBufferSize; i++ {
		b.Publish(context.Background(), Event{Type: EventRequestCreated, ID: i, Status: "in progress"})
	}
	if b.Len() != 1 {
		t.Fatalf("subscriber dropped within default buffer")
	}
	if got := nextFrame(t, sub); got != ":ok\n\n" {
		t.Fatalf("first frame = %q", got)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroadcaster(4, zap.NewNop(), nil)
	sub := b.Subscribe()
	sub.Close()
	sub.Close()
	b.Unsubscribe(sub)
	b.Unsubscribe(nil)
	if b.Len() != 0 {
		t.Fatalf("len = %d", b.Len())
	}
	<-sub.Done()

	b.Publish(context.Background(), Event{Type: EventRequestCreated, ID: 1})
	nextFrame(t, sub) // open comment only
	expectNoFrame(t, sub)
}

func TestPublishToleratesConcurrentUnsubscribe(t *testing.T) {
	b := NewBroadcaster(64, zap.NewNop(), nil)
	subs := make([]*Subscriber, 32)
	for i := range subs {
		subs[i] = b.Subscribe()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			b.Publish(context.Background(), Event{Type: EventRequestStatus, ID: int64(i), Status: "completed"})
		}
	}()
	go func() {
		defer wg.Done()
		for _, sub := range subs {
			sub.Close()
		}
	}()
	wg.Wait()

	if b.Len() != 0 {
		t.Fatalf("len = %d", b.Len())
	}
}

func TestKeepAliveAndClose(t *testing.T) {
	b := NewBroadcaster(4, zap.NewNop(), nil)
	sub := b.Subscribe()
	nextFrame(t, sub)

	b.KeepAlive()
	if got := nextFrame(t, sub); got != ":ping\n\n" {
		t.Fatalf("keepalive frame = %q", got)
	}

	b.Close()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatalf("close should end every subscriber")
	}
	if b.Len() != 0 {
		t.Fatalf("len = %d", b.Len())
	}
}
