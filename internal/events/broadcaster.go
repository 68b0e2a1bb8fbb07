package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/observability"
)

// Publisher is the side of the broadcaster the lifecycle code depends on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Subscriber is one open update stream. Frames are queued by the broadcaster
// and written to the transport by the stream's own goroutine.
type Subscriber struct {
	id     string
	frames chan []byte
	done   chan struct{}
	once   sync.Once
	owner  *Broadcaster
}

// ID returns the process-local token of the subscriber.
func (s *Subscriber) ID() string {
	return s.id
}

// Frames yields queued frames in publish order.
func (s *Subscriber) Frames() <-chan []byte {
	return s.frames
}

// Done is closed once the subscriber has been unregistered.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Close unregisters the subscriber. Safe to call more than once.
func (s *Subscriber) Close() {
	s.owner.Unsubscribe(s)
}

// offer queues a frame without blocking and reports whether it was accepted.
func (s *Subscriber) offer(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.frames <- frame:
		return true
	default:
		return false
	}
}

// DefaultBufferSize is how many frames a subscriber may lag before it is
// dropped and has to reconnect.
const DefaultBufferSize = 64

// Broadcaster fans lifecycle events out to every registered subscriber.
type Broadcaster struct {
	mu         sync.Mutex
	subs       map[string]*Subscriber
	bufferSize int
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewBroadcaster builds an empty registry. bufferSize bounds the frames a
// slow subscriber may fall behind before it is dropped.
func NewBroadcaster(bufferSize int, logger *zap.Logger, metrics *observability.Metrics) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		subs:       make(map[string]*Subscriber),
		bufferSize: bufferSize,
		logger:     logger,
		metrics:    metrics,
	}
}

// Subscribe registers a new subscriber with the open comment already queued.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{
		id:     uuid.NewString(),
		frames: make(chan []byte, b.bufferSize),
		done:   make(chan struct{}),
		owner:  b,
	}
	sub.frames <- openFrame

	b.mu.Lock()
	b.subs[sub.id] = sub
	count := len(b.subs)
	b.mu.Unlock()

	b.metrics.RecordBroadcast("subscribed", 1)
	b.logger.Debug("stream subscribed", zap.String("subscriber_id", sub.id), zap.Int("subscribers", count))
	return sub
}

// Unsubscribe removes the subscriber from the registry and closes Done.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	_, registered := b.subs[sub.id]
	if registered {
		delete(b.subs, sub.id)
	}
	count := len(b.subs)
	b.mu.Unlock()

	sub.once.Do(func() { close(sub.done) })
	if registered {
		b.metrics.RecordBroadcast("unsubscribed", 1)
		b.logger.Debug("stream unsubscribed", zap.String("subscriber_id", sub.id), zap.Int("subscribers", count))
	}
}

// Publish queues the event on every subscriber. A subscriber that cannot
// accept the frame is unregistered; the rest still receive it. Publish never
// blocks on a subscriber and never fails the caller.
func (b *Broadcaster) Publish(_ context.Context, event Event) {
	frame, err := event.Frame()
	if err != nil {
		b.logger.Warn("drop unencodable event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	delivered, dropped := b.fanOut(frame)
	b.logger.Debug("event broadcast",
		zap.String("type", string(event.Type)),
		zap.Int64("request_id", event.ID),
		zap.Int("delivered", delivered),
		zap.Int("dropped", dropped))
}

// KeepAlive queues a comment frame on every subscriber.
func (b *Broadcaster) KeepAlive() {
	b.fanOut(pingFrame)
}

// Len reports the number of registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close unregisters every subscriber so their streams end.
func (b *Broadcaster) Close() {
	for _, sub := range b.snapshot() {
		b.Unsubscribe(sub)
	}
}

func (b *Broadcaster) fanOut(frame []byte) (delivered, dropped int) {
	for _, sub := range b.snapshot() {
		if sub.offer(frame) {
			delivered++
			continue
		}
		dropped++
		b.logger.Info("dropping subscriber that fell behind",
			zap.String("subscriber_id", sub.id),
			zap.Int("queued", len(sub.frames)),
			zap.Int("buffer_size", b.bufferSize))
		b.Unsubscribe(sub)
	}
	b.metrics.RecordBroadcast("delivered", delivered)
	b.metrics.RecordBroadcast("dropped", dropped)
	return delivered, dropped
}

func (b *Broadcaster) snapshot() []*Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]*Subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	return subs
}
