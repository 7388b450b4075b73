package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

// Event is the envelope carried on the bus and written to sockets.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals data into an Event named name.
func NewEvent(name string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: raw}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Handler receives events for a subscribed topic.
type Handler func(Event)

// Subscription is returned by Subscribe. Unsubscribe may be called more than once.
type Subscription interface {
	Unsubscribe()
}

// Bus is a topic based pub/sub. Handlers run on the publishing goroutine and are
// never called with bus locks held.
type Bus interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Subscribe(topic string, h Handler) Subscription
}

func UserTopic(userID string) string               { return "user:" + userID }
func ChatTopic(appointmentID string) string        { return "chat:" + appointmentID }
func AppointmentTopic(appointmentID string) string { return "appointment:" + appointmentID }

// LocalBus delivers events within this process.
type LocalBus struct {
	mu     sync.RWMutex
	topics map[string]map[uint64]Handler
	nextID uint64
}

func NewLocalBus() *LocalBus {
	return &LocalBus{topics: make(map[string]map[uint64]Handler)}
}

func (b *LocalBus) Publish(_ context.Context, topic string, ev Event) error {
	b.Deliver(topic, ev)
	return nil
}

// Deliver runs every handler of topic and returns how many there were.
func (b *LocalBus) Deliver(topic string, ev Event) int {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.topics[topic]))
	for _, h := range b.topics[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return len(handlers)
}

func (b *LocalBus) Subscribe(topic string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[uint64]Handler)
	}
	b.topics[topic][id] = h
	return &localSubscription{bus: b, topic: topic, id: id}
}

// Subscribers is the number of handlers on topic.
func (b *LocalBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

type localSubscription struct {
	bus   *LocalBus
	topic string
	id    uint64
	once  sync.Once
}

func (s *localSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		delete(s.bus.topics[s.topic], s.id)
		if len(s.bus.topics[s.topic]) == 0 {
			delete(s.bus.topics, s.topic)
		}
	})
}
