package http

import (
	"io"
	"log/slog"
	"sync"
)

// SSE topics.
const (
	TopicReload     = "reload"
	TopicExtraction = "extraction"
)

// Event is one message delivered to SSE subscribers.
type Event struct {
	Topic string
	Data  string
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{} // Topic -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan Event]struct{}),
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// Subscribe registers one channel for every topic. The returned function
// unregisters and closes it.
func (sm *StreamManager) Subscribe(topics ...string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	for _, topic := range topics {
		if _, ok := sm.subscribers[topic]; !ok {
			sm.subscribers[topic] = make(map[chan Event]struct{})
		}
		sm.subscribers[topic][ch] = struct{}{}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			for _, topic := range topics {
				if subs, ok := sm.subscribers[topic]; ok {
					delete(subs, ch)
					if len(subs) == 0 {
						delete(sm.subscribers, topic)
					}
				}
			}
			close(ch)
		})
	}
}

// Subscribers counts the channels listening on topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- Event{Topic: topic, Data: msg}:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping message", "topic", topic)
		}
	}
}
