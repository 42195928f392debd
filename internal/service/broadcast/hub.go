package broadcast

import (
	"context"
	"sync"

	"ecobot/internal/logger"
	"ecobot/internal/model"
)

// SubscriberBuffer is the number of records queued per subscriber before
// further records are dropped for it.
const SubscriberBuffer = 16

// Subscription receives records published after it was registered.
type Subscription struct {
	C     <-chan model.DetectionRecord
	ch    chan model.DetectionRecord
	added chan struct{}
}

// Hub fans newly stored detection records out to open global map views.
type Hub struct {
	clients    map[*Subscription]bool
	broadcast  chan model.DetectionRecord
	register   chan *Subscription
	unregister chan *Subscription
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Subscription]bool),
		broadcast:  make(chan model.DetectionRecord),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled. All
// remaining subscriptions are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mutex.Lock()
		for sub := range h.clients {
			delete(h.clients, sub)
			close(sub.ch)
		}
		h.mutex.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			h.mutex.Lock()
			h.clients[sub] = true
			n := len(h.clients)
			h.mutex.Unlock()
			close(sub.added)
			h.logger.Info("Map view subscribed. Total: %d", n)

		case sub := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[sub]; ok {
				delete(h.clients, sub)
				close(sub.ch)
			}
			n := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Map view unsubscribed. Total: %d", n)

		case rec := <-h.broadcast:
			h.mutex.RLock()
			for sub := range h.clients {
				select {
				case sub.ch <- rec:
				default:
					h.logger.Warning("Map view is not keeping up, dropping record at %s", rec.Coordinates)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Subscribe registers a new subscription and returns once the hub counts
// it. It returns nil once the hub has stopped.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan model.DetectionRecord, SubscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, added: make(chan struct{})}
	select {
	case h.register <- sub:
		<-sub.added
		return sub
	case <-h.done:
		return nil
	}
}

// Unsubscribe removes the subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Publish hands rec to every subscriber.
func (h *Hub) Publish(ctx context.Context, rec model.DetectionRecord) error {
	select {
	case h.broadcast <- rec:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Count returns the number of subscriptions.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
