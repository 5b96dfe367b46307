package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"options-dashboard/pkg/logger"
)

// Event is one SSE frame body.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Broker fans out server-sent events to every connected client.
type Broker struct {
	log        *logger.Logger
	clients    map[chan []byte]struct{}
	register   chan chan []byte
	unregister chan chan []byte
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

func NewBroker(log *logger.Logger) *Broker {
	return &Broker{
		log:        log,
		clients:    make(map[chan []byte]struct{}),
		register:   make(chan chan []byte),
		unregister: make(chan chan []byte),
		broadcast:  make(chan []byte, 1000),
		done:       make(chan struct{}),
	}
}

// Run dispatches until ctx is cancelled, then disconnects every client.
func (b *Broker) Run(ctx context.Context) {
	defer b.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = struct{}{}
			total := len(b.clients)
			b.mu.Unlock()
			b.log.Debug("SSE client connected", logger.IntField("total", total))

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client)
			}
			total := len(b.clients)
			b.mu.Unlock()
			b.log.Debug("SSE client disconnected", logger.IntField("total", total))

		case msg := <-b.broadcast:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client <- msg:
				default:
					// slow client, skip
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *Broker) stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.mu.Lock()
		for client := range b.clients {
			delete(b.clients, client)
			close(client)
		}
		b.mu.Unlock()
	})
}

// ClientCount is the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP streams events to one client until it disconnects or the broker stops.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientChan := make(chan []byte, 10)
	select {
	case b.register <- clientChan:
	case <-b.done:
		return
	case <-r.Context().Done():
		return
	}

	for {
		select {
		case <-r.Context().Done():
			select {
			case b.unregister <- clientChan:
			case <-b.done:
			}
			return
		case msg, ok := <-clientChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Broadcast queues payload for every client. It never blocks; when the queue
// is full the event is dropped.
func (b *Broker) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		b.log.Error("Failed to marshal broadcast event", logger.StringField("event", event), logger.ErrorField(err))
		return
	}

	select {
	case b.broadcast <- data:
	default:
		b.log.Warn("Broadcast queue full, dropping event", logger.StringField("event", event))
	}
}
