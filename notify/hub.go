package notify

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// subscriberBuffer bounds how far a slow client may lag before events are
// dropped for it. No backpressure by contract.
const subscriberBuffer = 16

type envelope struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

// Hub fans events out to websocket subscribers grouped in per-customer
// rooms ("customer_<id>"). It implements Publisher.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan []byte]struct{})}
}

// Join registers a new subscriber channel in the customer's room.
func (h *Hub) Join(customerID string) chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[customerID]
	if room == nil {
		room = make(map[chan []byte]struct{})
		h.rooms[customerID] = room
	}
	room[ch] = struct{}{}
	return ch
}

// Leave removes the subscriber and closes its channel.
func (h *Hub) Leave(customerID string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[customerID]
	if room == nil {
		return
	}
	if _, ok := room[ch]; !ok {
		return
	}
	delete(room, ch)
	if len(room) == 0 {
		delete(h.rooms, customerID)
	}
	close(ch)
}

// Publish sends the event to every subscriber in the customer's room.
// Never blocks: a full subscriber buffer or an empty room drops the event.
func (h *Hub) Publish(customerID string, event Event) {
	msg, err := json.Marshal(envelope{Event: event.Name(), Data: event})
	if err != nil {
		logrus.WithError(err).Warn("notify: marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.rooms[customerID] {
		select {
		case ch <- msg:
		default:
			logrus.WithField("customer", customerID).Debug("notify: subscriber lagging, event dropped")
		}
	}
}

// Handler upgrades the connection and pumps room events to the client until
// it disconnects. The client announces itself with ?customer_id=; no auth is
// enforced at this layer, payloads carry only ids and counters.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		customerID := c.Query("customer_id")
		if customerID == "" {
			_ = c.Close()
			return
		}

		ch := h.Join(customerID)
		defer h.Leave(customerID, ch)
		logrus.WithField("customer", customerID).Debug("notify: client joined")

		done := make(chan struct{})
		go func() {
			// Drain reads so we notice the peer going away.
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}

// Upgrade gates the websocket route: plain HTTP requests get 426.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
