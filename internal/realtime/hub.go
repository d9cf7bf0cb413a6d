package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Delivery is one emission addressed to a set of rooms
type Delivery struct {
	Rooms []string `json:"rooms"`
	Frame Frame    `json:"frame"`
}

// Hub tracks connections and their room membership on this instance
type Hub struct {
	logger     *zap.Logger
	backplane  Backplane
	deliveries chan Delivery

	mu           sync.RWMutex
	clients      map[*Client]struct{}
	rooms        map[string]map[*Client]struct{}
	backplaneErr error
}

// ErrBackplaneClosed is reported when the subscription ends before shutdown
var ErrBackplaneClosed = errors.New("realtime backplane subscription ended")

// NewHub creates a hub. backplane may be nil for single-instance delivery.
func NewHub(logger *zap.Logger, backplane Backplane) *Hub {
	return &Hub{
		logger:     logger,
		backplane:  backplane,
		deliveries: make(chan Delivery, 256),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a connection from every room and closes its send queue
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for room := range c.rooms {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	c.rooms = nil
	close(c.send)
}

// Join adds a registered connection to room
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// ClientCount returns the number of connections on this instance
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Err reports a lost backplane subscription. Emissions published after that
// never reach this instance's connections.
func (h *Hub) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.backplaneErr
}

// RoomSize returns the number of local connections in room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit sends frame to every connection in any of rooms, across instances
// when a backplane is configured. A connection in several rooms gets one copy.
func (h *Hub) Emit(ctx context.Context, frame Frame, rooms ...string) error {
	d := Delivery{Rooms: rooms, Frame: frame}
	if h.backplane != nil {
		return h.backplane.Publish(ctx, d)
	}

	select {
	case h.deliveries <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run delivers emissions to local connections until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	if h.backplane != nil {
		go func() {
			err := h.backplane.Subscribe(ctx, func(d Delivery) {
				select {
				case h.deliveries <- d:
				case <-ctx.Done():
				}
			})
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = ErrBackplaneClosed
			} else {
				err = fmt.Errorf("%w: %w", ErrBackplaneClosed, err)
			}
			h.logger.Error("realtime backplane subscription ended", zap.Error(err))

			h.mu.Lock()
			h.backplaneErr = err
			h.mu.Unlock()
		}()
	}

	for {
		select {
		case d := <-h.deliveries:
			h.deliver(d)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) deliver(d Delivery) {
	payload, err := json.Marshal(d.Frame)
	if err != nil {
		h.logger.Error("failed to marshal frame", zap.String("event", d.Frame.Event), zap.Error(err))
		return
	}

	var slow []*Client

	// send queues are only closed under the write lock, so enqueueing
	// under the read lock cannot hit a closed channel
	h.mu.RLock()
	seen := make(map[*Client]struct{})
	for _, room := range d.Rooms {
		for c := range h.rooms[room] {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			if !c.enqueue(payload) {
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow realtime client",
			zap.String("socket_id", c.ID),
			zap.String("user_id", c.UserID),
		)
		c.Close()
	}
}
