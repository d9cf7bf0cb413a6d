package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trellolite/internal/metrics"
	"trellolite/internal/model"
)

// Gateway applies the chat event protocol to authenticated connections
type Gateway struct {
	hub    *Hub
	logger *zap.Logger
	now    func() time.Time
}

// NewGateway creates a gateway on top of hub
func NewGateway(hub *Hub, logger *zap.Logger) *Gateway {
	return &Gateway{
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

// Serve runs one connection for userID until it disconnects
func (g *Gateway) Serve(ctx context.Context, conn *websocket.Conn, userID string) {
	c := NewClient(conn, userID, g.logger)

	g.hub.Register(c)
	g.hub.Join(c, PersonalRoom(userID))
	metrics.RealtimeConnections.Inc()
	c.logger.Info("[WebSocket] user connected", zap.Int("total_clients", g.hub.ClientCount()))

	if frame, err := NewFrame(EventConnected, ConnectedEvent{SocketID: c.ID, UserID: userID}); err == nil {
		payload, _ := json.Marshal(frame)
		c.enqueue(payload)
	}

	// hijacked connections outlive http.Server.Shutdown; close them ourselves
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	go c.writePump()
	c.readPump(func(f Frame) { g.handle(ctx, c, f) })

	g.hub.Unregister(c)
	metrics.RealtimeConnections.Dec()
	c.logger.Info("[WebSocket] user disconnected", zap.Int("total_clients", g.hub.ClientCount()))
}

// Err reports whether cross-instance delivery is broken
func (g *Gateway) Err() error {
	return g.hub.Err()
}

func (g *Gateway) handle(ctx context.Context, c *Client, f Frame) {
	switch f.Event {
	case EventJoinRoom:
		metrics.RecordRealtimeEvent(f.Event)
		g.joinRoom(c, f.Data)
	case EventPrivateMessage:
		metrics.RecordRealtimeEvent(f.Event)
		g.privateMessage(ctx, c, f.Data)
	case EventTyping, EventStopTyping:
		metrics.RecordRealtimeEvent(f.Event)
		g.typing(ctx, c, f.Event, f.Data)
	default:
		// event names come from clients; keep the label set fixed
		metrics.RecordRealtimeEvent(metrics.UnknownEvent)
		c.logger.Debug("[WebSocket] unknown event", zap.String("event", f.Event))
	}
}

func (g *Gateway) joinRoom(c *Client, data json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.UserID == "" || req.OtherUserID == "" {
		c.logger.Warn("[WebSocket] joinRoom called with missing userId/otherUserId")
		return
	}

	room := LegacyRoom(req.UserID, req.OtherUserID)
	g.hub.Join(c, room)
	c.logger.Info("[WebSocket] joined legacy room", zap.String("room", room))
}

func (g *Gateway) privateMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var req PrivateMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.logger.Warn("[WebSocket] malformed privateMessage", zap.Error(err))
		return
	}
	if req.Sender != c.UserID {
		c.logger.Warn("[WebSocket] privateMessage sender mismatch", zap.String("claimed_sender", req.Sender))
		return
	}
	if req.Receiver == "" {
		c.logger.Warn("[WebSocket] privateMessage without receiver")
		return
	}

	frame, err := NewFrame(EventPrivateMessage, model.PrivateMessageEvent{
		Sender:    req.Sender,
		Receiver:  req.Receiver,
		Content:   req.Content,
		ClientID:  req.ClientID,
		CreatedAt: g.now().UTC(),
	})
	if err != nil {
		c.logger.Error("[WebSocket] failed to build privateMessage", zap.Error(err))
		return
	}

	if err := g.hub.Emit(ctx, frame, PersonalRoom(req.Sender), PersonalRoom(req.Receiver)); err != nil {
		c.logger.Error("[WebSocket] failed to emit privateMessage", zap.Error(err))
		return
	}
	c.logger.Debug("[WebSocket] relayed privateMessage", zap.String("receiver", req.Receiver))
}

func (g *Gateway) typing(ctx context.Context, c *Client, event string, data json.RawMessage) {
	var req model.TypingEvent
	if err := json.Unmarshal(data, &req); err != nil {
		c.logger.Warn("[WebSocket] malformed typing event", zap.String("event", event), zap.Error(err))
		return
	}
	if req.From == "" {
		req.From = c.UserID
	}
	if req.From != c.UserID || req.To == "" {
		c.logger.Warn("[WebSocket] rejecting typing event", zap.String("event", event), zap.String("from", req.From))
		return
	}

	frame, err := NewFrame(event, model.TypingEvent{From: req.From})
	if err != nil {
		c.logger.Error("[WebSocket] failed to build typing event", zap.Error(err))
		return
	}
	if err := g.hub.Emit(ctx, frame, PersonalRoom(req.To)); err != nil {
		c.logger.Error("[WebSocket] failed to emit typing event", zap.Error(err))
	}
}
