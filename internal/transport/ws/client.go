package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/Samuliej/mobilechat/internal/observability/metrics"
	"github.com/Samuliej/mobilechat/internal/service"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection. Its identity is bound once
// at connect time from the validated token and never read from payloads.
type Client struct {
	hub    *Hub
	relay  *Relay
	conn   *websocket.Conn
	userID uuid.UUID

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

// Relay holds the services an in-band event may invoke.
type Relay struct {
	Friendships *service.FriendshipService
	Chat        *service.ChatService
}

func NewClient(hub *Hub, relay *Relay, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		relay:  relay,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// Close signals both pumps to stop. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ReadPump reads events from the WebSocket and dispatches them until the
// connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c.userID, c)
		c.Close()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent validates and dispatches one incoming event. Each handler runs
// to completion before the next event on this connection is read; failures
// come back to this connection as an error event.
func (c *Client) handleEvent(event *Event) {
	metrics.WSEventsTotal.WithLabelValues(event.Type).Inc()
	ctx := context.Background()

	switch event.Type {
	case EventTypeSendFriendRequest:
		var p SendFriendRequestPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.Username == "" {
			c.sendError("INVALID_PAYLOAD", "invalid sendFriendRequest payload")
			return
		}
		if _, err := c.relay.Friendships.SendRequest(ctx, c.userID, p.Username); err != nil {
			c.sendServiceError(err)
		}

	case EventTypeAcceptFriendRequest:
		var p AcceptFriendRequestPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.RequestID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid acceptFriendRequest payload")
			return
		}
		if _, err := c.relay.Friendships.AcceptRequest(ctx, c.userID, p.RequestID); err != nil {
			c.sendServiceError(err)
		}

	case EventTypeMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ConversationID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid message payload")
			return
		}
		if _, err := c.relay.Chat.SendMessage(ctx, c.userID, p.ConversationID, p.Content, p.Emojis, p.Timestamp); err != nil {
			c.sendServiceError(err)
		}

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// sendServiceError maps service failures onto the wire error codes.
func (c *Client) sendServiceError(err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrConversationNotFound):
		c.sendError("NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrRequestAlreadyExists),
		errors.Is(err, service.ErrAlreadyFriends):
		c.sendError("CONFLICT", err.Error())
	case errors.Is(err, service.ErrNotRequestReceiver),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrNotFriends):
		c.sendError("FORBIDDEN", err.Error())
	case errors.Is(err, service.ErrCannotRequestSelf),
		errors.Is(err, service.ErrRequestNotPending),
		errors.Is(err, service.ErrCannotChatSelf),
		errors.Is(err, service.ErrEmptyMessage):
		c.sendError("INVALID_REQUEST", err.Error())
	default:
		log.Printf("ws: event from %s failed: %v", c.userID, err)
		c.sendError("INTERNAL", "something went wrong")
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	c.trySend(data)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend queues data without blocking; a full buffer drops the event rather
// than stalling the caller.
func (c *Client) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}
