package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Samuliej/mobilechat/internal/observability/metrics"
)

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return NewClient(hub, nil, nil, userID)
}

func readQueued(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case data := <-c.send:
		var evt Event
		require.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	default:
		t.Fatal("no event queued")
		return nil
	}
}

func TestHub_RegisterLookupUnregister(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	_, ok := hub.Lookup(userID)
	require.False(t, ok)

	c := newTestClient(hub, userID)
	hub.Register(userID, c)

	got, ok := hub.Lookup(userID)
	require.True(t, ok)
	require.Same(t, c, got)

	hub.Unregister(userID, c)
	_, ok = hub.Lookup(userID)
	require.False(t, ok)
}

func TestHub_LastWriterWins(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newTestClient(hub, userID)
	second := newTestClient(hub, userID)

	hub.Register(userID, first)
	hub.Register(userID, second)

	// The newer connection owns the slot; the old one was told to close.
	got, ok := hub.Lookup(userID)
	require.True(t, ok)
	require.Same(t, second, got)

	select {
	case <-first.done:
	default:
		t.Fatal("displaced client was not closed")
	}

	// The displaced connection's teardown must not evict its successor.
	hub.Unregister(userID, first)
	got, ok = hub.Lookup(userID)
	require.True(t, ok)
	require.Same(t, second, got)
}

func TestHub_ConnectionGaugeOnDisplacement(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	base := testutil.ToFloat64(metrics.WSConnections)

	first := newTestClient(hub, userID)
	hub.Register(userID, first)
	require.Equal(t, base+1, testutil.ToFloat64(metrics.WSConnections))

	// Displacement swaps one live connection for another.
	second := newTestClient(hub, userID)
	hub.Register(userID, second)
	require.Equal(t, base+1, testutil.ToFloat64(metrics.WSConnections))

	// The displaced connection tears down the way its read pump would.
	hub.Unregister(userID, first)
	require.Equal(t, base+1, testutil.ToFloat64(metrics.WSConnections))

	hub.Unregister(userID, second)
	require.Equal(t, base, testutil.ToFloat64(metrics.WSConnections))
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	evt, err := NewEvent(EventTypeFriendRequest, FriendRequestPayload{})
	require.NoError(t, err)

	// Nobody registered: delivery is a no-op, not an error.
	require.False(t, hub.SendToUser(userID, evt))

	c := newTestClient(hub, userID)
	hub.Register(userID, c)

	require.True(t, hub.SendToUser(userID, evt))
	got := readQueued(t, c)
	require.Equal(t, EventTypeFriendRequest, got.Type)

	// Other users' connections see nothing.
	other := newTestClient(hub, uuid.New())
	hub.Register(other.userID, other)
	require.True(t, hub.SendToUser(userID, evt))
	select {
	case <-other.send:
		t.Fatal("event leaked to another user's connection")
	default:
	}
}

func TestHub_SendToUser_FullBuffer(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	c := newTestClient(hub, userID)
	hub.Register(userID, c)

	evt, err := NewEvent(EventTypeMessage, MessagePayload{})
	require.NoError(t, err)

	for i := 0; i < sendBufSize; i++ {
		require.True(t, hub.SendToUser(userID, evt))
	}
	// Buffer full: the event is dropped rather than blocking the sender.
	require.False(t, hub.SendToUser(userID, evt))
}

func TestClient_CloseIdempotent(t *testing.T) {
	c := newTestClient(NewHub(), uuid.New())
	c.Close()
	c.Close()

	select {
	case <-c.done:
	default:
		t.Fatal("done channel not closed")
	}
}

func TestHandleEvent_UnknownType(t *testing.T) {
	c := newTestClient(NewHub(), uuid.New())

	c.handleEvent(&Event{Type: "subscribe"})

	evt := readQueued(t, c)
	require.Equal(t, EventTypeError, evt.Type)

	var p ErrorPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	require.Equal(t, "UNKNOWN_EVENT", p.Code)
}

func TestHandleEvent_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{"malformed friend request", Event{Type: EventTypeSendFriendRequest, Payload: json.RawMessage(`{`)}},
		{"empty username", Event{Type: EventTypeSendFriendRequest, Payload: json.RawMessage(`{"username":""}`)}},
		{"nil request id", Event{Type: EventTypeAcceptFriendRequest, Payload: json.RawMessage(`{}`)}},
		{"nil conversation id", Event{Type: EventTypeMessage, Payload: json.RawMessage(`{"content":"hi"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(NewHub(), uuid.New())
			c.handleEvent(&tt.event)

			evt := readQueued(t, c)
			require.Equal(t, EventTypeError, evt.Type)

			var p ErrorPayload
			require.NoError(t, json.Unmarshal(evt.Payload, &p))
			require.Equal(t, "INVALID_PAYLOAD", p.Code)
		})
	}
}

func TestHandleEvent_Ping(t *testing.T) {
	c := newTestClient(NewHub(), uuid.New())

	c.handleEvent(&Event{Type: EventTypePing})

	evt := readQueued(t, c)
	require.Equal(t, EventTypePong, evt.Type)
}
