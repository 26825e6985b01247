package ws

import (
	"log"

	"github.com/Samuliej/mobilechat/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub. Delivery
// is strictly to the users named on the event; nothing is broadcast.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifyFriendRequest pushes the new request to the receiver and an ack to
// the sender.
func (n *HubNotifier) NotifyFriendRequest(req *domain.Friendship) {
	evt, err := NewEvent(EventTypeFriendRequest, FriendRequestPayload{Friendship: *req})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(req.ReceiverID, evt)

	ack, err := NewEvent(EventTypeFriendRequestSent, FriendRequestPayload{Friendship: *req})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(req.SenderID, ack)
}

// NotifyFriendRequestAccepted tells both parties, including whoever accepted.
func (n *HubNotifier) NotifyFriendRequestAccepted(f *domain.Friendship) {
	evt, err := NewEvent(EventTypeFriendRequestAccepted, FriendRequestPayload{Friendship: *f})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(f.SenderID, evt)
	n.hub.SendToUser(f.ReceiverID, evt)
}

// NotifyNewMessage pushes the persisted message to the receiver, if
// registered, and echoes it to the sender so their client picks up the
// server-assigned fields. Unregistered receivers see it on their next fetch.
func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessage, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(msg.ReceiverID, evt)
	n.hub.SendToUser(msg.SenderID, evt)
}
