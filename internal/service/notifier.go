package service

import (
	"github.com/Samuliej/mobilechat/internal/domain"
)

// Notifier pushes real-time events to connected clients. Implementations
// deliver only to the users named on the event, never to the whole process.
type Notifier interface {
	NotifyFriendRequest(req *domain.Friendship)
	NotifyFriendRequestAccepted(f *domain.Friendship)
	NotifyNewMessage(msg *domain.Message)
}
