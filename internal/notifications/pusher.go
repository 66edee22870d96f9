package notifications

import (
	"context"
	"log"
)

// Pusher delivers payloads to a user's live websocket connections. With Redis
// the payload goes through pub/sub so connections held by other instances
// receive it too; without Redis delivery stays hub-local.
type Pusher struct {
	notifier *Notifier
	hub      *Hub
}

// NewPusher wires a pusher over the hub. notifier may be nil when Redis is
// not configured; pushes then reach local connections only.
func NewPusher(notifier *Notifier, hub *Hub) *Pusher {
	return &Pusher{notifier: notifier, hub: hub}
}

// PushToUser publishes the payload on the user's channel. Users with no live
// connection anywhere are skipped; a failed publish falls back to the local
// hub so connections on this instance still get the message.
func (p *Pusher) PushToUser(userID uint, payload []byte) {
	if !p.hub.IsOnline(userID) {
		return
	}

	if p.notifier != nil {
		err := p.notifier.PublishUser(context.Background(), userID, string(payload))
		if err == nil {
			return
		}
		log.Printf("publish to user %d failed, delivering locally: %v", userID, err)
	}

	p.hub.PushToUser(userID, payload)
}
