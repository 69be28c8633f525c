package sse

import (
	"context"
	"sync"

	"garage-client-api/internal/models"
)

// NotificationEmitter manages SSE connections and pushes newly created
// notifications to subscribed clients.
type NotificationEmitter struct {
	// key: clientID, value: slice of subscriber channels
	clients     map[int64][]chan models.ClientNotification
	clientMutex sync.RWMutex
}

func NewNotificationEmitter() *NotificationEmitter {
	return &NotificationEmitter{
		clients: make(map[int64][]chan models.ClientNotification),
	}
}

// Subscribe adds a subscriber for the client's notifications. The channel is
// removed and closed when the context is done.
func (e *NotificationEmitter) Subscribe(ctx context.Context, clientID int64) chan models.ClientNotification {
	subscriberChan := make(chan models.ClientNotification, 10)

	e.clientMutex.Lock()
	e.clients[clientID] = append(e.clients[clientID], subscriberChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeSubscriber(clientID, subscriberChan)
	}()

	return subscriberChan
}

// Emit broadcasts a notification to all of the client's subscribers.
func (e *NotificationEmitter) Emit(notification models.ClientNotification) {
	e.clientMutex.RLock()
	subscribers := e.clients[notification.ClientID]
	e.clientMutex.RUnlock()

	for _, subscriberChan := range subscribers {
		// Non-blocking send to avoid slowing down emitter if client is slow
		select {
		case subscriberChan <- notification:
		default:
			// Channel buffer full, skip this subscriber for now
		}
	}
}

func (e *NotificationEmitter) removeSubscriber(clientID int64, subscriberChan chan models.ClientNotification) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	subscribers := e.clients[clientID]
	for i, ch := range subscribers {
		if ch == subscriberChan {
			e.clients[clientID] = append(subscribers[:i], subscribers[i+1:]...)
			close(subscriberChan)
			break
		}
	}

	if len(e.clients[clientID]) == 0 {
		delete(e.clients, clientID)
	}
}

// SubscriberCount returns the number of channels currently subscribed for a client.
func (e *NotificationEmitter) SubscriberCount(clientID int64) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[clientID])
}
