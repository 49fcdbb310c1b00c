package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	models "storm/internal/domain/models/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
)

// Hub fans file system events out to every connected editor window. Every
// event is a full state frame, so only the latest frame of each type
// matters: it is remembered for late joiners and a client that falls behind
// gets the newest frame instead of the backlog.
//
// Broadcasts never block: the store calls in while holding its lock.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.Mutex
	clients map[*Client]bool
	latest  *mailbox

	connected atomic.Int64
	logger    *slog.Logger
}

var _ docsysSvc.Notifier = (*Hub)(nil)

// NewHub creates a hub. Call Run to start accepting clients.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		latest:     newMailbox(),
		logger:     logger,
	}
}

// Run registers and removes clients until ctx is cancelled, then closes
// every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			h.logger.Info("realtime hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.connected.Add(1)
			h.latest.replayTo(client.mail)
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected",
				"client_id", client.id,
				"user_id", client.userID,
				"client_count", count,
			)

		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.drop(client)
			count := len(h.clients)
			h.mu.Unlock()
			if removed {
				h.logger.Debug("client disconnected", "client_id", client.id, "client_count", count)
			}
		}
	}
}

// drop removes a client and closes its mailbox. Caller holds h.mu.
func (h *Hub) drop(client *Client) bool {
	if !h.clients[client] {
		return false
	}
	delete(h.clients, client)
	client.mail.close()
	h.connected.Add(-1)
	return true
}

// attach registers a client; it reports false once the hub has stopped
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// Broadcast encodes payload and hands it to every client, replacing any
// frame of the same type the client has not written yet
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := encode(eventType, payload)
	if err != nil {
		h.logger.Error("failed to encode event", "type", eventType, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest.put(eventType, data)
	for client := range h.clients {
		client.mail.put(eventType, data)
	}
}

// RenderFileTree pushes the folder tree to every client
func (h *Hub) RenderFileTree(tree *models.TreeNode) {
	h.Broadcast(EventTree, tree)
}

// RenderTabs pushes the tab strip to every client
func (h *Hub) RenderTabs(tabs *models.TabState) {
	h.Broadcast(EventTabs, tabs)
}
