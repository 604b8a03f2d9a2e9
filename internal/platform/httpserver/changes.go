package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"

	"github.com/gorilla/websocket"
)

const (
	changeBuffer     = 64
	changeWriteWait  = 10 * time.Second
	changePingPeriod = 30 * time.Second
)

type changeClient struct {
	topics map[string]struct{}
	send   chan contractsv1.Envelope
}

func (c *changeClient) wants(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	_, ok := c.topics[topic]
	return ok
}

// ChangeHub streams published fulfillment events to websocket clients.
// Clients that fall behind are disconnected.
type ChangeHub struct {
	mu       sync.Mutex
	clients  map[*changeClient]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewChangeHub(logger *slog.Logger) *ChangeHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeHub{
		clients: make(map[*changeClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

// Start subscribes the hub to every fulfillment topic. group must be unique
// per process so each API replica sees the full stream.
func (h *ChangeHub) Start(ctx context.Context, subscriber ports.EventSubscriber, group string) error {
	for _, topic := range contractsv1.FulfillmentTopics() {
		topic := topic
		if err := subscriber.Subscribe(ctx, topic, group, func(_ context.Context, event ports.EventEnvelope) error {
			h.Broadcast(topic, event)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// Broadcast hands the event to every interested client without blocking.
func (h *ChangeHub) Broadcast(topic string, event contractsv1.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.wants(topic) {
			continue
		}
		select {
		case client.send <- event:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn("dropping slow change subscriber",
				"event", "change_client_dropped",
				"module", moduleName,
				"layer", "platform",
				"topic", topic,
			)
		}
	}
}

func (h *ChangeHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *ChangeHub) register(client *changeClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

func (h *ChangeHub) unregister(client *changeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// ServeHTTP upgrades the request and writes one JSON envelope per message.
// The optional topic query parameter is a comma separated filter.
func (h *ChangeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topics := map[string]struct{}{}
	for _, topic := range strings.Split(r.URL.Query().Get("topic"), ",") {
		if topic = strings.TrimSpace(topic); topic != "" {
			topics[topic] = struct{}{}
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("change stream upgrade failed",
			"event", "change_upgrade_failed",
			"module", moduleName,
			"layer", "platform",
			"error", err.Error(),
		)
		return
	}

	client := &changeClient{topics: topics, send: make(chan contractsv1.Envelope, changeBuffer)}
	h.register(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(changePingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(client)
		_ = conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(changeWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "lagging"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(changeWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
