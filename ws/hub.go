package ws

import (
	"context"
	"encoding/json"

	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/metrics"
	"classifieds_backend/internal/services/dto"
)

// Hub раздает события объявлений всем подключенным клиентам.
// Состояние клиентов меняет только горутина Run.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	count      chan chan int
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run обслуживает хаб до отмены ctx, после чего закрывает всех клиентов
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			logger.Info("Feed hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			metrics.FeedClients.Set(float64(len(h.clients)))
			logger.Debug("Feed client registered", "remote", client.remote, "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				logger.Debug("Feed client unregistered", "remote", client.remote, "total", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// клиент не успевает читать
					h.drop(client)
					logger.Warn("Feed client dropped: send buffer full", "remote", client.remote)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	metrics.FeedClients.Set(float64(len(h.clients)))
}

// Publish ставит событие в очередь рассылки и никогда не блокирует
func (h *Hub) Publish(event dto.AdvertisementEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode feed event", "error", err, "type", event.Type)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		metrics.FeedDropped.Inc()
		logger.Warn("Feed event dropped: hub is busy", "type", event.Type, "id", event.ID)
	}
}

// ClientCount - число подключенных клиентов (0, если хаб остановлен)
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
