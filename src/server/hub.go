package server

import (
	"encoding/json"
	"net/http"
	"time"

	"market-buzz/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// clientReply is a message meant for a single client.
type clientReply struct {
	client  *Client
	message *models.MServerMessage
}

// handleWebsockets is the main Hub loop. It alone touches s.clients.
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Add(1)
			s.Logger.Info("Client %s connected (%d total)", client.id, len(s.clients))

			// Send initial state on connect
			client.send <- s.initialMessage(nil)

		case client := <-s.unregister:
			s.dropClient(client)

		case r := <-s.replies:
			if _, ok := s.clients[r.client]; !ok {
				continue
			}
			select {
			case r.client.send <- r.message:
			default:
				s.dropClient(r.client)
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				if !client.wants(message) {
					continue
				}
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					s.Logger.Warning("Client %s too slow, disconnecting", client.id)
					s.dropClient(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) dropClient(client *Client) {
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		s.connections.Add(-1)
	}
}

// -----------------------------------------------------------------------------

// initialMessage carries the latest snapshot of every pair, restricted to
// pairs when it is not empty.
func (s *FastAPIServer) initialMessage(pairs []string) *models.MServerMessage {
	latest := s.History.Latest()

	snapshots := make([]models.MSnapshot, 0, len(latest))
	for _, snap := range latest {
		if len(pairs) > 0 && !contains(pairs, snap.Key()) {
			continue
		}
		snapshots = append(snapshots, *snap)
	}

	return &models.MServerMessage{
		Type:      models.MessageTypeInitial,
		Snapshots: snapshots,
		Timestamp: time.Now().Unix(),
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast records the snapshot and queues it for every interested client.
func (s *FastAPIServer) Broadcast(snapshot *models.MSnapshot) {
	if snapshot == nil {
		return
	}
	s.History.AddSnapshot(snapshot)

	s.enqueue(&models.MServerMessage{
		Type:      models.MessageTypeSnapshot,
		Snapshots: []models.MSnapshot{*snapshot},
		Timestamp: time.Now().Unix(),
	})
}

// -----------------------------------------------------------------------------

// Notify pushes a notification to every connected client.
func (s *FastAPIServer) Notify(n models.MNotification) {
	s.enqueue(&models.MServerMessage{
		Type:         models.MessageTypeNotification,
		Notification: &n,
		Timestamp:    time.Now().Unix(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) enqueue(message *models.MServerMessage) {
	if s.stopped.Load() {
		return
	}
	select {
	case s.broadcast <- message:
	default:
		s.Logger.Warning("Broadcast queue full, dropping %s message", message.Type)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	if s.stopped.Load() {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MServerMessage, 64),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe command and answers with the
// matching latest snapshots.
func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	client.setPairs(cmd.Pairs)

	// Only the hub writes to client.send; it may already have closed it.
	select {
	case s.replies <- clientReply{client: client, message: s.initialMessage(cmd.Pairs)}:
	case <-s.done:
	}
}
