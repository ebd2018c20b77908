// Package sse provides Server-Sent Events support for the live dashboard.
package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skm_agent_backend/platform/logger"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventConnected      EventType = "connected"
	EventNewMessage     EventType = "new_message"
	EventModeChanged    EventType = "mode_changed"
	EventTakeoverNeeded EventType = "takeover_needed"
)

const keepAliveInterval = 25 * time.Second

// Event represents an SSE event payload
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// client represents a connected dashboard session
type client struct {
	id     uuid.UUID
	events chan Event
}

// Service manages SSE connections and event broadcasting. Every connected
// dashboard session receives every event.
//
// Client channels are never closed: Broadcast may be sending to a channel at
// any moment, and closing it under the map lock does not stop a send that
// already snapshotted the client. Removal just drops the client from the map;
// its handler exits through the request context or the done channel.
type Service struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]*client
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID]*client),
		done:    make(chan struct{}),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c.id)
}

// ClientCount reports the number of connected sessions.
func (s *Service) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends an event to every connected session. A session whose buffer
// is full misses the event rather than blocking the publisher.
func (s *Service) Broadcast(event Event) {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse event buffer full, dropping event", "client", c.id, "event", event.Type)
		}
	}
}

// Handler returns a Gin handler for SSE connections.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			id:     uuid.New(),
			events: make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent(string(EventConnected), gin.H{"clientId": cl.id})
		c.Writer.Flush()

		s.log.Info("sse client connected", "client", cl.id)

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Info("sse client disconnected", "client", cl.id)
				return
			case <-s.done:
				return
			case <-keepAlive.C:
				// Comment frame keeps intermediaries from closing the stream.
				if _, err := c.Writer.WriteString(": ping\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			case event := <-cl.events:
				data, _ := json.Marshal(event.Data)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close shuts down the SSE service, disconnecting every session.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = make(map[uuid.UUID]*client)
}
