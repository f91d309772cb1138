package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The UI may be served from a dev server on another port
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client represents a connected WebSocket client
type Client struct {
	conn    *websocket.Conn
	handler *Handler
	send    chan Message
	done    chan struct{}

	// One analysis at a time per connection
	mu             sync.Mutex
	analysisCancel context.CancelFunc
}

func newClient(conn *websocket.Conn, h *Handler) *Client {
	return &Client{
		conn:    conn,
		handler: h,
		send:    make(chan Message, 256),
		done:    make(chan struct{}),
	}
}

func (c *Client) SendMessage(msg Message) {
	select {
	case c.send <- msg:
	default:
		// Channel full, drop message
		log.Println("[WARN] message channel full, dropping message")
	}
}

func (c *Client) SendLog(message, level string) {
	c.SendMessage(NewLogMessage(message, level))
}

func (c *Client) SendProgress(percent int, stage, message string) {
	c.SendMessage(NewProgressMessage(percent, stage, message))
}

func (c *Client) SendError(message string, err error) {
	c.SendMessage(NewErrorMessage(message, err, "internal"))
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[WARN] Error writing message: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		// Cancel any running analysis
		c.mu.Lock()
		if c.analysisCancel != nil {
			c.analysisCancel()
		}
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				log.Printf("[WARN] WebSocket message exceeds %d bytes, closing", MaxBodyBytes)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] WebSocket error: %v", err)
			}
			return
		}

		switch msg.Type {
		case TypeAnalyze:
			c.handleAnalyze(msg)
		case TypePing:
			c.SendMessage(NewPongMessage())
		default:
			c.SendMessage(NewErrorMessage(fmt.Sprintf("Unknown message type: %s", msg.Type), nil, "validation"))
		}
	}
}

func (c *Client) handleAnalyze(msg Message) {
	payload, err := ParseAnalyzePayload(msg)
	if err != nil {
		c.SendMessage(NewErrorMessage("Failed to parse analyze request", err, "validation"))
		return
	}

	kind, content, err := Validate(payload.Type, payload.Content)
	if err != nil {
		c.SendMessage(NewErrorMessage(err.Error(), nil, "validation"))
		return
	}

	c.mu.Lock()
	if c.analysisCancel != nil {
		c.mu.Unlock()
		c.SendMessage(NewErrorMessage("Analysis already in progress", nil, "busy"))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.analysisCancel = cancel
	c.mu.Unlock()

	// Run off the read loop so pings and disconnects are still seen
	go func() {
		defer func() {
			c.mu.Lock()
			c.analysisCancel = nil
			c.mu.Unlock()
			cancel()
		}()
		defer func() {
			if rec := recover(); rec != nil {
				c.SendError("Analysis failed", errors.New(c.handler.clientMessage(fmt.Errorf("panic: %v", rec))))
			}
		}()

		verdict, err := c.handler.pipeline.Run(ctx, kind, content, c)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				log.Printf("[WARN] Analysis cancelled")
				return
			}
			log.Printf("[ERROR] Server error: %v", err)
			c.SendMessage(NewErrorMessage(c.handler.clientMessage(err), nil, "internal"))
			return
		}
		c.SendMessage(NewResultMessage(kind, verdict))
	}()
}

func (h *Handler) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] Failed to upgrade connection: %v", err)
		return
	}

	// Same cap as the HTTP body. Larger frames close the connection.
	conn.SetReadLimit(MaxBodyBytes)

	client := newClient(conn, h)

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}
