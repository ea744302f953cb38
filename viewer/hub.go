// Package viewer is the live websocket front end: a broadcast hub plus a
// Control that drives a *mterra.World's single-threaded execution loop.
//
// Adapted from the teacher's websocket.go (TTrapper-evosoup): the
// Client/Hub/readPump/writePump shape is unchanged, but Client routes UI
// messages to a Control wrapping mterra.World instead of the teacher's
// AppState wrapping a goroutine-per-IP population.
package viewer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the time allowed to write one message to a client.
	writeWait = 10 * time.Second

	// maxMessageSize is the largest incoming control message accepted.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is a middleman between one websocket connection and the Hub.
type Client struct {
	hub     *Hub
	control *Control

	conn *websocket.Conn
	send chan []byte
}

// uiMessage is the JSON control-channel envelope sent by the browser.
type uiMessage struct {
	Type    string  `json:"type"`
	Command string  `json:"command"`
	Value   float64 `json:"value"`
}

// readPump pumps control messages from the websocket connection to the
// world's Control. A broken connection is detected by a write failure in
// writePump, so no read deadline is set.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("viewer_websocket_read_error", "err", err)
			}
			break
		}

		var msg uiMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Warn("viewer_bad_message", "err", err)
			continue
		}

		switch msg.Type {
		case "command":
			switch msg.Command {
			case "pause":
				c.control.Pause()
			case "resume":
				c.control.Resume()
			case "step":
				c.control.Step()
			default:
				slog.Warn("viewer_unknown_command", "command", msg.Command)
			}
		case "set_cosmic_rate":
			c.control.SetCosmicRate(msg.Value)
		default:
			slog.Warn("viewer_unknown_message_type", "type", msg.Type)
		}
	}
}

// writePump pumps frames from the Hub to the websocket connection. It is
// the only goroutine allowed to write to conn.
func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Warn("viewer_websocket_write_error", "err", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub maintains the set of connected viewers and fans out broadcast
// frames — unchanged in shape from the teacher's Hub.
type Hub struct {
	clients map[*Client]bool

	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

// NewHub creates an empty broadcast hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run is the Hub's message loop; it never returns.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer: drop the frame rather than block the hub.
				}
			}
		}
	}
}

func handleWebSocket(hub *Hub, control *Control, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("viewer_upgrade_failed", "err", err)
		return
	}
	client := &Client{hub: hub, control: control, conn: conn, send: make(chan []byte, 256)}
	client.hub.Register <- client

	go client.writePump()
	go client.readPump()
}

// StartServer serves the viewer's websocket endpoint at /ws on addr. It
// blocks until the HTTP server exits.
func StartServer(hub *Hub, control *Control, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, control, w, r)
	})

	slog.Info("viewer_listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
