package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// ==============================================================================
// 1. WebSocket Configuration & Constants
// ==============================================================================

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Replies queued per connection before the reader blocks.
	replyBuffer = 16
)

// SocketRequest is one inbound frame.
type SocketRequest struct {
	Direction string `json:"direction"`
	Text      string `json:"text"`
	Method    string `json:"method"`
	SecretKey string `json:"secret_key"`
}

// SocketReply answers exactly one SocketRequest, in order.
type SocketReply struct {
	Direction string `json:"direction"`
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	Method    string `json:"method,omitempty"`
	Success   bool   `json:"success"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type WebSocketHandler struct {
	Service        domain.Transformer
	Logger         *slog.Logger
	MaxMessageSize int64
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler builds the interactive transform socket.
// allowOrigin mirrors the CORS policy so browsers outside it cannot open a socket.
func NewWebSocketHandler(service domain.Transformer, logger *slog.Logger, maxMessageSize int64, allowOrigin func(origin string) bool) *WebSocketHandler {
	return &WebSocketHandler{
		Service:        service,
		Logger:         logger,
		MaxMessageSize: maxMessageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header
				return origin == "" || allowOrigin(origin)
			},
		},
	}
}

// ==============================================================================
// 3. HTTP Methods (The Upgrader)
// ==============================================================================

// Serve handles GET /ws
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
		return
	}

	replies := make(chan SocketReply, replyBuffer)
	done := make(chan struct{})

	// The Read Pump decodes frames and runs transforms in arrival order.
	go h.readPump(r.Context(), ws, replies, done)

	// The Write Pump owns every write on the connection.
	h.writePump(ws, replies, done)
}

// ==============================================================================
// 4. The Write Pump
// ==============================================================================

func (h *WebSocketHandler) writePump(ws *websocket.Conn, replies <-chan SocketReply, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
		ws.Close()
	}()

	for {
		select {
		case reply, ok := <-replies:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The read pump finished: the peer closed or sent something unreadable.
				ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := ws.WriteJSON(reply); err != nil {
				h.Logger.Warn("Failed to write JSON to WebSocket", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ==============================================================================
// 5. The Read Pump
// ==============================================================================

func (h *WebSocketHandler) readPump(ctx context.Context, ws *websocket.Conn, replies chan<- SocketReply, done <-chan struct{}) {
	defer close(replies)

	ws.SetReadLimit(h.MaxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var req SocketRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("WebSocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}
		// Any frame counts as liveness
		ws.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case replies <- h.handleFrame(ctx, req):
		case <-done:
			// Writer is gone, nobody will drain the queue
			return
		}
	}
}

func (h *WebSocketHandler) handleFrame(ctx context.Context, req SocketRequest) SocketReply {
	direction, ok := domain.ParseDirection(req.Direction)
	if !ok {
		return SocketReply{
			Direction: req.Direction,
			Input:     req.Text,
			Status:    http.StatusBadRequest,
			Message:   "direction must be one of encrypt, decrypt, encode, decode",
		}
	}

	res, status := RunTransform(ctx, h.Service, direction, req.Method, req.Text, req.SecretKey)
	reply := SocketReply{
		Direction: direction.String(),
		Input:     req.Text,
		Output:    res.Output,
		Success:   res.Succeeded,
		Status:    status,
		Message:   res.Message,
	}
	if res.Method != 0 {
		reply.Method = res.Method.String()
	}
	return reply
}
