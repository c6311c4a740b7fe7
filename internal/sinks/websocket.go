package sinks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/signatures"
	"sigwatch/internal/watcher"

	"github.com/gorilla/websocket"
)

const (
	report_websocket_upgrade   = "websocket.upgrade"
	report_websocket_broadcast = "websocket.broadcast"
	report_websocket_listen    = "websocket.listen"
)

type MessageType string

const (
	MsgEvents     MessageType = "events"
	MsgDiagnostic MessageType = "diagnostic"
)

type Message struct {
	Type    MessageType `json:"type"`
	Time    time.Time   `json:"time"`
	Payload any         `json:"payload"`
}

type DiagnosticPayload struct {
	Kind    watcher.DiagnosticKind `json:"kind"`
	Session string                 `json:"session"`
	Error   string                 `json:"error,omitempty"`
}

type EventsPayload struct {
	Session string                 `json:"session"`
	Cycle   int                    `json:"cycle"`
	Events  []signatures.DiffEvent `json:"events"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newWsClient(conn *websocket.Conn) *wsClient {
	c := &wsClient{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			return
		}
	}
}

// Websocket broadcasts events and diagnostics as json messages to every
// connected client.
type Websocket struct {
	tel      telemetry.API
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]bool
}

func NewWebsocket(tel telemetry.API) *Websocket {
	return &Websocket{
		tel: telemetry.NewScopedAPI("sinks", tel),
		upgrader: websocket.Upgrader{
			// read-only feed, any page may subscribe
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: map[*wsClient]bool{},
	}
}

func (w *Websocket) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", w.serveWs)
	return mux
}

func (w *Websocket) serveWs(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.tel.ReportWarning(report_websocket_upgrade, err)
		return
	}

	c := newWsClient(conn)
	w.mu.Lock()
	w.clients[c] = true
	w.mu.Unlock()

	// clients never send anything, reading only notices them leave
	go func() {
		defer w.removeClient(c)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}()
}

func (w *Websocket) removeClient(c *wsClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.clients[c]; ok {
		delete(w.clients, c)
		close(c.send)
	}
}

func (w *Websocket) ClientCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

func (w *Websocket) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		w.tel.ReportBroken(report_websocket_broadcast, err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for c := range w.clients {
		select {
		case c.send <- data:
		default:
			w.tel.ReportWarning(report_websocket_broadcast, "client too slow, disconnecting")
			delete(w.clients, c)
			close(c.send)
		}
	}
}

func (w *Websocket) Cycle(ctx context.Context, cycle watcher.Cycle) {
	if len(cycle.Events) == 0 {
		return
	}
	w.broadcast(Message{
		Type: MsgEvents,
		Time: cycle.Time,
		Payload: EventsPayload{
			Session: cycle.Session,
			Cycle:   cycle.Number,
			Events:  cycle.Events,
		},
	})
}

func (w *Websocket) Diagnostic(ctx context.Context, diagnostic watcher.Diagnostic) {
	payload := DiagnosticPayload{Kind: diagnostic.Kind, Session: diagnostic.Session}
	if diagnostic.Err != nil {
		payload.Error = diagnostic.Err.Error()
	}
	w.broadcast(Message{Type: MsgDiagnostic, Time: diagnostic.Time, Payload: payload})
}

// Listen serves the websocket feed on addr until ctx is done.
func (w *Websocket) Listen(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: w.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	w.tel.ReportDebug(report_websocket_listen, addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
