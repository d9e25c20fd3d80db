package net

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"DesignBoard/internal/editor"
	"DesignBoard/internal/scene"
)

// Message types on the websocket.
const (
	TypeScene   = "scene"
	TypeCommand = "command"
	TypeError   = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 20
	sendBuffer     = 16
)

// Message is the envelope exchanged with viewers. Scene messages carry the
// whole checkpoint so a viewer never has to merge partial state; a viewer
// drops scene messages older than the last Seq it applied.
type Message struct {
	Type       string                   `json:"type"`
	Seq        uint64                   `json:"seq,omitempty"`
	Reason     string                   `json:"reason,omitempty"`
	Checkpoint *scene.Checkpoint        `json:"checkpoint,omitempty"`
	Selection  *editor.PropertySnapshot `json:"selection,omitempty"`
	CanUndo    bool                     `json:"can_undo"`
	CanRedo    bool                     `json:"can_redo"`
	Command    *editor.Command          `json:"command,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

func sceneMessage(c editor.Change) Message {
	return Message{
		Type:       TypeScene,
		Seq:        c.Seq,
		Reason:     c.Reason,
		Checkpoint: &c.Checkpoint,
		Selection:  &c.Selection,
		CanUndo:    c.CanUndo,
		CanRedo:    c.CanRedo,
	}
}

type peer struct {
	conn *websocket.Conn
	send chan Message
}

// Hub relays session changes to every connected viewer and applies the
// commands they send.
type Hub struct {
	session     *editor.Session
	upgrader    websocket.Upgrader
	peers       map[*peer]bool
	unsubscribe func()
	mu          sync.RWMutex
}

func NewHub(s *editor.Session) *Hub {
	h := &Hub{
		session: s,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// viewers are desktop clients on the local network
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*peer]bool),
	}
	h.unsubscribe = s.Subscribe(func(c editor.Change) { h.Broadcast(sceneMessage(c)) })
	return h
}

// Handler serves the websocket endpoint at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	return mux
}

// ServeWS upgrades the request and starts relaying.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] Upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	p := &peer{conn: conn, send: make(chan Message, sendBuffer)}
	h.add(p)
	h.reply(p, sceneMessage(h.session.State("connect")))

	go h.writePump(p)
	h.readPump(p)
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = true
	log.Printf("[HUB] Added viewer %s (%d connected)", p.conn.RemoteAddr(), len(h.peers))
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.peers[p] {
		return
	}
	delete(h.peers, p)
	close(p.send)
	log.Printf("[HUB] Removed viewer %s", p.conn.RemoteAddr())
}

// Broadcast queues m for every viewer. A viewer whose queue is full is
// dropped.
func (h *Hub) Broadcast(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		select {
		case p.send <- m:
		default:
			log.Printf("[HUB] Viewer %s is not keeping up, dropping", p.conn.RemoteAddr())
			delete(h.peers, p)
			close(p.send)
		}
	}
}

// Len is the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every viewer and stops listening to the session.
func (h *Hub) Close() {
	h.unsubscribe()
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		delete(h.peers, p)
		close(p.send)
	}
}

func (h *Hub) readPump(p *peer) {
	defer func() {
		h.remove(p)
		p.conn.Close()
	}()
	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var m Message
		if err := p.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[HUB] Viewer %s disconnected: %v", p.conn.RemoteAddr(), err)
			}
			return
		}
		if m.Type != TypeCommand || m.Command == nil {
			h.reply(p, Message{Type: TypeError, Error: "expected a command"})
			continue
		}
		log.Printf("[HUB] Received '%s' from %s", m.Command.Op, p.conn.RemoteAddr())
		if m.Command.Async() {
			go h.apply(p, *m.Command)
			continue
		}
		h.apply(p, *m.Command)
	}
}

func (h *Hub) apply(p *peer, cmd editor.Command) {
	if err := h.session.ApplyRemote(context.Background(), cmd); err != nil {
		h.reply(p, Message{Type: TypeError, Error: err.Error()})
	}
}

func (h *Hub) reply(p *peer, m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.peers[p] {
		return
	}
	select {
	case p.send <- m:
	default:
	}
}

func (h *Hub) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case m, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteJSON(m); err != nil {
				log.Printf("[HUB] Error sending to %s: %v", p.conn.RemoteAddr(), err)
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Serve listens on port until ctx is done.
func (h *Hub) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	log.Printf("[HOST] Websocket server listening on port %d", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
