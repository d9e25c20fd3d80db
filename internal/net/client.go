package net

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"DesignBoard/internal/editor"
	"DesignBoard/internal/export"
	"DesignBoard/internal/render"
	"DesignBoard/internal/scene"
)

// Client is a remote viewer. It mirrors the host's scene from scene
// messages and forwards commands to the host.
type Client struct {
	conn     *websocket.Conn
	mirror   *scene.Adapter
	renderer *render.Renderer

	last    Message
	subs    map[int]func(editor.Change)
	nextSub int
	errs    chan error
	done    chan struct{}

	mu      sync.Mutex
	writeMu sync.Mutex
}

// Address strips the share-link scheme, "designboard://10.0.0.2:8888/"
// becoming "10.0.0.2:8888".
func Address(link, scheme string) string {
	return strings.TrimSuffix(strings.TrimPrefix(link, scheme), "/")
}

// Dial connects to the hub at addr (host:port) and waits for the first
// scene message.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+addr+"/ws", nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Client{
		conn:     conn,
		mirror:   scene.NewAdapter(scene.CanvasSize{Width: 1, Height: 1}, scene.DefaultBackground),
		renderer: render.NewRenderer(),
		subs:     make(map[int]func(editor.Change)),
		errs:     make(chan error, sendBuffer),
		done:     make(chan struct{}),
	}
	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read initial scene: %w", err)
	}
	if err := c.handle(first); err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("Client connected successfully as %s", conn.LocalAddr())
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			log.Printf("Disconnected from host: %v", err)
			return
		}
		if err := c.handle(m); err != nil {
			log.Printf("Ignoring message from host: %v", err)
		}
	}
}

func (c *Client) handle(m Message) error {
	switch m.Type {
	case TypeError:
		select {
		case c.errs <- errors.New(m.Error):
		default:
		}
		return nil
	case TypeScene:
	default:
		return fmt.Errorf("unexpected message type %q", m.Type)
	}
	if m.Checkpoint == nil {
		return fmt.Errorf("scene message without checkpoint")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m.Seq < c.last.Seq {
		return nil
	}
	if err := c.mirror.Deserialize(*m.Checkpoint); err != nil {
		return err
	}
	if m.Selection != nil && m.Selection.ID != "" {
		c.mirror.SetActive(m.Selection.ID)
	}
	c.last = m
	ch := c.changeLocked()
	for _, fn := range c.subs {
		fn(ch)
	}
	return nil
}

func (c *Client) changeLocked() editor.Change {
	w, h := c.mirror.Size()
	ch := editor.Change{
		Seq:        c.last.Seq,
		Reason:     c.last.Reason,
		Layers:     c.mirror.Layers(),
		Width:      w,
		Height:     h,
		Background: c.mirror.Background(),
		CanUndo:    c.last.CanUndo,
		CanRedo:    c.last.CanRedo,
	}
	if c.last.Checkpoint != nil {
		ch.Checkpoint = *c.last.Checkpoint
	}
	if c.last.Selection != nil {
		ch.Selection = *c.last.Selection
	}
	return ch
}

// Apply sends cmd to the host. The resulting scene arrives as a Change;
// a rejection arrives on Errors.
func (c *Client) Apply(_ context.Context, cmd editor.Command) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(Message{Type: TypeCommand, Command: &cmd}); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Op, err)
	}
	return nil
}

// Errors delivers command rejections reported by the host.
func (c *Client) Errors() <-chan error { return c.errs }

// Done is closed when the connection to the host ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Subscribe registers fn for every scene update. fn runs on the reader
// goroutine and must not call Subscribe or State.
func (c *Client) Subscribe(fn func(editor.Change)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// State is the mirrored state as of the last scene message.
func (c *Client) State(reason string) editor.Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := c.changeLocked()
	ch.Reason = reason
	return ch
}

// Objects returns the mirrored objects in paint order.
func (c *Client) Objects() []scene.Object { return c.mirror.Objects() }

// Export renders the mirrored scene locally.
func (c *Client) Export(format export.Format, quality float64) ([]byte, error) {
	img, err := c.render()
	if err != nil {
		return nil, err
	}
	return export.Encode(img, format, quality)
}

func (c *Client) render() (image.Image, error) {
	w, h := c.mirror.Size()
	return c.renderer.Render(c.mirror.Objects(), w, h, c.mirror.Background())
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}
