package net

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tdewolff/test"

	"DesignBoard/internal/config"
	"DesignBoard/internal/editor"
	"DesignBoard/internal/export"
)

func startHub(t *testing.T) (*editor.Session, *Hub, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Canvas.Preset = "Custom"
	s, err := editor.New(cfg)
	test.Error(t, err)
	h := NewHub(s)
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		h.Close()
		srv.Close()
		s.Close()
	})
	return s, h, strings.TrimPrefix(srv.URL, "http://")
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var m Message
	test.Error(t, conn.ReadJSON(&m))
	return m
}

func TestHubRelaysCommands(t *testing.T) {
	s, _, addr := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	test.Error(t, err)
	defer conn.Close()

	m := readMessage(t, conn)
	test.String(t, m.Type, TypeScene)
	test.String(t, m.Reason, "connect")
	test.That(t, m.Checkpoint != nil && !m.Checkpoint.IsZero())
	test.That(t, !m.CanUndo)

	test.Error(t, conn.WriteJSON(Message{Type: TypeCommand, Command: &editor.Command{Op: editor.OpAddRect}}))
	m = readMessage(t, conn)
	test.String(t, m.Reason, "add_rect")
	test.That(t, m.CanUndo)
	test.That(t, m.Selection != nil && m.Selection.Selected())
	test.T(t, len(s.Objects()), 1)

	test.Error(t, conn.WriteJSON(Message{Type: TypeCommand, Command: &editor.Command{Op: "explode"}}))
	m = readMessage(t, conn)
	test.String(t, m.Type, TypeError)
	test.That(t, strings.Contains(m.Error, "unknown command"), m.Error)

	test.Error(t, conn.WriteJSON(Message{Type: TypeScene}))
	m = readMessage(t, conn)
	test.String(t, m.Type, TypeError)

	// local operations reach viewers too
	test.Error(t, s.SetBackground("#000000"))
	m = readMessage(t, conn)
	test.String(t, m.Reason, "background")
}

func TestHubImageDoesNotBlockCommands(t *testing.T) {
	var buf bytes.Buffer
	test.Error(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	requested := make(chan struct{})
	release := make(chan struct{})
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(requested)
		<-release
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer img.Close()
	defer close(release)

	s, _, addr := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	test.Error(t, err)
	defer conn.Close()
	readMessage(t, conn)

	test.Error(t, conn.WriteJSON(Message{Type: TypeCommand, Command: &editor.Command{Op: editor.OpAddImage, URL: img.URL + "/slow.png"}}))
	<-requested
	test.Error(t, conn.WriteJSON(Message{Type: TypeCommand, Command: &editor.Command{Op: editor.OpAddRect}}))
	m := readMessage(t, conn)
	test.String(t, m.Reason, "add_rect", "rect applied while the image is pending")
	test.T(t, len(s.Objects()), 1)
}

func TestClientMirrorsHost(t *testing.T) {
	s, h, addr := startHub(t)
	c, err := Dial(context.Background(), addr)
	test.Error(t, err)
	defer c.Close()

	w := c.State("").Width
	test.T(t, w, 800)

	updates := make(chan editor.Change, 8)
	c.Subscribe(func(ch editor.Change) { updates <- ch })

	test.Error(t, c.Apply(context.Background(), editor.Command{Op: editor.OpAddCircle}))
	select {
	case ch := <-updates:
		test.String(t, ch.Reason, "add_circle")
		test.T(t, len(ch.Layers), 1)
		test.That(t, ch.Layers[0].Active)
		test.That(t, ch.CanUndo)
	case <-time.After(5 * time.Second):
		t.Fatal("no update from host")
	}
	test.T(t, len(c.Objects()), 1)
	test.T(t, len(s.Objects()), 1)
	test.T(t, h.Len(), 1)

	test.Error(t, c.Apply(context.Background(), editor.Command{Op: editor.OpAddImage, URL: "file:///etc/hosts"}))
	select {
	case err := <-c.Errors():
		test.That(t, err != nil)
	case <-time.After(5 * time.Second):
		t.Fatal("no rejection from host")
	}
	test.T(t, len(s.Objects()), 1)

	data, err := c.Export(export.PNG, 1)
	test.Error(t, err)
	test.That(t, len(data) > 0)
}

func TestAddress(t *testing.T) {
	test.String(t, Address("designboard://10.0.0.2:8888/", config.CustomURLScheme), "10.0.0.2:8888")
	test.String(t, Address("10.0.0.2:8888", config.CustomURLScheme), "10.0.0.2:8888")
}

func TestHostIP(t *testing.T) {
	for _, probe := range []string{ProbeAddr, "bad probe"} {
		ip := HostIP(probe)
		test.T(t, strings.Count(ip, "."), 3, probe, ip)
	}
}
