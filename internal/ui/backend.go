// Package ui is the fyne desktop shell: toolbar, canvas preview, layer list
// and property panel. It drives a Backend, either the local session or a
// connection to a remote host.
package ui

import (
	"context"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"DesignBoard/internal/editor"
	"DesignBoard/internal/export"
)

// Backend is what the shell edits.
type Backend interface {
	Apply(ctx context.Context, cmd editor.Command) error
	Subscribe(fn func(editor.Change)) (unsubscribe func())
	State(reason string) editor.Change
	Export(format export.Format, quality float64) ([]byte, error)
}

// controller serializes commands from every widget onto one worker so they
// reach the backend in the order they were issued. Asset inserts leave the
// worker while they fetch and decode.
type controller struct {
	backend Backend
	queue   chan editor.Command
	status  *widget.Label
}

func newController(b Backend, status *widget.Label) *controller {
	c := &controller{backend: b, queue: make(chan editor.Command, 64), status: status}
	go c.run()
	return c
}

func (c *controller) run() {
	for cmd := range c.queue {
		if cmd.Async() {
			go c.exec(cmd)
			continue
		}
		c.exec(cmd)
	}
}

func (c *controller) exec(cmd editor.Command) {
	if err := c.backend.Apply(context.Background(), cmd); err != nil {
		log.Printf("[UI] %s failed: %v", cmd.Op, err)
		c.setStatus(err.Error())
	}
}

func (c *controller) apply(cmd editor.Command) {
	select {
	case c.queue <- cmd:
	default:
		c.setStatus("Busy, " + cmd.Op + " dropped")
	}
}

func (c *controller) setStatus(text string) {
	fyne.Do(func() { c.status.SetText(text) })
}

func (c *controller) stop() { close(c.queue) }
