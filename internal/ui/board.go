package ui

import (
	"image"
	"image/color"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"DesignBoard/internal/editor"
	"DesignBoard/internal/render"
	"DesignBoard/internal/scene"
)

// BoardWidget previews the design. Taps select, drags move the active
// object; the move is committed as one update when the drag ends.
type BoardWidget struct {
	widget.BaseWidget
	ctl      *controller
	mirror   *scene.Adapter
	renderer *render.Renderer
	full     image.Image

	dragID     string
	dragOrigin [2]float64
	dragDelta  fyne.Delta

	mu sync.RWMutex
}

var _ fyne.Tappable = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)

func NewBoardWidget(ctl *controller) *BoardWidget {
	b := &BoardWidget{
		ctl:      ctl,
		mirror:   scene.NewAdapter(scene.CanvasSize{Width: 1, Height: 1}, scene.DefaultBackground),
		renderer: render.NewRenderer(),
	}
	b.ExtendBaseWidget(b)
	return b
}

// Update re-renders from a change. It must run on the fyne thread.
func (b *BoardWidget) Update(c editor.Change) {
	if err := b.mirror.Deserialize(c.Checkpoint); err != nil {
		log.Printf("[UI] Preview not updated: %v", err)
		return
	}
	if c.Selection.ID != "" {
		b.mirror.SetActive(c.Selection.ID)
	}
	w, h := b.mirror.Size()
	img, err := b.renderer.Render(b.mirror.Objects(), w, h, b.mirror.Background())
	if err != nil {
		log.Printf("[UI] Render failed: %v", err)
		return
	}
	b.mu.Lock()
	b.full = img
	b.mu.Unlock()
	b.Refresh()
}

func (b *BoardWidget) canvasSize() (int, int) { return b.mirror.Size() }

func (b *BoardWidget) Tapped(e *fyne.PointEvent) {
	w, h := b.canvasSize()
	x, y, ok := toCanvas(e.Position, b.Size(), w, h)
	if !ok {
		return
	}
	if id, hit := b.mirror.ObjectAt(x, y); hit {
		b.ctl.apply(editor.Command{Op: editor.OpSelect, ID: id})
		return
	}
	b.ctl.apply(editor.Command{Op: editor.OpClearSelection})
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.dragID == "" {
		w, h := b.canvasSize()
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		x, y, ok := toCanvas(start, b.Size(), w, h)
		if !ok {
			return
		}
		id, hit := b.mirror.ObjectAt(x, y)
		if !hit {
			return
		}
		obj, _ := b.mirror.Get(id)
		b.dragID = id
		b.dragOrigin = [2]float64{obj.Common().X, obj.Common().Y}
		b.dragDelta = fyne.Delta{}
		if active, _ := b.mirror.Active(); active != id {
			b.ctl.apply(editor.Command{Op: editor.OpSelect, ID: id})
		}
	}
	b.dragDelta.DX += e.Dragged.DX
	b.dragDelta.DY += e.Dragged.DY
}

func (b *BoardWidget) DragEnd() {
	if b.dragID == "" {
		return
	}
	w, h := b.canvasSize()
	s := fitFactor(b.Size(), w, h)
	x := b.dragOrigin[0] + float64(b.dragDelta.DX)/s
	y := b.dragOrigin[1] + float64(b.dragDelta.DY)/s
	b.ctl.apply(editor.Command{Op: editor.OpUpdate, Props: &scene.Props{X: &x, Y: &y}})
	b.dragID = ""
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(color.NRGBA{R: 245, G: 246, B: 248, A: 255})
	r.raster = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	r.raster.FillMode = canvas.ImageFillContain
	r.raster.ScaleMode = canvas.ImageScaleSmooth
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	raster     *canvas.Image
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.raster}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	w, h := r.board.canvasSize()
	s := fitFactor(size, w, h)
	pw, ph := float32(float64(w)*s), float32(float64(h)*s)
	r.raster.Resize(fyne.NewSize(pw, ph))
	r.raster.Move(fyne.NewPos((size.Width-pw)/2, (size.Height-ph)/2))
}

func (r *boardWidgetRenderer) Refresh() {
	r.board.mu.RLock()
	full := r.board.full
	r.board.mu.RUnlock()
	if full != nil {
		w, h := r.board.canvasSize()
		r.raster.Image = scaleImage(full, fitFactor(r.board.Size(), w, h))
	}
	r.Layout(r.board.Size())
	r.raster.Refresh()
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardWidgetRenderer) Destroy() {}
