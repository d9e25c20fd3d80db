package ui

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"DesignBoard/internal/editor"
	"DesignBoard/internal/scene"
)

// palette offered for fills and the background.
var palette = []string{"#000000", "#ffffff", "#e53e3e", "#38a169", "#4299e1", "#ed8936", "#ecc94b", "#805ad5"}

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	c, err := scene.ParseColor(s.Hex)
	if err != nil {
		c = color.NRGBA{A: 255}
	}
	rect := canvas.NewRectangle(c)
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

func swatches(onTapped func(string)) *fyne.Container {
	box := container.NewHBox()
	for _, hex := range palette {
		box.Add(newColorSwatch(hex, onTapped))
	}
	return box
}

func presetNames() []string {
	names := make([]string, len(scene.Presets))
	for i, p := range scene.Presets {
		names[i] = p.Name
	}
	return names
}

// NewToolbar builds the insert, arrange and history controls.
func NewToolbar(ctl *controller, w fyne.Window) fyne.CanvasObject {
	op := func(name string) func() {
		return func() { ctl.apply(editor.Command{Op: name}) }
	}
	reorder := func(d scene.Direction) func() {
		return func() { ctl.apply(editor.Command{Op: editor.OpReorder, Direction: string(d)}) }
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.CheckButtonIcon(), op(editor.OpAddRect)),
		widget.NewToolbarAction(theme.RadioButtonIcon(), op(editor.OpAddCircle)),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), op(editor.OpAddText)),
		widget.NewToolbarAction(theme.FileImageIcon(), func() { openImage(ctl, w, editor.OpAddImage) }),
		widget.NewToolbarAction(theme.MediaPhotoIcon(), func() { openURL(ctl, w, editor.OpAddSticker) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), op(editor.OpDuplicate)),
		widget.NewToolbarAction(theme.DeleteIcon(), op(editor.OpDelete)),
		widget.NewToolbarAction(theme.MoveUpIcon(), reorder(scene.Forward)),
		widget.NewToolbarAction(theme.MoveDownIcon(), reorder(scene.Backward)),
		widget.NewToolbarAction(theme.UploadIcon(), reorder(scene.Front)),
		widget.NewToolbarAction(theme.DownloadIcon(), reorder(scene.Back)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), op(editor.OpUndo)),
		widget.NewToolbarAction(theme.ContentRedoIcon(), op(editor.OpRedo)),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			dialog.ShowConfirm("Clear canvas", "Remove every object?", func(ok bool) {
				if ok {
					ctl.apply(editor.Command{Op: editor.OpClear})
				}
			}, w)
		}),
	)

	fill := swatches(func(hex string) {
		ctl.apply(editor.Command{Op: editor.OpUpdate, Props: &scene.Props{Fill: &hex}})
	})
	background := swatches(func(hex string) {
		ctl.apply(editor.Command{Op: editor.OpBackground, Color: hex})
	})

	size := widget.NewSelect(presetNames(), nil)
	size.PlaceHolder = "Canvas size"
	size.OnChanged = func(name string) {
		if name == "Custom" {
			customSize(ctl, w)
			return
		}
		ctl.apply(editor.Command{Op: editor.OpCanvasPreset, Preset: name})
	}

	return container.NewVBox(
		container.NewHBox(tb, layout.NewSpacer(), widget.NewLabel("Canvas:"), size),
		container.NewHBox(
			widget.NewLabel("Fill:"), fill,
			widget.NewSeparator(),
			widget.NewLabel("Background:"), background,
		),
	)
}

func customSize(ctl *controller, w fyne.Window) {
	width, height := widget.NewEntry(), widget.NewEntry()
	width.SetPlaceHolder("800")
	height.SetPlaceHolder("600")
	items := []*widget.FormItem{
		widget.NewFormItem("Width", width),
		widget.NewFormItem("Height", height),
	}
	dialog.ShowForm("Custom size", "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		wv, err1 := strconv.Atoi(width.Text)
		hv, err2 := strconv.Atoi(height.Text)
		if err1 != nil || err2 != nil {
			ctl.setStatus("Canvas size must be whole numbers")
			return
		}
		ctl.apply(editor.Command{Op: editor.OpCanvasSize, Width: wv, Height: hv})
	}, w)
}
