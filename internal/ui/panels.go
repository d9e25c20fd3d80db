package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"DesignBoard/internal/editor"
	"DesignBoard/internal/scene"
)

// layerPanel lists objects top-most first with a visibility toggle.
type layerPanel struct {
	ctl    *controller
	layers []scene.Layer
	list   *widget.List
}

func newLayerPanel(ctl *controller) *layerPanel {
	p := &layerPanel{ctl: ctl}
	p.list = widget.NewList(
		func() int { return len(p.layers) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewCheck("", nil), widget.NewLabel("layer"))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(p.layers) {
				return
			}
			l := p.layers[id]
			row := o.(*fyne.Container)
			check := row.Objects[0].(*widget.Check)
			check.OnChanged = nil
			check.SetChecked(l.Visible)
			check.OnChanged = func(v bool) {
				p.ctl.apply(editor.Command{Op: editor.OpSetVisible, ID: l.ID, Visible: &v})
			}
			name := l.Name
			if l.Active {
				name = "▸ " + name
			}
			row.Objects[1].(*widget.Label).SetText(name)
		},
	)
	p.list.OnSelected = func(id widget.ListItemID) {
		if id < len(p.layers) {
			p.ctl.apply(editor.Command{Op: editor.OpSelect, ID: p.layers[id].ID})
		}
		p.list.UnselectAll()
	}
	return p
}

func (p *layerPanel) update(layers []scene.Layer) {
	p.layers = layers
	p.list.Refresh()
}

func (p *layerPanel) object() fyne.CanvasObject {
	return container.NewBorder(widget.NewLabelWithStyle("Layers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil, nil, nil, p.list)
}

// propertyPanel edits the active object. Only fields that apply to its
// variant are shown.
type propertyPanel struct {
	ctl  *controller
	box  *fyne.Container
	last editor.PropertySnapshot
}

func newPropertyPanel(ctl *controller) *propertyPanel {
	return &propertyPanel{ctl: ctl, box: container.NewVBox(widget.NewLabel("Nothing selected"))}
}

func (p *propertyPanel) object() fyne.CanvasObject { return container.NewVScroll(p.box) }

func (p *propertyPanel) update(sel editor.PropertySnapshot) {
	p.last = sel
	if !sel.Selected() {
		p.box.Objects = []fyne.CanvasObject{widget.NewLabel("Nothing selected")}
		p.box.Refresh()
		return
	}

	form := widget.NewForm()
	for _, f := range sel.Fields {
		form.Append(label(f), p.input(sel, f))
	}
	title := widget.NewLabelWithStyle(fmt.Sprintf("%s (%s)", sel.Name, sel.Kind), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	objs := []fyne.CanvasObject{title, form}
	if !sel.OnCanvas {
		objs = append(objs, widget.NewLabel("Outside the canvas"))
	}
	p.box.Objects = objs
	p.box.Refresh()
}

func (p *propertyPanel) send(f scene.Field, value string) {
	props, err := propsFor(f, value)
	if err != nil {
		p.ctl.setStatus(err.Error())
		return
	}
	p.ctl.apply(editor.Command{Op: editor.OpUpdate, Props: &props})
}

func (p *propertyPanel) input(sel editor.PropertySnapshot, f scene.Field) fyne.CanvasObject {
	value := formatValue(sel.Props, f)
	switch inputFor(f) {
	case inputBool:
		c := widget.NewCheck("", nil)
		c.SetChecked(value == "true")
		c.OnChanged = func(v bool) { p.send(f, fmt.Sprint(v)) }
		return c
	case inputChoice:
		s := widget.NewSelect(choices(f), nil)
		s.SetSelected(value)
		s.OnChanged = func(v string) { p.send(f, v) }
		return s
	case inputFilters:
		return p.filters(sel)
	}
	var e *widget.Entry
	if f == scene.FieldText {
		e = widget.NewMultiLineEntry()
	} else {
		e = widget.NewEntry()
	}
	e.SetText(value)
	e.OnSubmitted = func(v string) { p.send(f, v) }
	return e
}

func (p *propertyPanel) filters(sel editor.PropertySnapshot) fyne.CanvasObject {
	var current []scene.Filter
	if sel.Props.Filters != nil {
		current = *sel.Props.Filters
	}
	push := func(next []scene.Filter) {
		p.ctl.apply(editor.Command{Op: editor.OpUpdate, Props: &scene.Props{Filters: &next}})
	}

	box := container.NewVBox()
	for _, t := range []scene.FilterType{scene.FilterGrayscale, scene.FilterSepia, scene.FilterInvert} {
		_, on := hasFilter(current, t)
		c := widget.NewCheck(string(t), nil)
		c.SetChecked(on)
		c.OnChanged = func(v bool) { push(toggleFilter(current, t, v)) }
		box.Add(c)
	}
	for _, t := range []scene.FilterType{scene.FilterBrightness, scene.FilterContrast} {
		f, _ := hasFilter(current, t)
		s := widget.NewSlider(-1, 1)
		s.Step = 0.05
		s.SetValue(f.Value)
		s.OnChangeEnded = func(v float64) { push(setFilterValue(current, t, v)) }
		box.Add(container.NewBorder(nil, nil, widget.NewLabel(string(t)), nil, s))
	}
	return box
}
