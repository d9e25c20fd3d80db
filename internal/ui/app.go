package ui

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"DesignBoard/internal/asset"
	"DesignBoard/internal/editor"
	"DesignBoard/internal/export"
)

// Options configure the desktop shell.
type Options struct {
	Title     string
	ShareLink string
	ExportDir string
	Quality   float64
}

// RunApp shows the editor window for b and blocks until it is closed.
func RunApp(b Backend, opts Options) {
	myApp := app.New()
	myWindow := myApp.NewWindow(opts.Title)
	myWindow.Resize(fyne.NewSize(1280, 800))

	status := widget.NewLabel("Ready")
	if opts.ShareLink != "" {
		status.SetText("Share: " + opts.ShareLink)
	}
	ctl := newController(b, status)
	defer ctl.stop()

	board := NewBoardWidget(ctl)
	layers := newLayerPanel(ctl)
	props := newPropertyPanel(ctl)
	toolbar := NewToolbar(ctl, myWindow)

	show := func(c editor.Change) {
		board.Update(c)
		layers.update(c.Layers)
		props.update(c.Selection)
	}
	unsubscribe := b.Subscribe(func(c editor.Change) { fyne.Do(func() { show(c) }) })
	defer unsubscribe()
	show(b.State("open"))

	side := container.NewHSplit(layers.object(), props.object())
	side.Offset = 0.4
	main := container.NewHSplit(board, side)
	main.Offset = 0.7
	myWindow.SetContent(container.NewBorder(toolbar, status, nil, nil, main))
	myWindow.SetMainMenu(fyne.NewMainMenu(exportMenu(b, ctl, opts), insertMenu(ctl, myWindow)))
	addShortcuts(myWindow, ctl)

	myWindow.ShowAndRun()
}

func exportMenu(b Backend, ctl *controller, opts Options) *fyne.Menu {
	item := func(f export.Format) *fyne.MenuItem {
		return fyne.NewMenuItem("Export "+string(f), func() {
			go func() {
				data, err := b.Export(f, opts.Quality)
				if err == nil {
					var path string
					path, err = export.Download(opts.ExportDir, f, data)
					if err == nil {
						ctl.setStatus("Exported " + path)
						return
					}
				}
				log.Printf("[UI] Export %s failed: %v", f, err)
				ctl.setStatus(fmt.Sprintf("Export failed: %v", err))
			}()
		})
	}
	return fyne.NewMenu("File", item(export.PNG), item(export.JPEG), item(export.PDF))
}

func insertMenu(ctl *controller, w fyne.Window) *fyne.Menu {
	return fyne.NewMenu("Insert",
		fyne.NewMenuItem("Image from file…", func() { openImage(ctl, w, editor.OpAddImage) }),
		fyne.NewMenuItem("Image from URL…", func() { openURL(ctl, w, editor.OpAddImage) }),
		fyne.NewMenuItem("Sticker from file…", func() { openImage(ctl, w, editor.OpAddSticker) }),
		fyne.NewMenuItem("Sticker from URL…", func() { openURL(ctl, w, editor.OpAddSticker) }),
	)
}

func addShortcuts(w fyne.Window, ctl *controller) {
	bind := func(key fyne.KeyName, mod fyne.KeyModifier, op string) {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) {
			ctl.apply(editor.Command{Op: op})
		})
	}
	bind(fyne.KeyZ, fyne.KeyModifierShortcutDefault, editor.OpUndo)
	bind(fyne.KeyY, fyne.KeyModifierShortcutDefault, editor.OpRedo)
	bind(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, editor.OpRedo)
	bind(fyne.KeyD, fyne.KeyModifierShortcutDefault, editor.OpDuplicate)
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			ctl.apply(editor.Command{Op: editor.OpDelete})
		case fyne.KeyEscape:
			ctl.apply(editor.Command{Op: editor.OpClearSelection})
		}
	})
}

const maxDialogRead = 64 << 20

// openImage uploads a local file. The backend validates type and size.
func openImage(ctl *controller, w fyne.Window, op string) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		defer r.Close()
		data, err := io.ReadAll(io.LimitReader(r, maxDialogRead))
		if err != nil {
			ctl.setStatus(fmt.Sprintf("Could not read %s: %v", r.URI().Name(), err))
			return
		}
		mime := r.URI().MimeType()
		if mime == "" {
			mime = http.DetectContentType(data)
		}
		ctl.apply(editor.Command{Op: op, File: &asset.File{Name: r.URI().Name(), MIME: mime, Data: data}})
	}, w)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}))
	d.Show()
}

// openURL inserts an asset fetched from a URL.
func openURL(ctl *controller, w fyne.Window, op string) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://…")
	dialog.ShowForm("Insert from URL", "Insert", "Cancel", []*widget.FormItem{widget.NewFormItem("URL", entry)}, func(ok bool) {
		if ok && entry.Text != "" {
			ctl.apply(editor.Command{Op: op, URL: entry.Text})
		}
	}, w)
}
