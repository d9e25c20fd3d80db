package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"DesignBoard/internal/asset"
	"DesignBoard/internal/config"
	"DesignBoard/internal/export"
	"DesignBoard/internal/scene"

	"github.com/tdewolff/test"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Canvas.Preset = "Custom"
	s, err := New(cfg)
	test.Error(t, err)
	t.Cleanup(s.Close)
	return s
}

func depth(s *Session) int {
	past, _ := s.HistoryDepth()
	return past
}

func pngData(t *testing.T, w, h, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	test.Error(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	data := buf.Bytes()
	if size > len(data) {
		// trailing bytes after IEND are ignored by decoders
		data = append(data, make([]byte, size-len(data))...)
	}
	return data
}

func TestNewSession(t *testing.T) {
	s := newSession(t)
	w, h := s.Size()
	test.T(t, w, 800)
	test.T(t, h, 600)
	test.String(t, s.Background(), "#ffffff")
	test.T(t, depth(s), 0)
	test.That(t, !s.Selection().Selected())
	test.That(t, !s.CanUndo() && !s.CanRedo())
}

func TestAddShapes(t *testing.T) {
	s := newSession(t)
	id, err := s.AddRect()
	test.Error(t, err)
	sel := s.Selection()
	test.String(t, sel.ID, id)
	test.T(t, sel.Kind, scene.KindRect)
	test.Float(t, *sel.Props.X, 400)
	test.Float(t, *sel.Props.Y, 300)
	test.Float(t, *sel.Props.Width, 100)
	test.String(t, *sel.Props.Fill, "#4299e1")
	test.That(t, sel.OnCanvas)
	test.T(t, depth(s), 1)

	_, err = s.AddCircle()
	test.Error(t, err)
	test.Float(t, *s.Selection().Props.Radius, 50)

	id, err = s.AddText()
	test.Error(t, err)
	sel = s.Selection()
	test.String(t, *sel.Props.Text, "Edit this text")
	test.T(t, sel.Editing, Editing{ObjectID: id, SelectAll: true})
	test.T(t, depth(s), 3)
	test.T(t, len(s.Layers()), 3)

	test.Error(t, s.EndEditing())
	test.T(t, s.Selection().Editing, Editing{})
}

func TestDuplicate(t *testing.T) {
	s := newSession(t)
	id, err := s.AddRect()
	test.Error(t, err)
	test.Error(t, s.UpdateObjectProps(scene.Props{X: scene.Ptr(100.0), Y: scene.Ptr(100.0)}))
	before := *s.Objects()[0].(*scene.Rect)

	dup, err := s.DuplicateSelected()
	test.Error(t, err)
	test.That(t, dup != id, "fresh id")
	sel := s.Selection()
	test.String(t, sel.ID, dup)
	test.Float(t, *sel.Props.X, 120)
	test.Float(t, *sel.Props.Y, 120)
	test.T(t, len(s.Objects()), 2)
	test.T(t, depth(s), 3)

	objs := s.Objects()
	orig, ok := objs[0].(*scene.Rect)
	test.That(t, ok && orig.ID == id, "original stays below the copy")
	test.Float(t, orig.X, 100)
	test.Float(t, orig.Y, 100)
	test.T(t, *orig, before, "original unchanged")
	copied := objs[1].(*scene.Rect)
	copied.ID, copied.X, copied.Y = orig.ID, orig.X, orig.Y
	test.T(t, *copied, *orig, "copy differs only in id and position")
}

func TestNoSelectionIsNoop(t *testing.T) {
	s := newSession(t)
	_, err := s.AddRect()
	test.Error(t, err)
	test.Error(t, s.ClearSelection())
	before := depth(s)

	test.Error(t, s.DeleteSelected())
	dup, err := s.DuplicateSelected()
	test.Error(t, err)
	test.String(t, dup, "")
	test.Error(t, s.BringToFront())
	test.Error(t, s.UpdateObjectProps(scene.Props{Fill: scene.Ptr("#000000")}))

	test.T(t, len(s.Objects()), 1)
	test.T(t, depth(s), before)
}

func TestDeleteAndUndo(t *testing.T) {
	s := newSession(t)
	id, err := s.AddRect()
	test.Error(t, err)
	test.Error(t, s.DeleteSelected())
	test.T(t, len(s.Objects()), 0)
	test.That(t, !s.Selection().Selected())

	ok, err := s.Undo()
	test.Error(t, err)
	test.That(t, ok)
	objs := s.Objects()
	test.T(t, len(objs), 1)
	test.String(t, objs[0].Common().ID, id, "identity survives restore")
	test.That(t, !s.Selection().Selected(), "restore clears selection")
}

func TestRedoDiscardedByMutation(t *testing.T) {
	s := newSession(t)
	for i := 0; i < 3; i++ {
		_, err := s.AddRect()
		test.Error(t, err)
	}
	for i := 0; i < 2; i++ {
		ok, err := s.Undo()
		test.Error(t, err)
		test.That(t, ok)
	}
	test.That(t, s.CanRedo())
	_, err := s.AddCircle()
	test.Error(t, err)

	ok, err := s.Redo()
	test.Error(t, err)
	test.That(t, !ok)
	test.T(t, len(s.Objects()), 2)
}

func TestUndoRestoresEveryState(t *testing.T) {
	s := newSession(t)
	states := []scene.Checkpoint{s.State("").Checkpoint}
	steps := []func() error{
		func() error { _, err := s.AddRect(); return err },
		func() error { return s.UpdateObjectProps(scene.Props{Angle: scene.Ptr(45.0)}) },
		func() error { _, err := s.AddText(); return err },
		func() error { return s.SendToBack() },
		func() error { return s.SetBackground("#222222") },
		func() error { return s.SetCustomCanvasSize(640, 480) },
		func() error { return s.ClearCanvas() },
	}
	for _, step := range steps {
		test.Error(t, step())
		states = append(states, s.State("").Checkpoint)
	}
	test.T(t, depth(s), len(steps))

	for i := len(steps) - 1; i >= 0; i-- {
		ok, err := s.Undo()
		test.Error(t, err)
		test.That(t, ok)
		test.That(t, s.State("").Checkpoint.Equal(states[i]), "state", i)
	}
	for i := 1; i <= len(steps); i++ {
		ok, err := s.Redo()
		test.Error(t, err)
		test.That(t, ok)
		test.That(t, s.State("").Checkpoint.Equal(states[i]), "state", i)
	}
}

func TestReorder(t *testing.T) {
	s := newSession(t)
	a, _ := s.AddRect()
	b, _ := s.AddCircle()
	before := depth(s)

	// b is already front-most
	test.Error(t, s.BringForward())
	test.Error(t, s.BringToFront())
	test.T(t, depth(s), before, "boundary moves are not recorded")

	test.Error(t, s.SendBackward())
	test.T(t, depth(s), before+1)
	objs := s.Objects()
	test.String(t, objs[0].Common().ID, b)
	test.String(t, objs[1].Common().ID, a)

	test.That(t, errors.Is(s.Reorder(scene.Direction("sideways")), scene.ErrValidation))
}

func TestReorderNoopCheckpoint(t *testing.T) {
	cfg := config.Default()
	cfg.History.CheckpointNoopReorder = true
	s, err := New(cfg)
	test.Error(t, err)
	defer s.Close()

	_, err = s.AddRect()
	test.Error(t, err)
	test.Error(t, s.BringToFront())
	test.T(t, depth(s), 2)
}

func TestUpdateObjectProps(t *testing.T) {
	s := newSession(t)
	_, err := s.AddRect()
	test.Error(t, err)
	test.Error(t, s.UpdateObjectProps(scene.Props{Fill: scene.Ptr("#ff0000"), Angle: scene.Ptr(-90.0)}))
	sel := s.Selection()
	test.String(t, *sel.Props.Fill, "#ff0000")
	test.Float(t, *sel.Props.Angle, 270)
	d := depth(s)
	cp := s.State("").Checkpoint

	err = s.UpdateObjectProps(scene.Props{Fill: scene.Ptr("#00ff00"), FontSize: scene.Ptr(12.0)})
	test.That(t, errors.Is(err, scene.ErrInapplicableField))
	test.That(t, errors.Is(err, scene.ErrValidation))

	err = s.UpdateObjectProps(scene.Props{X: scene.Ptr(math.NaN())})
	test.That(t, errors.Is(err, scene.ErrValidation))
	err = s.UpdateObjectProps(scene.Props{StrokeWidth: scene.Ptr(25.0)})
	test.That(t, errors.Is(err, scene.ErrValidation))

	test.T(t, depth(s), d, "rejected updates record nothing")
	test.That(t, s.State("").Checkpoint.Equal(cp))
	test.String(t, *s.Selection().Props.Fill, "#ff0000")

	test.Error(t, s.UpdateObjectProps(scene.Props{}))
	test.T(t, depth(s), d, "empty update is a no-op")
}

func TestSetVisible(t *testing.T) {
	s := newSession(t)
	id, err := s.AddRect()
	test.Error(t, err)

	test.Error(t, s.SetVisible(id, false))
	test.That(t, !s.Selection().Selected(), "hiding clears selection")
	test.T(t, depth(s), 2)
	test.That(t, errors.Is(s.Select(id), ErrNotFound), "hidden objects are not selectable")

	test.Error(t, s.SetVisible(id, false))
	test.T(t, depth(s), 2, "unchanged visibility not recorded")

	_, err = s.Undo()
	test.Error(t, err)
	test.That(t, s.Objects()[0].Common().Visible)
	test.Error(t, s.Select(id))

	test.That(t, errors.Is(s.SetVisible("missing", true), ErrNotFound))
}

func TestCanvasSize(t *testing.T) {
	s := newSession(t)
	for _, size := range [][2]int{{0, 500}, {5000, 500}, {500, -1}} {
		err := s.SetCustomCanvasSize(size[0], size[1])
		test.That(t, errors.Is(err, scene.ErrValidation), size)
	}
	test.T(t, depth(s), 0)

	test.Error(t, s.SetCustomCanvasSize(1024, 768))
	w, h := s.Size()
	test.T(t, w, 1024)
	test.T(t, h, 768)
	test.T(t, depth(s), 1)

	test.Error(t, s.SetCanvasSize("instagram story"))
	w, h = s.Size()
	test.T(t, w, 1080)
	test.T(t, h, 1920)
	test.That(t, errors.Is(s.SetCanvasSize("Billboard"), scene.ErrValidation))
	test.T(t, depth(s), 2)
}

func TestBackgroundAndClear(t *testing.T) {
	s := newSession(t)
	test.That(t, errors.Is(s.SetBackground("red"), scene.ErrValidation))
	test.Error(t, s.SetBackground("#123456"))
	_, err := s.AddRect()
	test.Error(t, err)

	test.Error(t, s.ClearCanvas())
	test.T(t, len(s.Objects()), 0)
	test.String(t, s.Background(), "#123456", "background persists")
	test.T(t, depth(s), 3)
}

func TestUploadValidation(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	big := asset.File{Name: "big.png", MIME: "image/png", Data: pngData(t, 10, 10, 6<<20)}
	_, err := s.AddImage(ctx, asset.FromFile(big))
	test.That(t, errors.Is(err, asset.ErrTooLarge))
	test.That(t, errors.Is(err, asset.ErrAssetLoad))

	txt := asset.File{Name: "notes.txt", MIME: "text/plain", Data: []byte("hello")}
	_, err = s.AddImage(ctx, asset.FromFile(txt))
	test.That(t, errors.Is(err, asset.ErrUnsupportedType))

	test.T(t, len(s.Objects()), 0)
	test.T(t, depth(s), 0)

	ok := asset.File{Name: "ok.png", MIME: "image/png", Data: pngData(t, 400, 200, 2<<20)}
	id, err := s.AddImage(ctx, asset.FromFile(ok))
	test.Error(t, err)
	test.T(t, len(s.Objects()), 1)
	test.T(t, depth(s), 1)

	sel := s.Selection()
	test.String(t, sel.ID, id)
	test.T(t, sel.Kind, scene.KindImage)
	test.Float(t, *sel.Props.ScaleX, 1, "images are not scaled up")
	test.Float(t, *sel.Props.X, 400)
}

func TestDecodeFailure(t *testing.T) {
	s := newSession(t)
	bad := asset.File{Name: "bad.png", MIME: "image/png", Data: []byte("not an image")}
	_, err := s.AddImage(context.Background(), asset.FromFile(bad))
	test.That(t, errors.Is(err, asset.ErrAssetLoad))
	test.T(t, len(s.Objects()), 0)
	test.T(t, depth(s), 0)
}

func TestAddStickerFit(t *testing.T) {
	s := newSession(t)
	f := asset.File{Name: "s.png", MIME: "image/png", Data: pngData(t, 60, 30, 0)}
	_, err := s.AddSticker(context.Background(), asset.FromFile(f))
	test.Error(t, err)

	obj := s.Objects()[0].(*scene.Image)
	test.That(t, obj.Sticker)
	// 600 * 0.3 / 60
	test.Float(t, obj.ScaleX, 3)
	test.That(t, obj.Sticker)
	test.String(t, scene.DisplayName(obj), "Image")
}

func TestStaleDecode(t *testing.T) {
	data := pngData(t, 8, 8, 0)
	requested := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(requested)
		<-release
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	s := newSession(t)
	_, err := s.AddRect()
	test.Error(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.AddImage(context.Background(), asset.FromURL(srv.URL+"/slow.png"))
		done <- err
	}()
	<-requested
	test.Error(t, s.ClearCanvas())
	close(release)

	test.That(t, errors.Is(<-done, ErrStale))
	test.T(t, len(s.Objects()), 0)
	test.T(t, depth(s), 2)
}

func TestDecodeSurvivesUndo(t *testing.T) {
	data := pngData(t, 8, 8, 0)
	requested := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(requested)
		<-release
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	s := newSession(t)
	rect, err := s.AddRect()
	test.Error(t, err)
	_, err = s.AddCircle()
	test.Error(t, err)

	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		id, err := s.AddImage(context.Background(), asset.FromURL(srv.URL+"/slow.png"))
		done <- result{id, err}
	}()
	<-requested
	ok, err := s.Undo()
	test.Error(t, err)
	test.That(t, ok)
	close(release)

	r := <-done
	test.Error(t, r.err)
	objs := s.Objects()
	test.T(t, len(objs), 2, "image added on top of the undone scene")
	test.String(t, objs[0].Common().ID, rect)
	test.String(t, objs[1].Common().ID, r.id)
	test.T(t, depth(s), 2)
	test.That(t, !s.CanRedo(), "insert discards the redo branch")
}

func TestClosed(t *testing.T) {
	s := newSession(t)
	s.Close()
	_, err := s.AddRect()
	test.That(t, errors.Is(err, ErrClosed))
	_, err = s.Undo()
	test.That(t, errors.Is(err, ErrClosed))
	_, err = s.Export(export.PNG, 1)
	test.That(t, errors.Is(err, ErrClosed))
}

func TestSubscribe(t *testing.T) {
	s := newSession(t)
	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })

	_, err := s.AddRect()
	test.Error(t, err)
	test.Error(t, s.ClearSelection())
	_, err = s.Undo()
	test.Error(t, err)

	test.T(t, len(changes), 3)
	test.String(t, changes[0].Reason, "add_rect")
	test.That(t, changes[0].CanUndo && changes[0].Selection.Selected())
	test.T(t, len(changes[0].Layers), 1)
	test.String(t, changes[1].Reason, "select")
	test.String(t, changes[2].Reason, "undo")
	test.That(t, changes[2].CanRedo && !changes[2].CanUndo)

	unsubscribe()
	_, err = s.AddCircle()
	test.Error(t, err)
	test.T(t, len(changes), 3)
}

func TestCommandAsync(t *testing.T) {
	test.That(t, Command{Op: OpAddImage}.Async())
	test.That(t, Command{Op: OpAddSticker}.Async())
	for _, op := range []string{OpAddRect, OpUndo, OpRedo, OpDelete, OpClear, OpUpdate} {
		test.That(t, !Command{Op: op}.Async(), op)
	}
}

func TestApplyCommands(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	raw := []string{
		`{"op":"add_rect"}`,
		`{"op":"update","props":{"fill":"#00ff00","width":50}}`,
		`{"op":"duplicate"}`,
		`{"op":"reorder","direction":"back"}`,
		`{"op":"background","color":"#eeeeee"}`,
		`{"op":"canvas_size","width":300,"height":200}`,
	}
	for _, r := range raw {
		var cmd Command
		test.Error(t, json.Unmarshal([]byte(r), &cmd))
		test.Error(t, s.Apply(ctx, cmd), r)
	}
	objs := s.Objects()
	test.T(t, len(objs), 2)
	test.Float(t, objs[0].(*scene.Rect).Width, 50)
	test.String(t, s.Background(), "#eeeeee")
	test.T(t, depth(s), len(raw))

	test.That(t, errors.Is(s.Apply(ctx, Command{Op: "explode"}), ErrUnknownCommand))
	test.That(t, errors.Is(s.Apply(ctx, Command{Op: OpReorder, Direction: "up"}), scene.ErrValidation))
	test.That(t, errors.Is(s.Apply(ctx, Command{Op: OpUpdate}), scene.ErrValidation))
	test.That(t, errors.Is(s.Apply(ctx, Command{Op: OpAddImage}), scene.ErrValidation))

	err := s.ApplyRemote(ctx, Command{Op: OpAddImage, URL: "/etc/passwd"})
	test.That(t, errors.Is(err, asset.ErrAssetLoad))
	test.T(t, depth(s), len(raw))

	test.Error(t, s.Apply(ctx, Command{Op: OpUndo}))
	w, _ := s.Size()
	test.T(t, w, 800)
}

func TestExport(t *testing.T) {
	s := newSession(t)
	_, err := s.AddCircle()
	test.Error(t, err)
	d := depth(s)

	data, err := s.Export(export.PNG, 1)
	test.Error(t, err)
	img, format, err := image.Decode(bytes.NewReader(data))
	test.Error(t, err)
	test.String(t, format, "png")
	test.T(t, img.Bounds().Dx(), 800)
	test.T(t, img.Bounds().Dy(), 600)

	data, err = s.Export(export.JPEG, 0.9)
	test.Error(t, err)
	_, format, err = image.Decode(bytes.NewReader(data))
	test.Error(t, err)
	test.String(t, format, "jpeg")

	data, err = s.Export(export.PDF, 1)
	test.Error(t, err)
	test.That(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = s.Export(export.Format("svg"), 1)
	test.That(t, err != nil)
	test.T(t, depth(s), d, "export does not record")
}
