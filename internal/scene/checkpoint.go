package scene

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

const checkpointVersion = 1

// Checkpoint is an immutable serialized scene. The zero value is empty and
// does not decode.
type Checkpoint struct {
	data []byte
}

// CheckpointFromBytes wraps a copy of b. It does not validate the payload;
// Deserialize does.
func CheckpointFromBytes(b []byte) Checkpoint {
	return Checkpoint{data: bytes.Clone(b)}
}

// Bytes returns a copy of the encoded payload.
func (c Checkpoint) Bytes() []byte { return bytes.Clone(c.data) }

func (c Checkpoint) Len() int { return len(c.data) }

func (c Checkpoint) IsZero() bool { return len(c.data) == 0 }

func (c Checkpoint) Equal(o Checkpoint) bool { return bytes.Equal(c.data, o.data) }

// Digest is the hex SHA-256 of the payload.
func (c Checkpoint) Digest() string {
	sum := sha256.Sum256(c.data)
	return hex.EncodeToString(sum[:])
}

// MarshalJSON embeds the payload verbatim.
func (c Checkpoint) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte("null"), nil
	}
	return bytes.Clone(c.data), nil
}

func (c *Checkpoint) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		c.data = nil
		return nil
	}
	c.data = bytes.Clone(b)
	return nil
}

type document struct {
	Version    int        `json:"version"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Background string     `json:"background"`
	Objects    []envelope `json:"objects"`
}

type envelope struct {
	Type  Kind            `json:"type"`
	Props json.RawMessage `json:"props"`
}

func encode(width, height int, background string, objects []Object) (Checkpoint, error) {
	doc := document{
		Version:    checkpointVersion,
		Width:      width,
		Height:     height,
		Background: background,
		Objects:    make([]envelope, 0, len(objects)),
	}
	for _, obj := range objects {
		raw, err := json.Marshal(obj)
		if err != nil {
			return Checkpoint{}, fmt.Errorf("%w: object %s: %v", ErrSerialization, obj.Common().ID, err)
		}
		doc.Objects = append(doc.Objects, envelope{Type: obj.Kind(), Props: raw})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return Checkpoint{data: data}, nil
}

type decoded struct {
	width, height int
	background    string
	objects       []Object
}

func decode(c Checkpoint) (decoded, error) {
	var doc document
	if err := strictUnmarshal(c.data, &doc); err != nil {
		return decoded{}, corrupt("%v", err)
	}
	if doc.Version != checkpointVersion {
		return decoded{}, corrupt("unsupported version %d", doc.Version)
	}
	if doc.Width <= 0 || doc.Height <= 0 || doc.Width > MaxCanvasDimension || doc.Height > MaxCanvasDimension {
		return decoded{}, corrupt("bad canvas size %dx%d", doc.Width, doc.Height)
	}
	if _, err := ParseColor(doc.Background); err != nil {
		return decoded{}, corrupt("background: %v", err)
	}

	out := decoded{width: doc.Width, height: doc.Height, background: doc.Background}
	seen := make(map[string]bool, len(doc.Objects))
	for i, env := range doc.Objects {
		obj, err := decodeObject(env)
		if err != nil {
			return decoded{}, corrupt("object %d: %v", i, err)
		}
		id := obj.Common().ID
		if seen[id] {
			return decoded{}, corrupt("object %d: %v %s", i, ErrDuplicateID, id)
		}
		seen[id] = true
		out.objects = append(out.objects, obj)
	}
	return out, nil
}

func decodeObject(env envelope) (Object, error) {
	var obj Object
	switch env.Type {
	case KindRect:
		obj = &Rect{}
	case KindCircle:
		obj = &Circle{}
	case KindText:
		obj = &Text{}
	case KindImage:
		obj = &Image{}
	default:
		return nil, fmt.Errorf("unknown type %q", env.Type)
	}
	if len(env.Props) == 0 {
		return nil, fmt.Errorf("missing props")
	}
	if err := strictUnmarshal(env.Props, obj); err != nil {
		return nil, err
	}
	if err := obj.validate(); err != nil {
		return nil, err
	}
	return obj, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data")
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptCheckpoint, fmt.Sprintf(format, args...))
}
