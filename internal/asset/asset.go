// Package asset validates, fetches and decodes images and stickers placed
// on the canvas.
package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes is the upload size limit.
const DefaultMaxBytes = 5 << 20

var (
	// ErrAssetLoad is returned when an asset cannot be fetched or decoded.
	ErrAssetLoad = errors.New("asset load error")

	ErrUnsupportedType = fmt.Errorf("%w: not an image", ErrAssetLoad)
	ErrTooLarge        = fmt.Errorf("%w: file too large", ErrAssetLoad)
)

// File is an uploaded file held in memory.
type File struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// Source is either a URL (http, https, data or file) or an uploaded file.
type Source struct {
	URL  string
	File *File
}

func FromURL(u string) Source { return Source{URL: u} }

func FromFile(f File) Source { return Source{File: &f} }

// Local reports whether s reads from the host filesystem.
func (s Source) Local() bool {
	if s.File != nil || strings.HasPrefix(s.URL, "data:") {
		return false
	}
	u, err := url.Parse(s.URL)
	return err != nil || (u.Scheme != "http" && u.Scheme != "https")
}

func (s Source) String() string {
	if s.File != nil {
		return "file " + s.File.Name
	}
	if strings.HasPrefix(s.URL, "data:") {
		return "data URL"
	}
	return s.URL
}

// Asset is a decoded image together with its encoded source bytes.
type Asset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	Image  image.Image
}

// Loader fetches and decodes assets.
type Loader struct {
	Client   *http.Client
	MaxBytes int64
}

// NewLoader returns a loader with the given size limit; limit <= 0 selects
// DefaultMaxBytes.
func NewLoader(limit int64) *Loader {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	return &Loader{
		Client:   &http.Client{Timeout: 30 * time.Second},
		MaxBytes: limit,
	}
}

// ValidateFile checks an upload before any decoding is attempted.
func (l *Loader) ValidateFile(f File) error {
	if !strings.HasPrefix(f.MIME, "image/") {
		return fmt.Errorf("%w: %s has type %q", ErrUnsupportedType, f.Name, f.MIME)
	}
	if int64(len(f.Data)) > l.MaxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, f.Name, len(f.Data), l.MaxBytes)
	}
	return nil
}

// Load reads and decodes src. It blocks until the asset is decoded or ctx
// is done.
func (l *Loader) Load(ctx context.Context, src Source) (*Asset, error) {
	data, mime, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("[ASSET] Decode of %s failed: %v", src, err)
		return nil, fmt.Errorf("%w: decode %s: %v", ErrAssetLoad, src, err)
	}
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = "image/" + format
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s has no pixels", ErrAssetLoad, src)
	}
	return &Asset{Data: data, MIME: mime, Width: b.Dx(), Height: b.Dy(), Image: img}, nil
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, string, error) {
	if src.File != nil {
		if err := l.ValidateFile(*src.File); err != nil {
			return nil, "", err
		}
		return src.File.Data, src.File.MIME, nil
	}
	if src.URL == "" {
		return nil, "", fmt.Errorf("%w: empty source", ErrAssetLoad)
	}
	if strings.HasPrefix(src.URL, "data:") {
		return l.readDataURL(src.URL)
	}

	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	switch u.Scheme {
	case "http", "https":
		return l.fetch(ctx, u.String())
	case "file", "":
		path := u.Path
		if u.Scheme == "" {
			path = src.URL
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrAssetLoad, err)
		}
		if int64(len(data)) > l.MaxBytes {
			return nil, "", fmt.Errorf("%w: %s", ErrTooLarge, path)
		}
		return data, http.DetectContentType(data), nil
	}
	return nil, "", fmt.Errorf("%w: unsupported scheme %q", ErrAssetLoad, u.Scheme)
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s returned %s", ErrAssetLoad, rawURL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	if int64(len(data)) > l.MaxBytes {
		return nil, "", fmt.Errorf("%w: %s", ErrTooLarge, rawURL)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, strings.TrimSpace(strings.Split(mime, ";")[0]), nil
}

// readDataURL decodes "data:[<mediatype>][;base64],<data>".
func (l *Loader) readDataURL(raw string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed data URL", ErrAssetLoad)
	}
	params := strings.Split(header, ";")
	mime := params[0]
	isBase64 := params[len(params)-1] == "base64"

	var data []byte
	var err error
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: data URL: %v", ErrAssetLoad, err)
	}
	f := File{Name: "data URL", MIME: mime, Data: data}
	if err := l.ValidateFile(f); err != nil {
		return nil, "", err
	}
	return data, mime, nil
}
