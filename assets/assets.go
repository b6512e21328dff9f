// Package assets decodes decorative images and fits them into their target box.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/inkverse/logging"

	// 注册解码器
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ErrAsset marks every failure to produce a decoration element.
var ErrAsset = errors.New("asset unavailable")

// AssetError reports a missing or undecodable decoration image.
type AssetError struct {
	Name string
	Src  string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("资源 %s (%s) 不可用: %v", e.Name, e.Src, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAsset) hold for any *AssetError.
func (e *AssetError) Is(target error) bool { return target == ErrAsset }

// Element is a decoded decoration ready to be pasted. Mask is nil when the
// source image has no transparency.
type Element struct {
	Name  string
	Image *image.NRGBA
	Mask  *image.Alpha
}

// Width of the element in pixels.
func (e *Element) Width() int {
	if e == nil || e.Image == nil {
		return 0
	}
	return e.Image.Bounds().Dx()
}

// Height of the element in pixels.
func (e *Element) Height() int {
	if e == nil || e.Image == nil {
		return 0
	}
	return e.Image.Bounds().Dy()
}

// Size returns the element dimensions as a point.
func (e *Element) Size() image.Point {
	return image.Pt(e.Width(), e.Height())
}

// Loader resolves relative asset paths against BaseDir.
type Loader struct {
	BaseDir string
	Logger  *slog.Logger
}

// NewLoader returns a loader rooted at baseDir.
func NewLoader(baseDir string, logger *slog.Logger) *Loader {
	return &Loader{BaseDir: baseDir, Logger: logger}
}

// Load opens src and thumbnails it into box. A zero box keeps the original
// size; images smaller than box are never enlarged.
func (l *Loader) Load(name, src string, box image.Point) (*Element, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &AssetError{Name: name, Src: src, Err: errors.New("未指定资源路径")}
	}
	path := src
	if l != nil && l.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &AssetError{Name: name, Src: src, Err: err}
	}
	defer f.Close()
	el, err := Decode(name, f, box)
	if err != nil {
		var ae *AssetError
		if errors.As(err, &ae) {
			ae.Src = src
		}
		return nil, err
	}
	if l != nil {
		logging.OrDiscard(l.Logger).Debug("asset loaded", "name", name, "src", path, "width", el.Width(), "height", el.Height())
	}
	return el, nil
}

// Decode is Load for an already opened stream.
func Decode(name string, r io.Reader, box image.Point) (*Element, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &AssetError{Name: name, Src: "<stream>", Err: err}
	}
	return fromImage(name, img, box), nil
}

// FromImage wraps an in-memory image, applying the same fitting rules.
func FromImage(name string, img image.Image, box image.Point) *Element {
	return fromImage(name, img, box)
}

func fromImage(name string, img image.Image, box image.Point) *Element {
	var fitted *image.NRGBA
	if box.X > 0 && box.Y > 0 {
		fitted = imaging.Fit(img, box.X, box.Y, imaging.Lanczos)
	} else {
		fitted = imaging.Clone(img)
	}
	el := &Element{Name: name, Image: fitted}
	if !isOpaque(img) {
		el.Mask = alphaOf(fitted)
	}
	return el
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func alphaOf(img *image.NRGBA) *image.Alpha {
	b := img.Bounds()
	mask := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: img.NRGBAAt(x, y).A})
		}
	}
	return mask
}
