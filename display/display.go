// Package display hands finalized frames to the panel.
package display

import (
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/ByLCY/inkverse/logging"
)

// Sink presents a finalized frame. Present returns once the frame has been
// handed off; it does not wait for the physical refresh to finish.
type Sink interface {
	Present(ctx context.Context, frame *image.Paletted) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, frame *image.Paletted) error

// Present implements Sink.
func (f SinkFunc) Present(ctx context.Context, frame *image.Paletted) error { return f(ctx, frame) }

// Discard accepts and drops every frame.
var Discard Sink = SinkFunc(func(context.Context, *image.Paletted) error { return nil })

// Fingerprint returns the BLAKE3 digest of a frame's size, palette and pixels.
func Fingerprint(frame *image.Paletted) string {
	h := blake3.New()
	b := frame.Bounds()
	fmt.Fprintf(h, "%dx%d;", b.Dx(), b.Dy())
	for _, c := range frame.Palette {
		r, g, bl, a := c.RGBA()
		fmt.Fprintf(h, "%04x%04x%04x%04x", r, g, bl, a)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := frame.PixOffset(b.Min.X, y)
		h.Write(frame.Pix[i : i+b.Dx()])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FileSink writes each frame as a PNG file, replacing it atomically so a
// watcher never sees a partial image. Frames identical to the last one written
// are skipped: e-paper refreshes are slow and visible.
type FileSink struct {
	Path   string
	Logger *slog.Logger

	mu   sync.Mutex
	last string
}

// NewFileSink returns a sink writing to path.
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	return &FileSink{Path: path, Logger: logger}
}

// Present implements Sink.
func (s *FileSink) Present(ctx context.Context, frame *image.Paletted) error {
	if frame == nil {
		return fmt.Errorf("display: nil frame")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	sum := Fingerprint(frame)

	s.mu.Lock()
	defer s.mu.Unlock()
	logger := logging.OrDiscard(s.Logger)
	if sum == s.last {
		logger.Info("frame unchanged, refresh skipped", "path", s.Path, "fingerprint", sum[:16])
		return nil
	}
	if err := writeAtomic(s.Path, frame); err != nil {
		return err
	}
	s.last = sum
	logger.Info("frame presented", "path", s.Path, "fingerprint", sum[:16])
	return nil
}

func writeAtomic(path string, frame *image.Paletted) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("display: 创建目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".frame-*.png")
	if err != nil {
		return fmt.Errorf("display: 创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, frame); err != nil {
		tmp.Close()
		return fmt.Errorf("display: 编码 PNG 失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("display: 写入失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("display: 替换 %s 失败: %w", path, err)
	}
	return nil
}
