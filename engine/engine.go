// Package engine runs render passes: load the corpus, pick a passage, lay it
// out, composite the frame and present it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ByLCY/inkverse/assets"
	"github.com/ByLCY/inkverse/corpus"
	"github.com/ByLCY/inkverse/display"
	"github.com/ByLCY/inkverse/layout"
	"github.com/ByLCY/inkverse/logging"
)

// AssetProvider loads a decoration image fitted into box.
type AssetProvider interface {
	Load(name, src string, box image.Point) (*assets.Element, error)
}

// Compositor measures text and turns a scene into a paletted frame.
type Compositor interface {
	layout.Typesetter
	Compose(scene *layout.Scene) (*image.Paletted, error)
}

// Engine holds the collaborators of a render pass. Passes share nothing but
// these read-only dependencies; every pass builds its own canvas.
type Engine struct {
	Profile    *layout.Profile
	Source     corpus.Source
	Selector   *corpus.Selector
	Assets     AssetProvider
	Compositor Compositor
	// Typesetter overrides Compositor for text measurement, for callers that
	// lay out for a different surface such as the vector preview.
	Typesetter layout.Typesetter
	Sink       display.Sink
	Logger     *slog.Logger

	// Reference pins the passage to display; empty means random selection.
	Reference string
	// Data is exposed to text bindings next to ${verse.*}.
	Data map[string]any
}

// Report describes a completed pass.
type Report struct {
	PassID      string
	Verse       corpus.VersePair
	Scene       *layout.Scene
	Frame       *image.Paletted
	Fingerprint string
	Duration    time.Duration
}

// Prepare loads, selects and lays out one passage without compositing. A font
// error is returned; missing corpus or assets degrade silently.
func (e *Engine) Prepare(ctx context.Context) (*layout.Scene, corpus.VersePair, error) {
	return e.prepare(ctx, e.logger())
}

func (e *Engine) prepare(ctx context.Context, logger *slog.Logger) (*layout.Scene, corpus.VersePair, error) {
	if e.Profile == nil {
		return nil, corpus.VersePair{}, errors.New("engine: 缺少显示配置")
	}
	ts := e.Typesetter
	if ts == nil && e.Compositor != nil {
		ts = e.Compositor
	}
	if ts == nil {
		return nil, corpus.VersePair{}, errors.New("engine: 缺少排版器")
	}

	c := corpus.LoadOrEmpty(ctx, e.Source, logger)
	verse := e.pick(c, logger)
	logger.Info("passage selected", "reference", verse.Reference, "corpus_size", len(c))

	images := e.loadAssets(logger)
	scene, err := layout.Build(e.Profile, verse, layout.BuildOptions{
		Typesetter: ts,
		Images:     images,
		Data:       e.Data,
		Logger:     logger,
	})
	if err != nil {
		return nil, verse, fmt.Errorf("engine: 排版失败: %w", err)
	}
	return scene, verse, nil
}

// RenderPass runs one complete pass. Nothing is presented when it fails.
func (e *Engine) RenderPass(ctx context.Context) (*Report, error) {
	if e.Compositor == nil {
		return nil, errors.New("engine: 缺少渲染器")
	}
	start := time.Now()
	passID := uuid.NewString()
	logger := e.logger().With("pass_id", passID)

	scene, verse, err := e.prepare(ctx, logger)
	if err != nil {
		logger.Error("render pass failed", "error", err)
		return nil, err
	}
	frame, err := e.Compositor.Compose(scene)
	if err != nil {
		logger.Error("render pass failed", "error", err)
		return nil, fmt.Errorf("engine: 合成失败: %w", err)
	}

	sink := e.Sink
	if sink == nil {
		sink = display.Discard
	}
	if err := sink.Present(ctx, frame); err != nil {
		logger.Error("present failed", "error", err)
		return nil, fmt.Errorf("engine: 呈现失败: %w", err)
	}

	report := &Report{
		PassID:      passID,
		Verse:       verse,
		Scene:       scene,
		Frame:       frame,
		Fingerprint: display.Fingerprint(frame),
		Duration:    time.Since(start),
	}
	logger.Info("render pass complete",
		"reference", verse.Reference,
		"overflow", scene.Meta.Overflow,
		"omitted", len(scene.Meta.Omitted),
		"duration", report.Duration)
	return report, nil
}

// Run executes a pass immediately and then on every tick of interval until ctx
// is cancelled. Failed passes are logged and retried on the next tick.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("engine: 刷新间隔必须为正数，实际 %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.RenderPass(ctx); err != nil && ctx.Err() == nil {
			e.logger().Warn("pass failed, waiting for next tick", "error", err, "interval", interval)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (e *Engine) pick(c corpus.Corpus, logger *slog.Logger) corpus.VersePair {
	if e.Reference != "" {
		if v, ok := c.Find(e.Reference); ok {
			return v
		}
		logger.Warn("pinned reference not in corpus, selecting at random", "reference", e.Reference)
	}
	sel := e.Selector
	if sel == nil {
		sel = corpus.NewSelector(nil)
	}
	return sel.Select(c)
}

func (e *Engine) loadAssets(logger *slog.Logger) map[string]*assets.Element {
	out := map[string]*assets.Element{}
	if e.Assets == nil {
		return out
	}
	for _, layer := range e.Profile.Layers {
		if layer.Kind != layout.LayerImage {
			continue
		}
		if _, done := out[layer.Name]; done {
			continue
		}
		res, ok := e.Profile.Images[layer.Name]
		if !ok {
			continue
		}
		el, err := e.Assets.Load(res.Name, res.Src, image.Pt(res.Width, res.Height))
		if err != nil {
			logger.Warn("decoration unavailable", "image", res.Name, "error", err)
			continue
		}
		out[layer.Name] = el
	}
	return out
}

func (e *Engine) logger() *slog.Logger { return logging.OrDiscard(e.Logger) }
