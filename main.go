// Command inkverse renders a randomly chosen verse onto an e-paper frame.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ByLCY/inkverse/assets"
	"github.com/ByLCY/inkverse/corpus"
	"github.com/ByLCY/inkverse/display"
	"github.com/ByLCY/inkverse/dsl"
	"github.com/ByLCY/inkverse/engine"
	"github.com/ByLCY/inkverse/layout"
	"github.com/ByLCY/inkverse/logging"
	"github.com/ByLCY/inkverse/renderer/raster"
	canvasrenderer "github.com/ByLCY/inkverse/renderer/canvas"
)

// Globals are shared by every command.
type Globals struct {
	Profile   string `short:"p" help:"显示配置 DSL 文件，缺省使用内置经典画面" type:"path"`
	Corpus    string `short:"c" help:"经文语料文件 (.json/.xml/.db，可带 .xz)" type:"path"`
	Table     string `help:"SQLite 语料的表名" default:"verses"`
	Assets    string `help:"装饰图片目录，缺省为配置文件所在目录" type:"path"`
	Reference string `short:"r" help:"固定显示某一节经文，例如 \"John 3:16\""`
	Seed      uint64 `help:"随机种子，0 表示每次随机"`
	Data      string `help:"绑定到文本图层的 JSON 数据"`
	LogLevel  string `name:"log-level" help:"日志级别 (debug|info|warn|error)" default:"info"`
	LogFormat string `name:"log-format" help:"日志格式 (text|json)" default:"text"`
}

// CLI defines the command-line interface.
var CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" default:"withargs" help:"渲染一帧并写出 PNG"`
	Watch   WatchCmd   `cmd:"" help:"按固定间隔持续刷新画面"`
	Preview PreviewCmd `cmd:"" help:"用矢量渲染器输出 PDF/PNG 预览"`
	Layout  LayoutCmd  `cmd:"" help:"输出布局调试 JSON"`
}

// RenderCmd renders a single pass.
type RenderCmd struct {
	Out string `short:"o" help:"PNG 输出路径" default:"output/frame.png" type:"path"`
}

func (c *RenderCmd) Run(g *Globals, logger *slog.Logger) error {
	e, err := g.engine(logger, display.NewFileSink(c.Out, logger))
	if err != nil {
		return err
	}
	report, err := e.RenderPass(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("已生成画面：%s (%s)\n", c.Out, report.Verse.Reference)
	return nil
}

// WatchCmd re-renders on an interval until interrupted.
type WatchCmd struct {
	Out      string        `short:"o" help:"PNG 输出路径" default:"output/frame.png" type:"path"`
	Interval time.Duration `short:"i" help:"刷新间隔" default:"1h"`
}

func (c *WatchCmd) Run(g *Globals, logger *slog.Logger) error {
	e, err := g.engine(logger, display.NewFileSink(c.Out, logger))
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("watching", "interval", c.Interval, "out", c.Out)
	return e.Run(ctx, c.Interval)
}

// PreviewCmd draws the scene through the vector renderer.
type PreviewCmd struct {
	Out    string  `short:"o" help:"预览输出路径" default:"output/preview.pdf" type:"path"`
	Format string  `short:"f" help:"输出格式 (pdf|png)" enum:"pdf,png" default:"pdf"`
	Scale  float64 `help:"PNG 输出时每个画面像素对应的位图像素" default:"2"`
}

func (c *PreviewCmd) Run(g *Globals, logger *slog.Logger) error {
	e, err := g.engine(logger, nil)
	if err != nil {
		return err
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: g.assetDir(),
		Format:  canvasrenderer.Format(c.Format),
		Scale:   c.Scale,
		Logger:  logger,
	})
	e.Typesetter = r
	scene, _, err := e.Prepare(context.Background())
	if err != nil {
		return err
	}
	out, err := r.Render(scene)
	if err != nil {
		return fmt.Errorf("渲染预览失败: %w", err)
	}
	if err := writeFile(c.Out, out); err != nil {
		return err
	}
	fmt.Printf("已生成预览：%s\n", c.Out)
	return nil
}

// LayoutCmd writes the computed scene as JSON.
type LayoutCmd struct {
	Out string `short:"o" help:"调试 JSON 输出路径，缺省写到标准输出" type:"path"`
}

func (c *LayoutCmd) Run(g *Globals, logger *slog.Logger) error {
	e, err := g.engine(logger, nil)
	if err != nil {
		return err
	}
	scene, _, err := e.Prepare(context.Background())
	if err != nil {
		return err
	}
	if c.Out == "" {
		return layout.EncodeDebugJSON(scene, os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(c.Out), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(scene, c.Out); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func (g *Globals) assetDir() string {
	if g.Assets != "" {
		return g.Assets
	}
	if g.Profile != "" {
		return filepath.Dir(g.Profile)
	}
	return "."
}

func (g *Globals) loadProfile() (*layout.Profile, error) {
	if g.Profile == "" {
		return layout.DefaultProfile(), nil
	}
	doc, err := dsl.ParseFile(g.Profile)
	if err != nil {
		return nil, fmt.Errorf("解析显示配置失败: %w", err)
	}
	p, err := layout.ResolveProfile(doc)
	if err != nil {
		return nil, fmt.Errorf("显示配置无效: %w", err)
	}
	return p, nil
}

// engine 串联配置、语料、素材与渲染器。
func (g *Globals) engine(logger *slog.Logger, sink display.Sink) (*engine.Engine, error) {
	profile, err := g.loadProfile()
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if g.Data != "" {
		if err := json.Unmarshal([]byte(g.Data), &data); err != nil {
			return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}
	var src corpus.Source
	if g.Corpus != "" {
		src = corpus.FileSource{Path: g.Corpus, Table: g.Table}
	}
	sel := corpus.NewSelector(nil)
	if g.Seed != 0 {
		sel = corpus.NewSeededSelector(g.Seed)
	}
	dir := g.assetDir()
	return &engine.Engine{
		Profile:    profile,
		Source:     src,
		Selector:   sel,
		Assets:     assets.NewLoader(dir, logger),
		Compositor: raster.NewRenderer(dir, logger),
		Sink:       sink,
		Logger:     logger,
		Reference:  g.Reference,
		Data:       data,
	}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("inkverse"),
		kong.Description("在电子墨水屏上显示随机经文"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	logger := logging.Init(os.Stderr, logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run(&CLI.Globals, logger)
	ctx.FatalIfErrorf(err)
}
