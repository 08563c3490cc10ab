package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ByLCY/richtext/dsl"
	"github.com/ByLCY/richtext/internal/watch"
	"github.com/ByLCY/richtext/layout"
	"github.com/ByLCY/richtext/measure"
	"github.com/ByLCY/richtext/renderer"
	canvasrenderer "github.com/ByLCY/richtext/renderer/canvas"
)

type config struct {
	input    string
	output   string
	debug    string
	format   canvasrenderer.Format
	measurer string
	data     any
	strict   bool
	splitter layout.Splitter
	ellipsis string
}

func main() {
	input := flag.String("in", "examples/demo.papyrus", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "输出文件路径")
	format := flag.String("format", "pdf", "输出格式：pdf | svg | png")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据，以 @ 开头时读取文件")
	strict := flag.Bool("strict", false, "存在无法解析的 ${} 占位符时报错")
	splitter := flag.String("splitter", "space", "断词策略：space | uax14")
	measurer := flag.String("measurer", "canvas", "测量后端：canvas | truetype")
	ellipsis := flag.String("ellipsis", layout.DefaultEllipsis, "ellipsis 模式的省略标记")
	watchMode := flag.Bool("watch", false, "监听 DSL 文件变化并重新生成")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	layout.SetLogger(logger)

	cfg := config{
		input:    *input,
		output:   *output,
		debug:    *debug,
		measurer: *measurer,
		strict:   *strict,
		ellipsis: *ellipsis,
	}
	var err error
	if cfg.format, err = canvasrenderer.ParseFormat(*format); err != nil {
		log.Fatal(err)
	}
	if cfg.splitter, err = parseSplitter(*splitter); err != nil {
		log.Fatal(err)
	}
	if cfg.data, err = loadData(*dataJSON); err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}

	if !*watchMode {
		if err := generate(cfg); err != nil {
			log.Fatalf("生成失败: %v", err)
		}
		fmt.Printf("已生成 %s：%s\n", strings.ToUpper(string(cfg.format)), cfg.output)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = watch.Run(ctx, cfg.input, func() error {
		if err := generate(cfg); err != nil {
			return err
		}
		slog.Info("已生成", slog.String("out", cfg.output))
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}

func parseSplitter(v string) (layout.Splitter, error) {
	switch strings.ToLower(v) {
	case "", "space":
		return layout.SplitWords, nil
	case "uax14":
		return layout.SplitLineBreaks, nil
	default:
		return nil, fmt.Errorf("未知的断词策略：%s", v)
	}
}

func loadData(v string) (any, error) {
	if v == "" {
		return nil, nil
	}
	raw := []byte(v)
	if path, ok := strings.CutPrefix(v, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// generate 每次重新创建渲染器，watch 模式下字体文件的修改也能生效。
func generate(cfg config) error {
	baseDir := filepath.Dir(cfg.input)
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Format: cfg.format})
	var m layout.Measurer = r
	switch cfg.measurer {
	case "", "canvas":
	case "truetype":
		m = measure.New(measure.Options{BaseDir: baseDir})
	default:
		return fmt.Errorf("未知的测量后端：%s", cfg.measurer)
	}
	return run(cfg, m, r)
}

// run 串联解析、布局与渲染。
func run(cfg config, m layout.Measurer, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	result, err := layout.Build(doc, cfg.data, layout.BuildOptions{
		Measurer: m,
		Splitter: cfg.splitter,
		Ellipsis: cfg.ellipsis,
		Strict:   cfg.strict,
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if cfg.debug != "" {
		if err := writeDebug(result, cfg.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	out, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}

	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
