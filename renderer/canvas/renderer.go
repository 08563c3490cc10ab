package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/richtext/fonts"
	"github.com/ByLCY/richtext/layout"
	"github.com/ByLCY/richtext/renderer"
)

// Format 是输出文件格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

const defaultResolution = 8 // PNG 每毫米像素数

// Renderer draws layout results via github.com/tdewolff/canvas.
// 同一个实例同时充当排版阶段的测量服务，保证测量与绘制使用同一套字形数据。
type Renderer struct {
	baseDir    string
	format     Format
	resolution float64

	fontMu   sync.Mutex
	fonts    map[string]layout.FontResource // 按资源名
	families map[string]*canvas.FontFamily
	faces    map[string]*canvas.FontFace
}

var (
	_ renderer.Renderer     = (*Renderer)(nil)
	_ layout.Measurer       = (*Renderer)(nil)
	_ layout.AscentMeasurer = (*Renderer)(nil)
	_ layout.FontRegistrar  = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir    string
	Format     Format  // 默认 pdf
	Resolution float64 // PNG 每毫米像素数，默认 8
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with the given output format.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatPDF
	}
	if opts.Resolution <= 0 {
		opts.Resolution = defaultResolution
	}
	return &Renderer{
		baseDir:    opts.BaseDir,
		format:     opts.Format,
		resolution: opts.Resolution,
		fonts:      map[string]layout.FontResource{},
		families:   map[string]*canvas.FontFamily{},
		faces:      map[string]*canvas.FontFace{},
	}
}

// ParseFormat 解析输出格式名称。
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的输出格式：%s", v)
	}
}

// RegisterFont 登记文档声明的字体，并立即加载以尽早暴露错误。
func (r *Renderer) RegisterFont(font layout.FontResource) error {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if old, ok := r.fonts[font.Name]; ok && old == font {
		return nil
	}
	r.fonts[font.Name] = font
	delete(r.families, font.Name)
	clear(r.faces)
	_, err := r.familyLocked(font.Name)
	return err
}

// Measure 实现 layout.Measurer，返回值使用字体描述中字号的单位。
func (r *Renderer) Measure(desc, text string) (float64, error) {
	spec, face, err := r.faceFor(desc, layout.Color{})
	if err != nil {
		return 0, err
	}
	return layout.Length{Value: face.TextWidth(text), Unit: layout.UnitMM}.To(spec.Size.Unit), nil
}

// Ascent 实现 layout.AscentMeasurer。
func (r *Renderer) Ascent(desc string) (float64, error) {
	spec, face, err := r.faceFor(desc, layout.Color{})
	if err != nil {
		return 0, err
	}
	return layout.Length{Value: face.Metrics().Ascent, Unit: layout.UnitMM}.To(spec.Size.Unit), nil
}

// Render renders the result in the configured format.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	for _, font := range result.Fonts {
		if err := r.RegisterFont(font); err != nil {
			return nil, err
		}
	}

	switch r.format {
	case FormatPDF:
		return r.renderPDF(result)
	case FormatSVG:
		return r.renderImage(result, renderers.SVG())
	case FormatPNG:
		return r.renderImage(result, renderers.PNG(canvas.DPMM(r.resolution)))
	default:
		return nil, fmt.Errorf("不支持的输出格式：%s", r.format)
	}
}

func (r *Renderer) renderPDF(result *layout.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		if err := r.drawPage(canvas.NewContext(c), page); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// renderImage 输出单页图像格式。
func (r *Renderer) renderImage(result *layout.Result, write canvas.Writer) ([]byte, error) {
	if len(result.Pages) > 1 {
		return nil, fmt.Errorf("%s 格式只支持单页，当前共 %d 页", r.format, len(result.Pages))
	}
	page := result.Pages[0]
	c := canvas.New(page.Width, page.Height)
	ctx := canvas.NewContext(c)
	if r.format == FormatPNG {
		ctx.SetFillColor(canvas.White)
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(page.Width, page.Height))
	}
	if err := r.drawPage(ctx, page); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := write(&buf, c); err != nil {
		return nil, fmt.Errorf("写入 %s 失败: %w", r.format, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	for _, tb := range page.Texts {
		p := &painter{r: r, ctx: ctx, pageHeight: page.Height}
		layout.PaintLines(p, tb.Lines, tb.Defaults, tb.Frame)
		if p.err != nil {
			return p.err
		}
	}
	return nil
}

func (r *Renderer) faceFor(desc string, col layout.Color) (layout.FontSpec, *canvas.FontFace, error) {
	spec, err := layout.ParseFontDescription(desc)
	if err != nil {
		return layout.FontSpec{}, nil, err
	}

	key := fmt.Sprintf("%s|%d,%d,%d", desc, col.R, col.G, col.B)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if face, ok := r.faces[key]; ok {
		return spec, face, nil
	}
	family, err := r.familyLocked(spec.Family)
	if err != nil {
		return spec, nil, err
	}
	face := family.Face(spec.Size.ToPT(), colorFromLayout(col), canvasStyle(spec), canvas.FontNormal)
	r.faces[key] = face
	return spec, face, nil
}

// familyLocked 返回字体族，四种样式槽位（常规/粗/斜/粗斜）都会装载。
// 内置 Go 字体使用真实变体，其他字体各槽位共享同一份数据。
func (r *Renderer) familyLocked(name string) (*canvas.FontFamily, error) {
	if family, ok := r.families[name]; ok {
		return family, nil
	}
	font := r.resourceFor(name)
	family := canvas.NewFontFamily(name)
	var fileData []byte
	for _, slot := range []struct {
		style        canvas.FontStyle
		bold, italic bool
	}{
		{canvas.FontRegular, false, false},
		{canvas.FontBold, true, false},
		{canvas.FontItalic, false, true},
		{canvas.FontBold | canvas.FontItalic, true, true},
	} {
		data, ok := fonts.Variant(font.Src, slot.bold, slot.italic)
		if !ok {
			if fileData == nil {
				b, err := r.loadFontBytes(font)
				if err != nil {
					return nil, err
				}
				fileData = b
			}
			data = fileData
		}
		if err := family.LoadFont(data, 0, slot.style); err != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
		}
	}
	r.families[name] = family
	return family, nil
}

// resourceFor 查找已登记的字体；未登记的 "Go Mono" 使用内置等宽字体，其余回退到 Go 常规体。
func (r *Renderer) resourceFor(name string) layout.FontResource {
	if font, ok := r.fonts[name]; ok {
		return font
	}
	if strings.EqualFold(strings.ReplaceAll(name, " ", ""), "gomono") {
		return layout.FontResource{Name: name, Src: "embed:gomono"}
	}
	return layout.FontResource{Name: name, Src: "embed:goregular"}
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	if fonts.IsEmbedded(font.Src) {
		return fonts.Load(font.Src)
	}
	path := font.Src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 embed:）", font.Src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", font.Name, err)
	}
	return data, nil
}

// canvasStyle 把字体描述映射到已装载的四种样式槽位。
func canvasStyle(spec layout.FontSpec) canvas.FontStyle {
	style := canvas.FontRegular
	if spec.Bold() {
		style = canvas.FontBold
	}
	if spec.Italic() {
		style |= canvas.FontItalic
	}
	return style
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
