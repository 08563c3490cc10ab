// Package measure 提供不依赖绘制后端的文本测量服务，基于 TrueType 字形前进宽度。
package measure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/richtext/fonts"
	"github.com/ByLCY/richtext/layout"
)

// Options configures the measurer.
type Options struct {
	BaseDir string  // 解析相对字体路径
	DPI     float64 // 光栅化分辨率，默认 72（此时 1px = 1pt）
}

// Measurer 实现 layout.Measurer / AscentMeasurer / FontRegistrar。
type Measurer struct {
	baseDir string
	dpi     float64

	mu     sync.Mutex
	fonts  map[string]layout.FontResource
	parsed map[string]*truetype.Font // family|slot
	faces  map[string]font.Face      // 字体描述
}

var (
	_ layout.Measurer       = (*Measurer)(nil)
	_ layout.AscentMeasurer = (*Measurer)(nil)
	_ layout.FontRegistrar  = (*Measurer)(nil)
)

// New creates a measurer; unknown families fall back to the embedded Go fonts.
func New(opts Options) *Measurer {
	if opts.DPI <= 0 {
		opts.DPI = 72
	}
	return &Measurer{
		baseDir: opts.BaseDir,
		dpi:     opts.DPI,
		fonts:   map[string]layout.FontResource{},
		parsed:  map[string]*truetype.Font{},
		faces:   map[string]font.Face{},
	}
}

// RegisterFont 登记字体资源并校验常规体可以解析。
func (m *Measurer) RegisterFont(res layout.FontResource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.fonts[res.Name]; ok && old == res {
		return nil
	}
	m.fonts[res.Name] = res
	for key := range m.parsed {
		if strings.HasPrefix(key, res.Name+"|") {
			delete(m.parsed, key)
		}
	}
	clear(m.faces)
	_, err := m.fontLocked(res.Name, false, false)
	return err
}

// Measure 返回文本前进宽度，单位与字体描述中的字号一致。
func (m *Measurer) Measure(desc, text string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spec, face, err := m.faceLocked(desc)
	if err != nil {
		return 0, err
	}
	return m.fromFixed(font.MeasureString(face, text), spec.Size.Unit), nil
}

// Ascent 返回字体上升部高度，单位与字号一致。
func (m *Measurer) Ascent(desc string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spec, face, err := m.faceLocked(desc)
	if err != nil {
		return 0, err
	}
	return m.fromFixed(face.Metrics().Ascent, spec.Size.Unit), nil
}

// fromFixed 把 26.6 定点像素值换算到目标单位。
func (m *Measurer) fromFixed(v fixed.Int26_6, unit layout.Unit) float64 {
	pt := float64(v) / 64 * 72 / m.dpi
	return layout.Length{Value: pt, Unit: layout.UnitPT}.To(unit)
}

func (m *Measurer) faceLocked(desc string) (layout.FontSpec, font.Face, error) {
	spec, err := layout.ParseFontDescription(desc)
	if err != nil {
		return spec, nil, err
	}
	if face, ok := m.faces[desc]; ok {
		return spec, face, nil
	}
	f, err := m.fontLocked(spec.Family, spec.Bold(), spec.Italic())
	if err != nil {
		return spec, nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    spec.Size.ToPT(),
		DPI:     m.dpi,
		Hinting: font.HintingNone,
	})
	m.faces[desc] = face
	return spec, face, nil
}

func (m *Measurer) fontLocked(family string, bold, italic bool) (*truetype.Font, error) {
	key := fmt.Sprintf("%s|%t|%t", family, bold, italic)
	if f, ok := m.parsed[key]; ok {
		return f, nil
	}
	res := m.resourceFor(family)
	data, ok := fonts.Variant(res.Src, bold, italic)
	if !ok {
		var err error
		if data, err = m.loadFontBytes(res); err != nil {
			return nil, err
		}
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", family, err)
	}
	m.parsed[key] = f
	return f, nil
}

func (m *Measurer) resourceFor(family string) layout.FontResource {
	if res, ok := m.fonts[family]; ok {
		return res
	}
	if strings.EqualFold(strings.ReplaceAll(family, " ", ""), "gomono") {
		return layout.FontResource{Name: family, Src: "embed:gomono"}
	}
	return layout.FontResource{Name: family, Src: "embed:goregular"}
}

func (m *Measurer) loadFontBytes(res layout.FontResource) ([]byte, error) {
	if res.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", res.Name)
	}
	if fonts.IsEmbedded(res.Src) {
		return fonts.Load(res.Src)
	}
	path := res.Src
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", res.Name, err)
	}
	return data, nil
}
