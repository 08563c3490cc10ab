package layout

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Measurer 是注入的测量服务：给定字体描述与文本，返回前进宽度（排版单位）。
// 同一次排版内，对相同的字体与文本必须返回相同结果。
type Measurer interface {
	Measure(font, text string) (float64, error)
}

// MeasureFunc 把普通函数适配为 Measurer。
type MeasureFunc func(font, text string) (float64, error)

func (f MeasureFunc) Measure(font, text string) (float64, error) { return f(font, text) }

// AscentMeasurer 可选实现：提供字体上升部高度，用于确定基线。
type AscentMeasurer interface {
	Ascent(font string) (float64, error)
}

// FontRegistrar 可选实现：Build 在排版前把文档声明的字体资源交给测量服务。
type FontRegistrar interface {
	RegisterFont(font FontResource) error
}

// FontDescription 组合字体描述："<style> <weight> <size><unit> <family>"。
// 字号与字体族始终取自段落默认值。
func FontDescription(a Attributes, d Defaults) string {
	return orNormal(a.FontStyle) + " " + orNormal(a.FontWeight) + " " + FormatSize(d.FontSize, d.Unit) + " " + d.FontFamily
}

// FormatSize 按排版单位输出字号，UnitNone 视为 px。
func FormatSize(size float64, unit Unit) string {
	if unit == UnitNone {
		unit = UnitPX
	}
	return Length{Value: size, Unit: unit}.String()
}

func orNormal(s string) string {
	if strings.TrimSpace(s) == "" {
		return "normal"
	}
	return s
}

// FontSpec 是解析后的字体描述。
type FontSpec struct {
	Style  string
	Weight string
	Size   Length
	Family string
}

// Bold 报告字重是否按粗体处理（bold/bolder/semibold 或数值 >= 600）。
func (f FontSpec) Bold() bool {
	w := strings.ToLower(f.Weight)
	if n, err := strconv.Atoi(w); err == nil {
		return n >= 600
	}
	return strings.Contains(w, "bold") || w == "bolder" || w == "black" || w == "heavy"
}

// Italic 报告字体样式是否为斜体。
func (f FontSpec) Italic() bool {
	s := strings.ToLower(f.Style)
	return s == "italic" || s == "oblique"
}

// ParseFontDescription 是 FontDescription 的逆操作，供测量与绘制后端使用。
// 字体族可以包含空格。
func ParseFontDescription(desc string) (FontSpec, error) {
	fields := strings.Fields(desc)
	if len(fields) < 3 {
		return FontSpec{}, fmt.Errorf("字体描述 %q 不完整", desc)
	}
	size, err := ParseLength(fields[2])
	if err != nil {
		return FontSpec{}, fmt.Errorf("字体描述 %q 字号无效: %w", desc, err)
	}
	if size.Unit == UnitNone {
		size.Unit = UnitPX
	}
	return FontSpec{
		Style:  fields[0],
		Weight: fields[1],
		Size:   size,
		Family: strings.Join(fields[3:], " "),
	}, nil
}

// WidthCache 是测量适配器：按需测量 run 宽度并缓存在 run 上。
type WidthCache struct {
	measurer Measurer
	defaults Defaults
}

// NewWidthCache 以段落默认值和测量服务创建适配器。
func NewWidthCache(m Measurer, d Defaults) *WidthCache {
	return &WidthCache{measurer: m, defaults: d}
}

// WidthOf 返回 run 的宽度；未缓存时测量并写回 run。
// 测量失败或结果非有限值时按 0 处理，单个 run 出错不会中断整次排版。
func (c *WidthCache) WidthOf(r *Run) float64 {
	if w, ok := r.Width(); ok {
		return w
	}
	w := 0.0
	if r.text != "" {
		font := FontDescription(Resolve(r.style, c.defaults), c.defaults)
		v, err := c.measurer.Measure(font, r.text)
		switch {
		case err != nil:
			Logger().Warn("测量失败，按 0 宽度处理", slog.String("font", font), slog.String("text", r.text), slog.Any("err", err))
		case math.IsNaN(v) || math.IsInf(v, 0):
			Logger().Warn("测量结果非有限值，按 0 宽度处理", slog.String("font", font), slog.String("text", r.text), slog.Float64("width", v))
		default:
			w = v
		}
	}
	r.width, r.measured = w, true
	return w
}

// LineWidthOf 汇总所有 run 的宽度。调用方修改文本后必须先失效缓存，适配器无法察觉过期值。
func (c *WidthCache) LineWidthOf(runs []*Run) float64 {
	total := 0.0
	for _, r := range runs {
		total += c.WidthOf(r)
	}
	return total
}
