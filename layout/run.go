package layout

import (
	"encoding/json"
	"strings"
)

// Style 保存 run 级别的样式覆盖值，nil 表示继承段落默认值。
// 指针指向的值视为不可变：修改样式请通过 Run.SetStyle 整体替换。
type Style struct {
	Fill          *Fill    `json:"fill,omitempty"`
	Underline     *bool    `json:"underline,omitempty"`
	Strikethrough *bool    `json:"strikethrough,omitempty"`
	FontStyle     *string  `json:"fontStyle,omitempty"`
	FontWeight    *string  `json:"fontWeight,omitempty"`
	OutlineWidth  *float64 `json:"outlineWidth,omitempty"`
	OutlineColor  *Color   `json:"outlineColor,omitempty"`
	ShadowColor   *Color   `json:"shadowColor,omitempty"`
	ShadowBlur    *float64 `json:"shadowBlur,omitempty"`
	ShadowOffsetX *float64 `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY *float64 `json:"shadowOffsetY,omitempty"`
}

// Ptr 返回 v 的指针，便于构造 Style。
func Ptr[T any](v T) *T { return &v }

// Equal 按存储的覆盖值逐字段比较（语法比较）：两个都继承的字段相等，
// 显式设置为与默认值相同的字段仍与继承字段不相等。
func (s Style) Equal(o Style) bool {
	return same(s.Fill, o.Fill) &&
		same(s.Underline, o.Underline) &&
		same(s.Strikethrough, o.Strikethrough) &&
		s.sameFont(o) &&
		same(s.OutlineWidth, o.OutlineWidth) &&
		same(s.OutlineColor, o.OutlineColor) &&
		same(s.ShadowColor, o.ShadowColor) &&
		same(s.ShadowBlur, o.ShadowBlur) &&
		same(s.ShadowOffsetX, o.ShadowOffsetX) &&
		same(s.ShadowOffsetY, o.ShadowOffsetY)
}

// sameFont 只比较影响测量的字段。
func (s Style) sameFont(o Style) bool {
	return same(s.FontStyle, o.FontStyle) && same(s.FontWeight, o.FontWeight)
}

// Merge 返回以 o 中已设置字段覆盖 s 后的样式。
func (s Style) Merge(o Style) Style {
	out := s
	if o.Fill != nil {
		out.Fill = o.Fill
	}
	if o.Underline != nil {
		out.Underline = o.Underline
	}
	if o.Strikethrough != nil {
		out.Strikethrough = o.Strikethrough
	}
	if o.FontStyle != nil {
		out.FontStyle = o.FontStyle
	}
	if o.FontWeight != nil {
		out.FontWeight = o.FontWeight
	}
	if o.OutlineWidth != nil {
		out.OutlineWidth = o.OutlineWidth
	}
	if o.OutlineColor != nil {
		out.OutlineColor = o.OutlineColor
	}
	if o.ShadowColor != nil {
		out.ShadowColor = o.ShadowColor
	}
	if o.ShadowBlur != nil {
		out.ShadowBlur = o.ShadowBlur
	}
	if o.ShadowOffsetX != nil {
		out.ShadowOffsetX = o.ShadowOffsetX
	}
	if o.ShadowOffsetY != nil {
		out.ShadowOffsetY = o.ShadowOffsetY
	}
	return out
}

func same[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Run 是带独立样式的最小文本片段。width 为测量缓存，measured 为其有效标记；
// 修改文本或字体相关样式时必须失效缓存，因此字段不导出。
type Run struct {
	text     string
	style    Style
	width    float64
	measured bool
}

// NewRun 创建尚未测量的 run。
func NewRun(text string, style Style) *Run {
	return &Run{text: text, style: style}
}

// Text 返回 run 的文本。
func (r *Run) Text() string { return r.text }

// Style 返回 run 的样式覆盖值。
func (r *Run) Style() Style { return r.style }

// SetText 替换文本并失效宽度缓存。
func (r *Run) SetText(text string) {
	r.text = text
	r.Invalidate()
}

// SetStyle 替换样式；字体样式或字重变化时失效宽度缓存。
func (r *Run) SetStyle(style Style) {
	if !r.style.sameFont(style) {
		r.Invalidate()
	}
	r.style = style
}

// Invalidate 清除宽度缓存，下次使用前重新测量。
func (r *Run) Invalidate() {
	r.width = 0
	r.measured = false
}

// Width 返回缓存的宽度；第二个返回值为 false 表示尚未测量。
func (r *Run) Width() (float64, bool) { return r.width, r.measured }

func (r *Run) clone() *Run {
	c := *r
	return &c
}

type runJSON struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
	Style *Style  `json:"style,omitempty"`
}

// MarshalJSON 输出文本、宽度与已设置的样式字段，用于调试 JSON。
func (r *Run) MarshalJSON() ([]byte, error) {
	out := runJSON{Text: r.text, Width: r.width}
	if !r.style.Equal(Style{}) {
		st := r.style
		out.Style = &st
	}
	return json.Marshal(out)
}

// Line 是一行已融合、带宽度的 run 序列。排版结果中的 run 是快照副本，
// 之后对输入 run 的修改不会影响已返回的行。
type Line struct {
	Runs  []*Run  `json:"runs"`
	Width float64 `json:"width"`
}

// Text 拼接该行所有 run 的文本。
func (l Line) Text() string {
	var builder strings.Builder
	for _, r := range l.Runs {
		builder.WriteString(r.text)
	}
	return builder.String()
}
