package layout

import "strings"

// Painter 是注入的绘制表面，坐标以文本框左上角所在的页面坐标系为准，y 向下。
// 文本坐标为基线位置。
type Painter interface {
	SetFill(f Fill)
	SetFont(font string)
	SetShadow(c Color, blur, offsetX, offsetY float64)
	ClearShadow()
	SetStroke(c Color, width float64)
	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	FillText(text string, x, y float64)
	StrokeText(text string, x, y float64)
}

// HAlign 是行的水平对齐方式。
type HAlign int

const (
	AlignStart HAlign = iota
	AlignCenter
	AlignEnd
)

func (a HAlign) MarshalText() ([]byte, error) {
	switch a {
	case AlignCenter:
		return []byte("center"), nil
	case AlignEnd:
		return []byte("end"), nil
	default:
		return []byte("start"), nil
	}
}

// ParseHAlign 支持 start/left、center/middle、end/right，默认 start。
func ParseHAlign(v string) HAlign {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "center", "middle":
		return AlignCenter
	case "end", "right":
		return AlignEnd
	default:
		return AlignStart
	}
}

// VAlign 是整块文本的垂直对齐方式。
type VAlign int

const (
	VAlignTop VAlign = iota
	VAlignMiddle
	VAlignBottom
)

func (a VAlign) MarshalText() ([]byte, error) {
	switch a {
	case VAlignMiddle:
		return []byte("middle"), nil
	case VAlignBottom:
		return []byte("bottom"), nil
	default:
		return []byte("top"), nil
	}
}

// ParseVAlign 支持 top、middle/center、bottom，默认 top。
func ParseVAlign(v string) VAlign {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "middle", "center":
		return VAlignMiddle
	case "bottom", "end":
		return VAlignBottom
	default:
		return VAlignTop
	}
}

// Frame 描述文本框在页面上的位置、尺寸与行排列方式（排版单位）。
type Frame struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Align      HAlign  `json:"align"`
	VAlign     VAlign  `json:"valign"`
	LineHeight float64 `json:"lineHeight"`
	Spacing    Spacing `json:"spacing"`
	Ascent     float64 `json:"ascent,omitempty"` // 为 0 时按 0.8 倍字号估算
}

// lineHeight 为 0 时按 1.4 倍字号。
func (f Frame) lineHeight(d Defaults) float64 {
	if f.LineHeight > 0 {
		return f.LineHeight
	}
	return d.FontSize * 1.4
}

// StackHeight 返回 n 行的总高度：行高 × 行数 + 累计行间距。
func (f Frame) StackHeight(n int, d Defaults) float64 {
	if n <= 0 {
		return 0
	}
	return f.lineHeight(d)*float64(n) + f.Spacing.Resolve(f.Height)*float64(n-1)
}

const (
	underlineOffset    = 0.1      // 相对字号，基线以下
	strikeOffset       = 1.0 / 3  // 相对字号，基线以上
	decorationFraction = 1.0 / 15 // 装饰线粗细，相对字号
)

// PaintLines 逐行逐 run 绘制：按对齐确定每行起点，解析属性，设置绘制状态，
// 先描边（装饰线、文字）再填充（装饰线、文字）。
func PaintLines(p Painter, lines []Line, d Defaults, f Frame) {
	lh := f.lineHeight(d)
	spacing := f.Spacing.Resolve(f.Height)
	stack := f.StackHeight(len(lines), d)

	top := f.Y
	switch f.VAlign {
	case VAlignMiddle:
		top += alignOffset(f.Height, stack, 0.5)
	case VAlignBottom:
		top += alignOffset(f.Height, stack, 1)
	}
	ascent := f.Ascent
	if ascent <= 0 {
		ascent = d.FontSize * 0.8
	}
	thickness := d.FontSize * decorationFraction

	for i, line := range lines {
		baseline := top + float64(i)*(lh+spacing) + (lh-d.FontSize)/2 + ascent
		x := f.X
		switch f.Align {
		case AlignCenter:
			x += alignOffset(f.Width, line.Width, 0.5)
		case AlignEnd:
			x += alignOffset(f.Width, line.Width, 1)
		}
		for _, r := range line.Runs {
			w, _ := r.Width()
			if r.text != "" {
				paintRun(p, r, Resolve(r.style, d), d, x, baseline, w, thickness)
			}
			x += w
		}
	}
}

func paintRun(p Painter, r *Run, a Attributes, d Defaults, x, baseline, w, thickness float64) {
	p.SetFill(a.Fill)
	p.SetFont(FontDescription(a, d))
	if a.HasShadow() {
		p.SetShadow(a.ShadowColor, a.ShadowBlur, a.ShadowOffsetX, a.ShadowOffsetY)
	} else {
		p.ClearShadow()
	}
	underlineY := baseline + d.FontSize*underlineOffset
	strikeY := baseline - d.FontSize*strikeOffset
	if a.HasOutline() {
		p.SetStroke(a.OutlineColor, a.OutlineWidth)
		if a.Underline {
			p.StrokeRect(x, underlineY, w, thickness)
		}
		if a.Strikethrough {
			p.StrokeRect(x, strikeY, w, thickness)
		}
		p.StrokeText(r.text, x, baseline)
	}
	if a.Underline {
		p.FillRect(x, underlineY, w, thickness)
	}
	if a.Strikethrough {
		p.FillRect(x, strikeY, w, thickness)
	}
	p.FillText(r.text, x, baseline)
}

// alignOffset 返回内容在容器中的偏移，内容超出容器时不偏移。
func alignOffset(container, content, factor float64) float64 {
	if container <= content {
		return 0
	}
	return (container - content) * factor
}
