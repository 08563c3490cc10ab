package layout

// Defaults 是段落（文本块）级别的默认属性，对排版核心只读。
// 字号与字体族只能在段落上设置，run 不能覆盖。
type Defaults struct {
	Fill          Fill    `json:"fill"`
	Underline     bool    `json:"underline,omitempty"`
	Strikethrough bool    `json:"strikethrough,omitempty"`
	OutlineWidth  float64 `json:"outlineWidth,omitempty"`
	OutlineColor  Color   `json:"outlineColor"`
	ShadowColor   Color   `json:"shadowColor"`
	ShadowBlur    float64 `json:"shadowBlur,omitempty"`
	ShadowOffsetX float64 `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY float64 `json:"shadowOffsetY,omitempty"`
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"` // 排版单位
	FontStyle     string  `json:"fontStyle,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"`
	Unit          Unit    `json:"unit"` // 排版单位，UnitNone 视为 px
}

// Attributes 是绘制或测量时完全解析后的属性集合。
type Attributes struct {
	Fill          Fill
	Underline     bool
	Strikethrough bool
	OutlineWidth  float64
	OutlineColor  Color
	ShadowColor   Color
	ShadowBlur    float64
	ShadowOffsetX float64
	ShadowOffsetY float64
	FontStyle     string
	FontWeight    string
}

// Resolve 逐字段合并：run 设置了覆盖值则取之，否则取段落默认值。
func Resolve(s Style, d Defaults) Attributes {
	return Attributes{
		Fill:          pick(s.Fill, d.Fill),
		Underline:     pick(s.Underline, d.Underline),
		Strikethrough: pick(s.Strikethrough, d.Strikethrough),
		OutlineWidth:  pick(s.OutlineWidth, d.OutlineWidth),
		OutlineColor:  pick(s.OutlineColor, d.OutlineColor),
		ShadowColor:   pick(s.ShadowColor, d.ShadowColor),
		ShadowBlur:    pick(s.ShadowBlur, d.ShadowBlur),
		ShadowOffsetX: pick(s.ShadowOffsetX, d.ShadowOffsetX),
		ShadowOffsetY: pick(s.ShadowOffsetY, d.ShadowOffsetY),
		FontStyle:     pick(s.FontStyle, d.FontStyle),
		FontWeight:    pick(s.FontWeight, d.FontWeight),
	}
}

func pick[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}

// HasShadow 报告是否需要设置阴影：模糊或任一偏移非零。
func (a Attributes) HasShadow() bool {
	return a.ShadowBlur != 0 || a.ShadowOffsetX != 0 || a.ShadowOffsetY != 0
}

// HasOutline 报告是否描边；宽度为 0 表示不描边，而不是零宽描边。
func (a Attributes) HasOutline() bool {
	return a.OutlineWidth > 0
}
