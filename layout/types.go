package layout

// 该文件定义排版结果与资源描述，供排版、渲染与调试 JSON 共用。

// Result 保存排版后的页面与文档元信息。
type Result struct {
	Pages []Page                  `json:"pages"`
	Fonts map[string]FontResource `json:"fonts"`
	Meta  DocumentMeta            `json:"meta"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:<name> 形式的内置字体。
type FontResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Gradient 是线性渐变资源。run 持有其指针作为句柄，融合时按指针判等。
type Gradient struct {
	Name  string  `json:"name"`
	From  Color   `json:"from"`
	To    Color   `json:"to"`
	Angle float64 `json:"angle"` // 角度，0 表示从左到右
}

// Fill 是文字填充：纯色，或 Gradient 非空时的渐变。
type Fill struct {
	Color    Color     `json:"color"`
	Gradient *Gradient `json:"gradient,omitempty"`
}

// Solid 返回纯色填充。
func Solid(c Color) Fill { return Fill{Color: c} }

// Representative 返回用于只支持纯色的后端的颜色：渐变取起始色。
func (f Fill) Representative() Color {
	if f.Gradient != nil {
		return f.Gradient.From
	}
	return f.Color
}

// Page 记录页面尺寸、边距与排好的文本框（单位：mm）。
type Page struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Margin Margin    `json:"margin"`
	Texts  []TextBox `json:"texts"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经断好行、定好位置的文本块。
type TextBox struct {
	Frame    Frame    `json:"frame"`
	Defaults Defaults `json:"defaults"`
	Mode     WrapMode `json:"mode"`
	Lines    []Line   `json:"lines"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
