package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/ByLCY/richtext/binding"
	"github.com/ByLCY/richtext/dsl"
)

const (
	blockSpacing    = 3.0 // 文本框之间的垂直间距（mm）
	defaultFontSize = 12  // pt
	defaultFontName = "Body"
	defaultFontSrc  = "embed:goregular"
)

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// resources 是从 resources 段收集并解析好的资源。
type resources struct {
	fonts     map[string]FontResource
	colors    map[string]Color
	gradients map[string]*Gradient
	styles    map[string]styleDef
}

// styleDef 是可继承的具名样式，Props 为解析继承后的属性。
type styleDef struct {
	Name    string
	Extends string
	Props   map[string]string
}

// Build 根据 DSL AST 生成页面与排好行的文本框。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少测量服务 Measurer")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	if reg, ok := opts.Measurer.(FontRegistrar); ok {
		names := make([]string, 0, len(res.fonts))
		for name := range res.fonts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := reg.RegisterFont(res.fonts[name]); err != nil {
				return nil, fmt.Errorf("注册字体 %s 失败: %w", name, err)
			}
		}
	}

	var pages []Page
	for _, section := range doc.Sections {
		if section.Page == nil {
			continue
		}
		ps, err := buildPages(section.Page, res, data, opts)
		if err != nil {
			return nil, err
		}
		pages = append(pages, ps...)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}

	return &Result{
		Pages: pages,
		Fonts: res.fonts,
		Meta:  collectMeta(doc),
	}, nil
}

func buildPages(section *dsl.PageSection, res *resources, data any, opts BuildOptions) ([]Page, error) {
	width, height, err := resolvePageSize(section.Spec)
	if err != nil {
		return nil, err
	}
	if section.Block == nil {
		return nil, fmt.Errorf("page 段落缺少内容")
	}

	flow := &pageFlow{width: width, height: height, margin: resolveMargin(section.Spec.Params)}
	flow.newPage()
	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil {
			continue
		}
		cmd := stmt.Command
		switch cmd.Name {
		case "text":
			tb, err := composeTextBox(cmd, flow.contentWidth(), flow.contentHeight(), res, data, opts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			flow.place(tb)
		case "break":
			flow.newPage()
		default:
			return nil, fmt.Errorf("%s: page 中不支持的语句 %s", cmd.Pos, cmd.Name)
		}
	}
	return flow.pages, nil
}

// pageFlow 自上而下堆叠文本框，放不下时换页。
type pageFlow struct {
	width   float64
	height  float64
	margin  Margin
	pages   []Page
	cursorY float64
}

func (f *pageFlow) newPage() {
	f.pages = append(f.pages, Page{
		Width:  f.width,
		Height: f.height,
		Margin: f.margin,
		Texts:  []TextBox{},
	})
	f.cursorY = f.margin.Top
}

func (f *pageFlow) contentWidth() float64  { return f.width - f.margin.Left - f.margin.Right }
func (f *pageFlow) contentHeight() float64 { return f.height - f.margin.Top - f.margin.Bottom }

func (f *pageFlow) place(tb TextBox) {
	bottom := f.height - f.margin.Bottom
	if f.cursorY+tb.Frame.Height > bottom && f.cursorY > f.margin.Top {
		f.newPage()
	}
	tb.Frame.X += f.margin.Left
	tb.Frame.Y = f.cursorY
	page := &f.pages[len(f.pages)-1]
	page.Texts = append(page.Texts, tb)
	f.cursorY += tb.Frame.Height + blockSpacing
}

func composeTextBox(cmd *dsl.Command, contentWidth, contentHeight float64, res *resources, data any, opts BuildOptions) (TextBox, error) {
	if cmd.Block == nil {
		return TextBox{}, fmt.Errorf("text 语句缺少文本块")
	}
	styleName, attrs := parseArgs(cmd.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, res.styles)

	fontName := attrs["font"]
	if fontName == "" {
		fontName = styleName
	}
	font := resolveFontResource(fontName, res)

	size := Length{Value: defaultFontSize, Unit: UnitPT}
	if v := strings.TrimSpace(attrs["size"]); v != "" {
		if l := ParseRawLengthStr(v); l.Value > 0 {
			size = l
			if size.Unit == UnitNone {
				size.Unit = UnitPT
			}
		}
	}

	blockStyle, err := parseStyle(attrs, res)
	if err != nil {
		return TextBox{}, err
	}
	defaults := applyDefaults(Defaults{
		Fill:       Solid(defaultTextColor),
		FontFamily: font.Name,
		FontSize:   size.ToMM(),
		FontStyle:  "normal",
		FontWeight: "normal",
		Unit:       UnitMM,
	}, blockStyle)

	lang := parseLang(attrs["lang"])
	runs, err := collectRuns(cmd.Block, Style{}, attrs["transform"], lang, res, data, opts)
	if err != nil {
		return TextBox{}, err
	}

	width := contentWidth
	if v := attrs["width"]; v != "" {
		if w := parseDimension(v, contentWidth); w > 0 {
			width = w
		}
	}
	height := 0.0
	if v := attrs["height"]; v != "" {
		height = parseDimension(v, contentHeight)
	}
	spacing := ParseSpacing(attrs["spacing"], UnitMM)
	if spacing.Relative && height <= 0 {
		// 自动高度时没有容器高度可参照，相对间距按内容区高度换算为绝对值。
		spacing = Spacing{Value: spacing.Resolve(contentHeight)}
	}
	frame := Frame{
		X:          parseLength(attrs["x"]),
		Width:      width,
		Height:     height,
		Align:      ParseHAlign(attrs["align"]),
		VAlign:     ParseVAlign(attrs["valign"]),
		LineHeight: ParseLineHeight(attrs["line-height"]).Resolve(size, UnitMM),
		Spacing:    spacing,
	}
	if am, ok := opts.Measurer.(AscentMeasurer); ok {
		if ascent, err := am.Ascent(FontDescription(Resolve(Style{}, defaults), defaults)); err == nil {
			frame.Ascent = ascent
		}
	}

	mode := WrapWord
	if v, ok := attrs["wrap"]; ok {
		mode = ParseWrapMode(v)
	}
	breaker, err := NewBreaker(defaults, Options{
		Measurer: opts.Measurer,
		Splitter: opts.Splitter,
		Ellipsis: opts.Ellipsis,
	})
	if err != nil {
		return TextBox{}, err
	}
	lines := breaker.Layout(runs, width, mode)
	if frame.Height <= 0 {
		frame.Height = frame.StackHeight(len(lines), defaults)
	}

	return TextBox{Frame: frame, Defaults: defaults, Mode: mode, Lines: lines}, nil
}

// collectRuns 把文本块中的字符串与 span 展开为 run 序列；嵌套 span 的覆盖值逐层叠加。
func collectRuns(block *dsl.Block, inherited Style, transform string, lang language.Tag, res *resources, data any, opts BuildOptions) ([]*Run, error) {
	var runs []*Run
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			text, err := bindText(string(stmt.Text.Value), data, opts.Strict)
			if err != nil {
				return nil, err
			}
			runs = append(runs, NewRun(applyTransform(text, transform, lang), inherited))
		case stmt.Command != nil && stmt.Command.Name == "span":
			cmd := stmt.Command
			if cmd.Block == nil {
				return nil, fmt.Errorf("%s: span 语句缺少文本块", cmd.Pos)
			}
			styleName, attrs := parseArgs(cmd.Args, true)
			attrs = mergeStyleAttributes(styleName, attrs, res.styles)
			st, err := parseStyle(attrs, res)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			t := transform
			if v := attrs["transform"]; v != "" {
				t = v
			}
			child, err := collectRuns(cmd.Block, inherited.Merge(st), t, lang, res, data, opts)
			if err != nil {
				return nil, err
			}
			runs = append(runs, child...)
		case stmt.Command != nil && stmt.Command.Name == "br":
			runs = append(runs, NewRun("\n", inherited))
		case stmt.Command != nil:
			return nil, fmt.Errorf("%s: 文本块中不支持的语句 %s", stmt.Command.Pos, stmt.Command.Name)
		}
	}
	return runs, nil
}

func bindText(text string, data any, strict bool) (string, error) {
	if strict {
		if missing := binding.Missing(text, data); len(missing) > 0 {
			return "", fmt.Errorf("无法解析的占位符: %s", strings.Join(missing, ", "))
		}
	}
	if data == nil {
		return text, nil
	}
	return binding.Interpolate(text, data), nil
}

// parseStyle 把属性表中出现的样式键转换为覆盖值，未出现的键保持继承。
func parseStyle(attrs map[string]string, res *resources) (Style, error) {
	var st Style
	for key, v := range attrs {
		switch key {
		case "color":
			fill, err := resolveFill(v, res)
			if err != nil {
				return Style{}, err
			}
			st.Fill = &fill
		case "underline":
			st.Underline = Ptr(parseBool(v))
		case "strike", "strikethrough", "line-through":
			st.Strikethrough = Ptr(parseBool(v))
		case "font-style":
			st.FontStyle = Ptr(strings.ToLower(v))
		case "weight", "font-weight":
			st.FontWeight = Ptr(strings.ToLower(v))
		case "outline":
			st.OutlineWidth = Ptr(parseLength(v))
		case "outline-color":
			c, err := resolveColor(v, res)
			if err != nil {
				return Style{}, err
			}
			st.OutlineColor = &c
		case "shadow":
			c, err := resolveColor(v, res)
			if err != nil {
				return Style{}, err
			}
			st.ShadowColor = &c
		case "shadow-blur":
			st.ShadowBlur = Ptr(parseLength(v))
		case "shadow-x":
			st.ShadowOffsetX = Ptr(parseLength(v))
		case "shadow-y":
			st.ShadowOffsetY = Ptr(parseLength(v))
		}
	}
	return st, nil
}

// applyDefaults 用段落级样式覆盖基础默认值。
func applyDefaults(base Defaults, st Style) Defaults {
	a := Resolve(st, base)
	base.Fill = a.Fill
	base.Underline = a.Underline
	base.Strikethrough = a.Strikethrough
	base.OutlineWidth = a.OutlineWidth
	base.OutlineColor = a.OutlineColor
	base.ShadowColor = a.ShadowColor
	base.ShadowBlur = a.ShadowBlur
	base.ShadowOffsetX = a.ShadowOffsetX
	base.ShadowOffsetY = a.ShadowOffsetY
	base.FontStyle = a.FontStyle
	base.FontWeight = a.FontWeight
	return base
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "yes", "1":
		return true
	default:
		return false
	}
}

func collectResources(doc *dsl.Document) (*resources, error) {
	res := &resources{
		fonts:     map[string]FontResource{},
		colors:    map[string]Color{},
		gradients: map[string]*Gradient{},
	}
	rawStyles := map[string]styleDef{}
	var rawGradients []*dsl.Command

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return nil, err
				}
				res.colors[name] = c
			case "gradient":
				rawGradients = append(rawGradients, stmt.Command)
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	// 渐变可以引用具名颜色，因此在颜色收集完之后解析。
	for _, cmd := range rawGradients {
		g, err := parseGradientResource(cmd, res)
		if err != nil {
			return nil, err
		}
		if g.Name != "" {
			res.gradients[g.Name] = g
		}
	}

	if len(res.fonts) == 0 {
		res.fonts[defaultFontName] = FontResource{Name: defaultFontName, Src: defaultFontSrc}
	}

	styles, err := resolveStyles(rawStyles)
	if err != nil {
		return nil, err
	}
	res.styles = styles
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "Papyrus",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = stmt.Assignment.Value.Text()
			case "author":
				meta.Author = stmt.Assignment.Value.Text()
			case "subject":
				meta.Subject = stmt.Assignment.Value.Text()
			case "creator":
				meta.Creator = stmt.Assignment.Value.Text()
			case "keywords":
				meta.Keywords = stmt.Assignment.Value.Strings()
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value, Src: defaultFontSrc}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment != nil && stmt.Assignment.Key == "src" {
			if src := stmt.Assignment.Value.Text(); src != "" {
				font.Src = src
			}
		}
	}
	return font
}

// parseColorResource 解析 `color Name = #RRGGBB`，等号可省略。
func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func parseGradientResource(cmd *dsl.Command, res *resources) (*Gradient, error) {
	if len(cmd.Args) == 0 {
		return &Gradient{}, nil
	}
	g := &Gradient{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return nil, fmt.Errorf("gradient %s 缺少定义", g.Name)
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		v := stmt.Assignment.Value.Text()
		var err error
		switch stmt.Assignment.Key {
		case "from":
			g.From, err = resolveColor(v, res)
		case "to":
			g.To, err = resolveColor(v, res)
		case "angle":
			g.Angle, err = strconv.ParseFloat(v, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("gradient %s: %w", g.Name, err)
		}
	}
	return g, nil
}

func parseStyleResource(cmd *dsl.Command) styleDef {
	if len(cmd.Args) == 0 {
		return styleDef{}
	}
	style := styleDef{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Text(); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

func resolveStyles(styles map[string]styleDef) (map[string]styleDef, error) {
	resolved := map[string]styleDef{}
	visiting := map[string]bool{}

	var dfs func(name string) (styleDef, error)
	dfs = func(name string) (styleDef, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return styleDef{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return styleDef{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return styleDef{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width, height := base[0], base[1]
	for _, token := range spec.Params {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"A6":     {105, 148},
	"LETTER": {215.9, 279.4},
}

// resolveMargin 解析 margin 后的 1~4 个长度，语义同 CSS（3 个值时左边距为 0）。
func resolveMargin(params []*dsl.Lexeme) Margin {
	margin := Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	for i := 0; i < len(params); i++ {
		if params[i].Value != "margin" {
			continue
		}
		vals := []float64{}
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			// 遇到非数值（如 portrait）即停止，避免误吞关键字
			if _, err := strconv.ParseFloat(trimUnit(params[j].Value), 64); err != nil {
				break
			}
			vals = append(vals, parseLength(params[j].Value))
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: 0}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return margin
}

// parseArgs 把参数解析为 [样式名] key value key value ...；
// 参数个数为奇数且首个参数是标识符时，首个参数视为样式名。
func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var style string
	if allowStyle && len(args)%2 == 1 && args[0].Type == "Ident" {
		style = args[0].Value
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]styleDef) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func resolveFontResource(name string, res *resources) FontResource {
	if font, ok := res.fonts[name]; ok {
		return font
	}
	if font, ok := res.fonts[defaultFontName]; ok {
		return font
	}
	names := make([]string, 0, len(res.fonts))
	for n := range res.fonts {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) > 0 {
		return res.fonts[names[0]]
	}
	return FontResource{Name: defaultFontName, Src: defaultFontSrc}
}

// resolveFill 依次查找渐变、具名颜色与十六进制颜色。
func resolveFill(value string, res *resources) (Fill, error) {
	if g, ok := res.gradients[value]; ok {
		return Fill{Gradient: g}, nil
	}
	c, err := resolveColor(value, res)
	if err != nil {
		return Fill{}, err
	}
	return Solid(c), nil
}

func resolveColor(value string, res *resources) (Color, error) {
	if c, ok := res.colors[value]; ok {
		return c, nil
	}
	if strings.HasPrefix(value, "#") {
		return parseColor(value)
	}
	return Color{}, fmt.Errorf("颜色 %s 未定义", value)
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r, err1 := strconv.ParseUint(strings.Repeat(value[0:1], 2), 16, 8)
		g, err2 := strconv.ParseUint(strings.Repeat(value[1:2], 2), 16, 8)
		b, err3 := strconv.ParseUint(strings.Repeat(value[2:3], 2), 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
		}
		return Color{R: int(r), G: int(g), B: int(b)}, nil
	case 6, 8:
		r, err1 := strconv.ParseUint(value[0:2], 16, 8)
		g, err2 := strconv.ParseUint(value[2:4], 16, 8)
		b, err3 := strconv.ParseUint(value[4:6], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
		}
		return Color{R: int(r), G: int(g), B: int(b)}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
}

// parseLength 返回毫米值；不带单位的数字按毫米处理。
func parseLength(value string) float64 {
	if value == "" {
		return 0
	}
	return ParseRawLengthStr(value).ToMM()
}

func parseDimension(value string, reference float64) float64 {
	if value == "" {
		return 0
	}
	if strings.HasSuffix(value, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
			return reference * f / 100
		}
		return 0
	}
	return parseLength(value)
}

func trimUnit(value string) string {
	for _, suffix := range []string{"pt", "px", "mm", "cm", "in", "%"} {
		if strings.HasSuffix(value, suffix) {
			return strings.TrimSuffix(value, suffix)
		}
	}
	return value
}
