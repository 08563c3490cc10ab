package layout

import (
	"fmt"
	"log/slog"
	"strings"
)

// WrapMode 决定超宽文本如何断行。
type WrapMode int

const (
	// WrapClip 不断行，每个显式换行分组成为一行，超出部分由渲染时裁剪。
	WrapClip WrapMode = iota
	// WrapWord 贪心按词填充；单个超宽词元独占一行而不被拆开。
	WrapWord
	// WrapEllipsis 每个分组截断为一行，并在末尾追加省略号。
	WrapEllipsis
)

// String returns the DSL spelling of the wrap mode.
func (m WrapMode) String() string {
	switch m {
	case WrapWord:
		return "word"
	case WrapEllipsis:
		return "ellipsis"
	default:
		return "clip"
	}
}

func (m WrapMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseWrapMode 解析折行策略，无法识别的值回退为 WrapClip。
func ParseWrapMode(v string) WrapMode {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "word", "wrap", "word-wrap", "break-word", "anywhere", "normal":
		return WrapWord
	case "ellipsis", "truncate":
		return WrapEllipsis
	default:
		return WrapClip
	}
}

// DefaultEllipsis 是截断时追加的省略号。
const DefaultEllipsis = "…"

// Options 配置断行器的外部依赖。
type Options struct {
	Measurer Measurer // 必填
	Splitter Splitter // 为空时使用 SplitWords
	Ellipsis string   // 为空时使用 DefaultEllipsis
}

// Breaker 在给定宽度下把 run 序列排成行。单线程使用：
// 测量缓存会原地写回输入 run，不要在多个 goroutine 中对同一组 run 并发排版。
type Breaker struct {
	cache    *WidthCache
	split    Splitter
	ellipsis string
}

// NewBreaker 为一个段落创建断行器。
func NewBreaker(d Defaults, opts Options) (*Breaker, error) {
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少测量服务 Measurer")
	}
	b := &Breaker{
		cache:    NewWidthCache(opts.Measurer, d),
		split:    opts.Splitter,
		ellipsis: opts.Ellipsis,
	}
	if b.split == nil {
		b.split = SplitWords
	}
	if b.ellipsis == "" {
		b.ellipsis = DefaultEllipsis
	}
	return b, nil
}

// Layout 先按显式换行分组，再对每组应用折行策略。空输入产生一个零宽空行。
func (b *Breaker) Layout(runs []*Run, width float64, mode WrapMode) []Line {
	groups := SplitNewlines(runs)
	lines := make([]Line, 0, len(groups))
	for _, group := range groups {
		switch mode {
		case WrapWord:
			lines = append(lines, b.wrap(group, width)...)
		case WrapEllipsis:
			lines = append(lines, b.truncate(group, width))
		default:
			lines = append(lines, b.newLine(group))
		}
	}
	Logger().Debug("layout pass",
		slog.String("mode", mode.String()),
		slog.Float64("width", width),
		slog.Int("runs", len(runs)),
		slog.Int("groups", len(groups)),
		slog.Int("lines", len(lines)))
	return lines
}

// SplitNewlines 在任意 run 内部的换行处切分，返回按行分组的 run。
// \n、\r\n 与单独的 \r 都算一次换行。
// 含换行的 run 被拆成保留原样式的兄弟 run；不含换行的 run 原样复用（共享宽度缓存）。
func SplitNewlines(runs []*Run) [][]*Run {
	groups := [][]*Run{nil}
	for _, r := range runs {
		if !strings.ContainsAny(r.text, "\r\n") {
			groups[len(groups)-1] = append(groups[len(groups)-1], r)
			continue
		}
		text := strings.ReplaceAll(r.text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
		for i, part := range strings.Split(text, "\n") {
			if i > 0 {
				groups = append(groups, nil)
			}
			groups[len(groups)-1] = append(groups[len(groups)-1], NewRun(part, r.style))
		}
	}
	return groups
}

// newLine 测量、融合并生成一行。
func (b *Breaker) newLine(runs []*Run) Line {
	for _, r := range runs {
		b.cache.WidthOf(r)
	}
	fused := Fuse(runs)
	return Line{Runs: fused, Width: b.cache.LineWidthOf(fused)}
}

// tokens 把分组中每个 run 切成继承原样式的词元 run。空文本 run 仍以一个空词元参与排版。
func (b *Breaker) tokens(group []*Run) []*Run {
	var out []*Run
	for _, r := range group {
		parts := b.split(r.text)
		if len(parts) == 0 {
			parts = []string{r.text}
		}
		if len(parts) == 1 && parts[0] == r.text {
			out = append(out, r)
			continue
		}
		for _, p := range parts {
			out = append(out, NewRun(p, r.style))
		}
	}
	return out
}

// wrap 贪心填充：追加词元后重新测量候选行，超宽且候选行原本持有非空词元时回退，
// 输出候选行，并以去掉前导空白的当前词元开始新行。
// 空文本词元不占宽度，不计入持有数，也不会单独撑出一行。
func (b *Breaker) wrap(group []*Run, width float64) []Line {
	tokens := b.tokens(group)
	if len(tokens) == 0 {
		return []Line{b.newLine(nil)}
	}
	var lines []Line
	var candidate []*Run
	held := 0
	for _, tok := range tokens {
		if len(candidate) == 0 && len(lines) > 0 {
			// 断行后的新行：去掉前导空白，纯空白词元被吞掉，不产生空行
			rest := trimLeadingSpace(tok.text)
			if rest == "" {
				continue
			}
			if rest != tok.text {
				tok = NewRun(rest, tok.style)
			}
		}
		candidate = append(candidate, tok)
		if tok.text == "" {
			continue
		}
		if held == 0 || b.cache.LineWidthOf(candidate) <= width {
			held++
			continue
		}
		lines = append(lines, b.newLine(candidate[:len(candidate)-1]))
		candidate, held = nil, 0
		if rest := trimLeadingSpace(tok.text); rest != "" {
			candidate, held = []*Run{NewRun(rest, tok.style)}, 1
			b.cache.LineWidthOf(candidate)
		}
	}
	if len(candidate) == 0 {
		return lines
	}
	return append(lines, b.newLine(candidate))
}

// truncate 单行截断：从最后一个 run 逐字符删除并追加省略号重新测量，直到放得下；
// 该 run 删空后整体丢弃，继续处理新的最后一个 run。线性扫描。
func (b *Breaker) truncate(group []*Run, width float64) Line {
	if len(group) == 0 {
		return b.newLine(nil)
	}
	if b.cache.LineWidthOf(group) <= width {
		return b.newLine(group)
	}
	runs := make([]*Run, len(group))
	for i, r := range group {
		runs[i] = r.clone()
	}
	first := runs[0]
	for len(runs) > 0 {
		last := runs[len(runs)-1]
		rest := []rune(last.text)
		for len(rest) > 0 {
			rest = rest[:len(rest)-1]
			last.SetText(string(rest) + b.ellipsis)
			if b.cache.LineWidthOf(runs) <= width {
				return b.newLine(runs)
			}
		}
		runs = runs[:len(runs)-1]
	}
	return b.newLine([]*Run{NewRun(b.ellipsis, first.style)})
}
