package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// runeMeasurer 按字符数测量：每个字符 1 个单位，粗体 1.5 个单位。
// 文本包含 ERR 时返回错误，包含 NAN 时返回 NaN。
type runeMeasurer struct {
	calls int
	fonts []string
}

func (m *runeMeasurer) Measure(font, text string) (float64, error) {
	m.calls++
	m.fonts = append(m.fonts, font)
	switch {
	case strings.Contains(text, "ERR"):
		return 0, errors.New("measure failed")
	case strings.Contains(text, "NAN"):
		return math.NaN(), nil
	}
	w := float64(utf8.RuneCountInString(text))
	if f := strings.Fields(font); len(f) > 1 && f[1] == "bold" {
		w *= 1.5
	}
	return w, nil
}

var testDefaults = Defaults{
	Fill:       Solid(Color{}),
	FontFamily: "Test",
	FontSize:   10,
	Unit:       UnitPX,
}

func newTestBreaker(m Measurer) *Breaker {
	b, err := NewBreaker(testDefaults, Options{Measurer: m})
	if err != nil {
		panic(err)
	}
	return b
}

func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}

// recordingPainter 记录每次绘制调用，便于断言调用顺序与坐标。
type recordingPainter struct {
	calls []string
}

func (p *recordingPainter) add(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *recordingPainter) SetFill(f Fill) {
	c := f.Representative()
	p.add("fill %d,%d,%d", c.R, c.G, c.B)
}
func (p *recordingPainter) SetFont(font string) { p.add("font %s", font) }
func (p *recordingPainter) SetShadow(c Color, blur, dx, dy float64) {
	p.add("shadow %d,%d,%d %g %g %g", c.R, c.G, c.B, blur, dx, dy)
}
func (p *recordingPainter) ClearShadow()                  { p.add("noshadow") }
func (p *recordingPainter) SetStroke(c Color, w float64)  { p.add("stroke %d,%d,%d %g", c.R, c.G, c.B, w) }
func (p *recordingPainter) FillRect(x, y, w, h float64)   { p.add("fillRect %g %g %g %g", x, y, w, h) }
func (p *recordingPainter) StrokeRect(x, y, w, h float64) { p.add("strokeRect %g %g %g %g", x, y, w, h) }
func (p *recordingPainter) FillText(text string, x, y float64) {
	p.add("fillText %q %g %g", text, x, y)
}
func (p *recordingPainter) StrokeText(text string, x, y float64) {
	p.add("strokeText %q %g %g", text, x, y)
}

func (p *recordingPainter) filter(prefix string) []string {
	var out []string
	for _, c := range p.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
