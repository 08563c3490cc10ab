package canvasrenderer

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/richtext/layout"
)

// painter 把 layout.Painter 的调用转成 canvas 绘制。
// layout 坐标以页面左上角为原点、y 向下，canvas 默认 y 向上，这里按页高翻转。
type painter struct {
	r          *Renderer
	ctx        *canvas.Context
	pageHeight float64

	fill        layout.Color
	font        string
	shadow      *shadow
	stroke      layout.Color
	strokeWidth float64

	err error // 第一个错误，后续绘制全部跳过
}

type shadow struct {
	color   layout.Color
	offsetX float64
	offsetY float64
}

var _ layout.Painter = (*painter)(nil)

// SetFill 渐变填充以起始色近似。
func (p *painter) SetFill(f layout.Fill) { p.fill = f.Representative() }

func (p *painter) SetFont(font string) { p.font = font }

// SetShadow 以阴影色绘制一份偏移副本，模糊半径不生效。
func (p *painter) SetShadow(c layout.Color, _, offsetX, offsetY float64) {
	p.shadow = &shadow{color: c, offsetX: offsetX, offsetY: offsetY}
}

func (p *painter) ClearShadow() { p.shadow = nil }

func (p *painter) SetStroke(c layout.Color, width float64) {
	p.stroke = c
	p.strokeWidth = width
}

func (p *painter) FillRect(x, y, w, h float64) {
	if p.shadow != nil {
		p.fillRect(x+p.shadow.offsetX, y+p.shadow.offsetY, w, h, p.shadow.color)
	}
	p.fillRect(x, y, w, h, p.fill)
}

func (p *painter) StrokeRect(x, y, w, h float64) {
	if p.err != nil {
		return
	}
	p.ctx.SetFillColor(canvas.Transparent)
	p.ctx.SetStrokeColor(colorFromLayout(p.stroke))
	p.ctx.SetStrokeWidth(p.strokeWidth)
	p.ctx.DrawPath(x, p.pageHeight-y-h, canvas.Rectangle(w, h))
}

func (p *painter) FillText(text string, x, y float64) {
	if p.shadow != nil {
		p.fillText(text, x+p.shadow.offsetX, y+p.shadow.offsetY, p.shadow.color)
	}
	p.fillText(text, x, y, p.fill)
}

// StrokeText 取字形轮廓描边。
func (p *painter) StrokeText(text string, x, y float64) {
	if p.err != nil {
		return
	}
	_, face, err := p.r.faceFor(p.font, p.stroke)
	if err != nil {
		p.err = err
		return
	}
	path, _, err := face.ToPath(text)
	if err != nil {
		p.err = err
		return
	}
	p.ctx.SetFillColor(canvas.Transparent)
	p.ctx.SetStrokeColor(colorFromLayout(p.stroke))
	p.ctx.SetStrokeWidth(p.strokeWidth)
	p.ctx.DrawPath(x, p.pageHeight-y, path)
}

func (p *painter) fillRect(x, y, w, h float64, c layout.Color) {
	if p.err != nil {
		return
	}
	p.ctx.SetFillColor(colorFromLayout(c))
	p.ctx.SetStrokeColor(canvas.Transparent)
	p.ctx.DrawPath(x, p.pageHeight-y-h, canvas.Rectangle(w, h))
}

func (p *painter) fillText(text string, x, y float64, c layout.Color) {
	if p.err != nil {
		return
	}
	_, face, err := p.r.faceFor(p.font, c)
	if err != nil {
		p.err = err
		return
	}
	p.ctx.DrawText(x, p.pageHeight-y, canvas.NewTextLine(face, text, canvas.Left))
}
