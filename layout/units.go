package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths, line-height and line spacing.

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // CSS pixels (96 per inch)
)

// Conversion constants between pt, px and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 1.0 / PxToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// MarshalText 让调试 JSON 输出单位名而不是数字。
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(UnitToString(u)), nil
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// mm converts an absolute length to millimeters. UnitNone is returned as-is.
func (l Length) mm() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	case UnitPX:
		return l.Value * PxToMm
	default:
		return l.Value
	}
}

// To converts this length to the target unit. Unit-less values are returned unchanged,
// and so is any conversion into UnitNone.
func (l Length) To(target Unit) float64 {
	if l.Unit == UnitNone || target == UnitNone || l.Unit == target {
		return l.Value
	}
	mm := l.mm()
	switch target {
	case UnitCM:
		return mm / 10
	case UnitIN:
		return mm / 25.4
	case UnitPT:
		return mm * MmToPt
	case UnitPX:
		return mm * MmToPx
	default:
		return mm
	}
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// String prints the length the way the DSL and font descriptions spell it, e.g. "12pt".
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseRawLengthStr parses a DSL length string preserving its unit.
func ParseRawLengthStr(value string) Length {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// ParseLength parses a length and reports malformed input instead of silently returning zero.
func ParseLength(value string) (Length, error) {
	l := ParseRawLengthStr(value)
	if l.Value == 0 && l.Unit == UnitNone {
		num := strings.TrimSpace(value)
		if _, err := strconv.ParseFloat(num, 64); err != nil {
			return Length{}, fmt.Errorf("无法解析长度 %q", value)
		}
	}
	return l, nil
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves original author intent: either a factor (e.g., 1.2x) or an absolute length (e.g., 18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight accepts "1.4x" factors or absolute lengths; anything else yields the 1.4x default.
func ParseLineHeight(value string) LineHeightSpec {
	v := strings.TrimSpace(strings.ToLower(value))
	if strings.HasSuffix(v, "x") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && f > 0 {
			return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
		}
	}
	if l := ParseRawLengthStr(v); l.Unit != UnitNone && l.Value > 0 {
		return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
	}
	return LineHeightSpec{Kind: LineHeightFactor, Factor: 1.4}
}

// Resolve computes the absolute line height in target unit using the given fontSize (which carries its unit).
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * 1.4
	}
}

// Spacing 是行间距：绝对值（排版单位），或相对容器高度的比例（Relative 为 true 时 Value 取 0..1）。
type Spacing struct {
	Relative bool    `json:"relative,omitempty"`
	Value    float64 `json:"value"`
}

// Resolve 根据容器高度计算行间距。
func (s Spacing) Resolve(containerHeight float64) float64 {
	if s.Relative {
		return containerHeight * s.Value
	}
	return s.Value
}

// ParseSpacing 解析 "1.5mm"、"4%" 形式的行间距，target 为排版单位。
func ParseSpacing(value string, target Unit) Spacing {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil {
			return Spacing{Relative: true, Value: f / 100}
		}
		return Spacing{}
	}
	l := ParseRawLengthStr(v)
	if l.Unit == UnitNone {
		return Spacing{Value: l.Value}
	}
	return Spacing{Value: l.To(target)}
}
