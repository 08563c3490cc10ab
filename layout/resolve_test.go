package layout

import "testing"

func TestResolveInheritsDefaults(t *testing.T) {
	d := Defaults{
		Fill:         Solid(Color{R: 10}),
		Underline:    true,
		OutlineWidth: 2,
		OutlineColor: Color{B: 9},
		FontStyle:    "italic",
		FontWeight:   "bold",
	}
	a := Resolve(Style{}, d)
	if a.Fill != d.Fill || !a.Underline || a.OutlineWidth != 2 || a.OutlineColor != d.OutlineColor {
		t.Fatalf("defaults not inherited: %+v", a)
	}
	if a.FontStyle != "italic" || a.FontWeight != "bold" {
		t.Fatalf("font defaults not inherited: %+v", a)
	}
}

func TestResolveOverridesWin(t *testing.T) {
	d := Defaults{Underline: true, FontWeight: "bold"}
	a := Resolve(Style{Underline: Ptr(false), FontWeight: Ptr("normal"), ShadowOffsetX: Ptr(1.5)}, d)
	if a.Underline {
		t.Fatalf("explicit false override must win over default true")
	}
	if a.FontWeight != "normal" || a.ShadowOffsetX != 1.5 {
		t.Fatalf("overrides not applied: %+v", a)
	}
}

func TestAttributesFlags(t *testing.T) {
	if (Attributes{}).HasShadow() {
		t.Fatalf("zero shadow fields must not enable shadow")
	}
	if !(Attributes{ShadowOffsetY: -1}).HasShadow() || !(Attributes{ShadowBlur: 2}).HasShadow() {
		t.Fatalf("any non-zero blur or offset enables shadow")
	}
	if (Attributes{OutlineColor: Color{R: 255}}).HasOutline() {
		t.Fatalf("zero outline width means no outline")
	}
	if !(Attributes{OutlineWidth: 0.5}).HasOutline() {
		t.Fatalf("positive outline width enables outline")
	}
}
