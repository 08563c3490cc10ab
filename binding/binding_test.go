package binding

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":"Ada","age":36.5},"items":[{"sku":"A1"},{"sku":"B2"}],"grid":[[1,2],[3,4]],"ok":true,"none":null}`)
	cases := map[string]string{
		"Hello ${user.name}":          "Hello Ada",
		"${ user.name }!":             "Ada!",
		"age ${user.age}":             "age 36.5",
		"${items[1].sku}":             "B2",
		"${grid[1][0]}":               "3",
		"${ok}/${none}":               "true/",
		"keep ${user.missing}":        "keep ${user.missing}",
		"keep ${items[9].sku}":        "keep ${items[9].sku}",
		"no placeholders":             "no placeholders",
		"${user.name} & ${user.name}": "Ada & Ada",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("hi ${name}", nil); got != "hi ${name}" {
		t.Fatalf("nil data should leave placeholders, got %q", got)
	}
}

func TestMissing(t *testing.T) {
	data := decode(t, `{"a":{"b":1}}`)
	got := Missing("${a.b} ${x} ${a.c} ${x}", data)
	if want := []string{"x", "a.c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing = %q, want %q", got, want)
	}
	if got := Missing("${a.b}", data); len(got) != 0 {
		t.Fatalf("expected nothing missing, got %q", got)
	}
}

func TestLookupRejectsMalformedPaths(t *testing.T) {
	data := decode(t, `{"a":[1,2]}`)
	for _, path := range []string{"", "a[", "a[x]", "a]0[", "a..b", "a.b"} {
		if _, ok := Lookup(data, path); ok {
			t.Fatalf("Lookup(%q) should fail", path)
		}
	}
	if v, ok := Lookup(data, "a[0]"); !ok || v != 1.0 {
		t.Fatalf("Lookup(a[0]) = %v, %v", v, ok)
	}
}
