package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// dump 不输出指针地址，便于比较两次排版的结构。
var dump = spew.ConfigState{Indent: " ", DisablePointerAddresses: true, DisableCapacities: true}

func TestClipKeepsSingleLine(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("hello world", Style{})}, 100, WrapClip)
	if len(lines) != 1 || lines[0].Text() != "hello world" || lines[0].Width != 11 {
		t.Fatalf("unexpected lines: %s", spew.Sdump(lines))
	}

	// 超宽也不截断
	lines = b.Layout([]*Run{NewRun("hello world", Style{})}, 3, WrapClip)
	if len(lines) != 1 || lines[0].Width != 11 {
		t.Fatalf("clip must not truncate: %s", spew.Sdump(lines))
	}
}

func TestWordWrapFusesEqualRuns(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	red := func() Style { return Style{Fill: &Fill{Color: Color{R: 255}}} }
	lines := b.Layout([]*Run{NewRun("AB", red()), NewRun("CD", red())}, 100, WrapWord)
	if len(lines) != 1 || len(lines[0].Runs) != 1 {
		t.Fatalf("expected one fused run: %s", spew.Sdump(lines))
	}
	r := lines[0].Runs[0]
	if r.Text() != "ABCD" || !r.Style().Equal(red()) {
		t.Fatalf("unexpected fused run: %s", spew.Sdump(r))
	}
}

func TestWordWrapKeepsOversizedToken(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("averylongsingleword", Style{})}, 5, WrapWord)
	if len(lines) != 1 || lines[0].Text() != "averylongsingleword" {
		t.Fatalf("oversized token must stay on one line: %s", spew.Sdump(lines))
	}
	if lines[0].Width <= 5 {
		t.Fatalf("line width %g should exceed target", lines[0].Width)
	}
}

func TestWordWrapGreedyFill(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("aaa bbb ccc ddd", Style{})}, 7, WrapWord)
	want := []string{"aaa bbb", "ccc ddd"}
	if got := lineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	for _, l := range lines {
		if l.Width > 7 {
			t.Fatalf("line %q width %g exceeds target", l.Text(), l.Width)
		}
	}
}

func TestWordWrapAcrossStyledRuns(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	bold := Style{FontWeight: Ptr("bold")}
	runs := []*Run{NewRun("one ", Style{}), NewRun("two", bold), NewRun(" three four", Style{})}
	lines := b.Layout(runs, 10, WrapWord)
	// "one " = 4, "two" bold = 4.5, " three" = 6
	want := []string{"one two", "three four"}
	if got := lineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q\n%s", got, want, spew.Sdump(lines))
	}
	first := lines[0]
	if len(first.Runs) != 2 || first.Runs[1].Text() != "two" || !first.Runs[1].Style().Equal(bold) {
		t.Fatalf("style boundaries lost: %s", spew.Sdump(first))
	}
	if first.Width != 8.5 {
		t.Fatalf("first line width = %g, want 8.5", first.Width)
	}
}

func TestWordWrapTrailingSpaceDoesNotAddBlankLine(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("SAMPLE-A \nSAMPLE-B", Style{})}, 8, WrapWord)
	want := []string{"SAMPLE-A", "SAMPLE-B"}
	if got := lineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestWordWrapSwallowsWhitespaceAcrossRuns(t *testing.T) {
	underline := Style{Underline: Ptr(true)}
	cases := []struct {
		runs []*Run
		want []string
	}{
		{[]*Run{NewRun("aaa ", Style{}), NewRun(" ", underline)}, []string{"aaa"}},
		{[]*Run{NewRun("aaa ", Style{}), NewRun("  ", underline), NewRun(" bb", Style{})}, []string{"aaa", "bb"}},
		{[]*Run{NewRun("aaa  ", Style{})}, []string{"aaa"}},
	}
	for _, c := range cases {
		b := newTestBreaker(&runeMeasurer{})
		lines := b.Layout(c.runs, 3, WrapWord)
		if got := lineTexts(lines); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("lines = %q, want %q", got, c.want)
		}
	}
}

func TestWordWrapEmptyRunDoesNotForceBreak(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("", Style{}), NewRun("averylongsingleword", Style{})}, 5, WrapWord)
	if got := lineTexts(lines); !reflect.DeepEqual(got, []string{"averylongsingleword"}) {
		t.Fatalf("empty run should not open a line of its own: %s", spew.Sdump(lines))
	}

	lines = b.Layout([]*Run{NewRun("ab", Style{}), NewRun("", Style{}), NewRun(" cd", Style{})}, 2, WrapWord)
	if got := lineTexts(lines); !reflect.DeepEqual(got, []string{"ab", "cd"}) {
		t.Fatalf("lines = %q", got)
	}
}

func TestSplitNewlinesTreatsLoneCarriageReturnAsBreak(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("a\r\nb\rc", Style{})}, 100, WrapClip)
	if got := lineTexts(lines); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("lines = %q", got)
	}
}

func TestWordWrapZeroWidthMakesProgress(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	for _, width := range []float64{0, -5} {
		lines := b.Layout([]*Run{NewRun("a b c", Style{})}, width, WrapWord)
		want := []string{"a", "b", "c"}
		if got := lineTexts(lines); !reflect.DeepEqual(got, want) {
			t.Fatalf("width %g: lines = %q, want %q", width, got, want)
		}
	}
}

func TestNewlinesSplitInEveryMode(t *testing.T) {
	for _, mode := range []WrapMode{WrapClip, WrapWord, WrapEllipsis} {
		b := newTestBreaker(&runeMeasurer{})
		lines := b.Layout([]*Run{NewRun("hello\nworld", Style{})}, 100, mode)
		want := []string{"hello", "world"}
		if got := lineTexts(lines); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: lines = %q, want %q", mode, got, want)
		}
		for _, l := range lines {
			for _, r := range l.Runs {
				if strings.ContainsAny(r.Text(), "\r\n") {
					t.Fatalf("%s: run still contains a newline: %q", mode, r.Text())
				}
			}
		}
	}
}

func TestSplitNewlinesPreservesStyle(t *testing.T) {
	bold := Style{FontWeight: Ptr("bold")}
	plain := NewRun("a", Style{})
	groups := SplitNewlines([]*Run{plain, NewRun("b\r\nc\n", bold)})
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups: %s", spew.Sdump(groups))
	}
	if groups[0][0] != plain {
		t.Fatalf("runs without newlines are reused")
	}
	if groups[0][1].Text() != "b" || !groups[1][0].Style().Equal(bold) || groups[1][0].Text() != "c" {
		t.Fatalf("unexpected fragments: %s", spew.Sdump(groups))
	}
	if len(groups[2]) != 1 || groups[2][0].Text() != "" {
		t.Fatalf("trailing newline yields an empty fragment: %s", spew.Sdump(groups[2]))
	}
}

func TestEllipsisTruncates(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("abcdefgh", Style{})}, 4, WrapEllipsis)
	if len(lines) != 1 {
		t.Fatalf("expected one line: %s", spew.Sdump(lines))
	}
	if got := lines[0].Text(); got != "abc…" {
		t.Fatalf("text = %q, want %q", got, "abc…")
	}
	if lines[0].Width > 4 {
		t.Fatalf("width %g exceeds target", lines[0].Width)
	}
}

func TestEllipsisFitsUnchanged(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	lines := b.Layout([]*Run{NewRun("abc", Style{})}, 3, WrapEllipsis)
	if lines[0].Text() != "abc" {
		t.Fatalf("fitting text must not be truncated: %q", lines[0].Text())
	}
}

func TestEllipsisDropsExhaustedRuns(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	bold := Style{FontWeight: Ptr("bold")}
	input := []*Run{NewRun("abcd", Style{}), NewRun("xy", bold)}
	lines := b.Layout(input, 4, WrapEllipsis)
	line := lines[0]
	if got := line.Text(); got != "abc…" {
		t.Fatalf("text = %q, want %q\n%s", got, "abc…", spew.Sdump(line))
	}
	if len(line.Runs) != 1 || !line.Runs[0].Style().Equal(Style{}) {
		t.Fatalf("bold run should have been dropped: %s", spew.Sdump(line))
	}
	if input[0].Text() != "abcd" || input[1].Text() != "xy" {
		t.Fatalf("caller runs must not be truncated in place")
	}
}

func TestEllipsisMarkerOnly(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	bold := Style{FontWeight: Ptr("bold")}
	lines := b.Layout([]*Run{NewRun("abc", bold)}, 0.5, WrapEllipsis)
	line := lines[0]
	if line.Text() != DefaultEllipsis || len(line.Runs) != 1 {
		t.Fatalf("expected bare marker: %s", spew.Sdump(line))
	}
	if !line.Runs[0].Style().Equal(bold) {
		t.Fatalf("marker should keep the first run's style")
	}
}

func TestEllipsisCustomMarker(t *testing.T) {
	b, err := NewBreaker(testDefaults, Options{Measurer: &runeMeasurer{}, Ellipsis: "..."})
	if err != nil {
		t.Fatal(err)
	}
	lines := b.Layout([]*Run{NewRun("abcdefgh", Style{})}, 6, WrapEllipsis)
	if got := lines[0].Text(); got != "abc..." {
		t.Fatalf("text = %q", got)
	}
}

func TestEmptyInputYieldsEmptyLine(t *testing.T) {
	for _, mode := range []WrapMode{WrapClip, WrapWord, WrapEllipsis} {
		b := newTestBreaker(&runeMeasurer{})
		lines := b.Layout(nil, 10, mode)
		if len(lines) != 1 || len(lines[0].Runs) != 0 || lines[0].Width != 0 {
			t.Fatalf("%s: unexpected lines %s", mode, spew.Sdump(lines))
		}
	}
}

func TestClipReconstructsText(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	input := "first line\nsecond  line\n\nlast"
	runs := []*Run{NewRun(input[:7], Style{}), NewRun(input[7:20], Style{FontWeight: Ptr("bold")}), NewRun(input[20:], Style{})}
	lines := b.Layout(runs, 3, WrapClip)
	if got := strings.Join(lineTexts(lines), "\n"); got != input {
		t.Fatalf("reconstruction failed: %q", got)
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	m := &runeMeasurer{}
	b := newTestBreaker(m)
	runs := []*Run{NewRun("the quick brown ", Style{}), NewRun("fox jumps", Style{FontStyle: Ptr("italic")})}
	first := b.Layout(runs, 9, WrapWord)
	calls := m.calls
	second := b.Layout(runs, 9, WrapWord)
	if dump.Sdump(first) != dump.Sdump(second) {
		t.Fatalf("layout not idempotent:\n%s\n%s", dump.Sdump(first), dump.Sdump(second))
	}
	if calls == 0 {
		t.Fatalf("first pass should measure")
	}
}

func TestWordWrapEveryWordPlacedOnce(t *testing.T) {
	b := newTestBreaker(&runeMeasurer{})
	text := "lorem ipsum dolor sit amet consectetur adipiscing elit sed do"
	for _, width := range []float64{0, 4, 11, 20, 1000} {
		lines := b.Layout([]*Run{NewRun(text, Style{})}, width, WrapWord)
		var words []string
		for _, l := range lines {
			words = append(words, strings.Fields(l.Text())...)
			if l.Width > width && len(strings.Fields(l.Text())) > 1 {
				t.Fatalf("width %g: line %q (%g) exceeds target", width, l.Text(), l.Width)
			}
		}
		if !reflect.DeepEqual(words, strings.Fields(text)) {
			t.Fatalf("width %g: words = %q", width, words)
		}
	}
}

func TestNewBreakerRequiresMeasurer(t *testing.T) {
	if _, err := NewBreaker(testDefaults, Options{}); err == nil {
		t.Fatalf("expected error without measurer")
	}
}

func TestParseWrapMode(t *testing.T) {
	cases := map[string]WrapMode{
		"word":       WrapWord,
		"Break-Word": WrapWord,
		"ellipsis":   WrapEllipsis,
		"truncate":   WrapEllipsis,
		"clip":       WrapClip,
		"nowrap":     WrapClip,
		"bogus":      WrapClip,
		"":           WrapClip,
	}
	for in, want := range cases {
		if got := ParseWrapMode(in); got != want {
			t.Fatalf("ParseWrapMode(%q) = %s, want %s", in, got, want)
		}
	}
}
