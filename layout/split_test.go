package layout

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitWordsAttachesWhitespaceForward(t *testing.T) {
	got := SplitWords("hello  big world")
	want := []string{"hello", "  big", " world"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitWords = %q, want %q", got, want)
	}
	if SplitWords("") != nil {
		t.Fatalf("empty text yields no tokens")
	}
}

func TestSplittersReconstructInput(t *testing.T) {
	inputs := []string{
		"hello world",
		"  leading",
		"trailing  ",
		"tabs\tand\u00a0nbsp",
		"多语言 text 混排",
		"one",
		" ",
	}
	for name, split := range map[string]Splitter{"words": SplitWords, "uax14": SplitLineBreaks} {
		for _, in := range inputs {
			if got := strings.Join(split(in), ""); got != in {
				t.Fatalf("%s: join(split(%q)) = %q", name, in, got)
			}
		}
	}
}

func TestSplitLineBreaksMovesSpaceForward(t *testing.T) {
	got := SplitLineBreaks("hello world again")
	want := []string{"hello", " world", " again"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitLineBreaks = %q, want %q", got, want)
	}
}

func TestSplitLineBreaksBreaksIdeographs(t *testing.T) {
	got := SplitLineBreaks("排版引擎")
	if len(got) < 2 {
		t.Fatalf("expected break opportunities between ideographs, got %q", got)
	}
}
