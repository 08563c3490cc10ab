package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/richtext/dsl"
)

const sampleDSL = `
doc Papyrus v1 {
  meta {
    title: "Release notes"
    keywords: [
      "typesetting"
      "runs"
    ]
  }

  resources {
    font Body {
      src: "embed:goregular"
    }

    color Accent = #0F62FE
    gradient Sunset { from: #FF5F6D; to: Accent; angle: 90 }
    style Alert extends Strong { color: #C00 underline: on }
  }

  page A4 portrait margin 18mm {
    text Body size 12pt width 80% spacing -1mm wrap ellipsis {
      "Hello, "
      span Alert transform upper { "${user.name}" }
      br
      "!"
    }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Papyrus" {
		t.Fatalf("expected document name Papyrus, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}

	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	for i, want := range []string{"meta", "resources", "page"} {
		if got := doc.Sections[i].Kind(); got != want {
			t.Fatalf("section %d kind = %s, want %s", i, got, want)
		}
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	if got := title.Value.Text(); got != "Release notes" {
		t.Fatalf("expected title, got %s", got)
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil {
		t.Fatalf("expected keywords array assignment")
	}
	if got := keywords.Value.Strings(); len(got) != 2 || got[1] != "runs" {
		t.Fatalf("unexpected keywords %q", got)
	}
}

func TestParseResources(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	stmts := doc.Sections[1].Resources.Block.Statements
	if len(stmts) != 4 {
		t.Fatalf("expected 4 resource statements, got %d", len(stmts))
	}

	color := stmts[1].Command
	if color == nil || color.Name != "color" || len(color.Args) != 3 {
		t.Fatalf("unexpected color command: %+v", stmts[1])
	}
	if color.Args[2].Type != "Color" || color.Args[2].Value != "#0F62FE" {
		t.Fatalf("color value should lex as Color: %+v", color.Args[2])
	}

	gradient := stmts[2].Command
	if gradient == nil || gradient.Block == nil || len(gradient.Block.Statements) != 3 {
		t.Fatalf("gradient block should hold 3 assignments: %+v", stmts[2])
	}
	if got := gradient.Block.Statements[1].Assignment.Value.Text(); got != "Accent" {
		t.Fatalf("gradient stop should reference Accent, got %s", got)
	}

	style := stmts[3].Command
	if style == nil || len(style.Args) != 3 || style.Args[1].Value != "extends" {
		t.Fatalf("unexpected style args: %+v", style)
	}
	if len(style.Block.Statements) != 2 {
		t.Fatalf("style body should have 2 assignments, got %d", len(style.Block.Statements))
	}
}

func TestParsePageAndText(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	page := doc.Sections[2].Page
	if page.Spec.Size != "A4" {
		t.Fatalf("expected page size A4, got %s", page.Spec.Size)
	}
	if got := tokensToString(page.Spec.Params); got != "portrait margin 18mm" {
		t.Fatalf("unexpected page params: %s", got)
	}

	text := page.Block.Statements[0].Command
	if text == nil || text.Name != "text" {
		t.Fatalf("expected text command, got %+v", page.Block.Statements[0])
	}
	if got := tokensToString(text.Args); got != "Body size 12pt width 80% spacing -1mm wrap ellipsis" {
		t.Fatalf("unexpected text args: %s", got)
	}
	if text.Args[4].Type != "Number" || text.Args[6].Type != "Number" {
		t.Fatalf("percentages and negative lengths lex as numbers: %+v %+v", text.Args[4], text.Args[6])
	}

	body := text.Block.Statements
	if len(body) != 4 {
		t.Fatalf("expected 4 statements in text body, got %d", len(body))
	}
	if body[0].Text == nil || string(body[0].Text.Value) != "Hello, " {
		t.Fatalf("expected literal, got %+v", body[0])
	}
	span := body[1].Command
	if span == nil || span.Name != "span" || span.Block == nil {
		t.Fatalf("expected span command, got %+v", body[1])
	}
	if got := string(span.Block.Statements[0].Text.Value); !strings.Contains(got, "${user.name}") {
		t.Fatalf("expected interpolation in span literal, got %s", got)
	}
	if br := body[2].Command; br == nil || br.Name != "br" || br.Block != nil || len(br.Args) != 0 {
		t.Fatalf("expected bare br command, got %+v", body[2])
	}
	if span.Pos.Line != 24 {
		t.Fatalf("span position line = %d, want 24", span.Pos.Line)
	}
}

func TestParseEscapesAndComments(t *testing.T) {
	doc, err := dsl.ParseString(`doc T v1 {
  // line comment
  page A5 { /* block */ text { "tab\there \"quoted\"" } # hash comment
  }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	text := doc.Sections[0].Page.Block.Statements[0].Command
	if got := string(text.Block.Statements[0].Text.Value); got != "tab\there \"quoted\"" {
		t.Fatalf("unexpected literal %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		`doc T v1 { page A4 { text { "unterminated } } }`,
		`doc T { }`,
		`page A4 { }`,
	} {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected parse error for %q", src)
		}
	}
}

func tokensToString(parts []*dsl.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
