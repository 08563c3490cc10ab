package layout

import (
	"strings"
	"unicode"

	"github.com/go-text/typesetting/segmenter"
)

// SplitLineBreaks 按 UAX #14 断行机会切分，适合 CJK 等没有空格分词的文本。
// UAX #14 把空白留在前一段末尾，这里把它挪到下一段开头，保持与 SplitWords 相同的约定。
func SplitLineBreaks(text string) []string {
	if text == "" {
		return nil
	}
	var seg segmenter.Segmenter
	seg.Init([]rune(text))
	iter := seg.LineIterator()

	var tokens []string
	carry := ""
	for iter.Next() {
		s := string(iter.Line().Text)
		body := strings.TrimRightFunc(s, unicode.IsSpace)
		tok := carry + body
		carry = s[len(body):]
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if carry != "" {
		tokens = append(tokens, carry)
	}
	return tokens
}
