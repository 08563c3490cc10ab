package layout

import (
	"strings"
	"unicode"
)

// Splitter 把一段文本切成词元。约定：所有词元按顺序拼接必须精确还原输入文本，
// 否则自动换行无法在保留分隔空白的前提下重新测量。
type Splitter func(text string) []string

// SplitWords 是默认切分：在每段连续空白前切开，空白归属于其后的词元。
//
//	"hello  big world" → ["hello", "  big", " world"]
func SplitWords(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if isSpace && !inSpace && i > start {
			tokens = append(tokens, text[start:i])
			start = i
		}
		inSpace = isSpace
	}
	return append(tokens, text[start:])
}

func trimLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
