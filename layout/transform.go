package layout

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// applyTransform 按 transform 属性转换大小写，大小写规则取决于段落语言。
func applyTransform(text, transform string, tag language.Tag) string {
	switch strings.ToLower(strings.TrimSpace(transform)) {
	case "upper", "uppercase":
		return cases.Upper(tag).String(text)
	case "lower", "lowercase":
		return cases.Lower(tag).String(text)
	case "title", "capitalize":
		return cases.Title(tag).String(text)
	default:
		return text
	}
}

// parseLang 解析 lang 属性，无法识别时退回 und。
func parseLang(v string) language.Tag {
	v = strings.TrimSpace(v)
	if v == "" {
		return language.Und
	}
	tag, err := language.Parse(v)
	if err != nil {
		return language.Und
	}
	return tag
}
