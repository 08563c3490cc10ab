package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置 Go 字体族，按 [regular, bold, italic, bolditalic] 排列。
var families = map[string][4][]byte{
	"go":     {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
	"gomono": {gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF},
}

var faces = map[string][]byte{
	"goregular":        goregular.TTF,
	"gobold":           gobold.TTF,
	"goitalic":         goitalic.TTF,
	"gobolditalic":     gobolditalic.TTF,
	"gomono":           gomono.TTF,
	"gomonobold":       gomonobold.TTF,
	"gomonoitalic":     gomonoitalic.TTF,
	"gomonobolditalic": gomonobolditalic.TTF,
}

// IsEmbedded 报告 src 是否指向内置字体（embed: 前缀）。
func IsEmbedded(src string) bool {
	return strings.HasPrefix(src, "embed:")
}

// Load 返回内置字体的字节数据，path 可写为 "embed:goregular"、"goregular" 或 "goregular.ttf"；
// 字体族名 "go"/"gomono" 返回常规体。
func Load(path string) ([]byte, error) {
	name := normalize(path)
	if data, ok := faces[name]; ok {
		return data, nil
	}
	if fam, ok := families[name]; ok {
		return fam[0], nil
	}
	return nil, fmt.Errorf("读取内置字体 %s 失败: 可用字体 %s", path, strings.Join(Names(), ", "))
}

// Variant 返回内置字体所在字体族的粗体/斜体变体；src 不是内置字体时返回 false。
func Variant(src string, bold, italic bool) ([]byte, bool) {
	name := normalize(src)
	family := "go"
	if strings.HasPrefix(name, "gomono") {
		family = "gomono"
	}
	if _, ok := faces[name]; !ok {
		if _, ok := families[name]; !ok {
			return nil, false
		}
	}
	idx := 0
	if bold {
		idx |= 1
	}
	if italic {
		idx |= 2
	}
	return families[family][idx], true
}

// Names 返回所有内置字体名（已排序）。
func Names() []string {
	out := make([]string, 0, len(faces))
	for name := range faces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalize(path string) string {
	name := strings.TrimPrefix(strings.TrimSpace(path), "embed:")
	name = strings.TrimSuffix(strings.ToLower(name), ".ttf")
	return strings.ReplaceAll(name, "-", "")
}
