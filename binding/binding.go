package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	out, _ := interpolate(text, data)
	return out
}

// Missing 返回文本中无法解析的占位符路径，按出现顺序去重。
func Missing(text string, data any) []string {
	_, missing := interpolate(text, data)
	return missing
}

func interpolate(text string, data any) (string, []string) {
	var missing []string
	seen := map[string]bool{}
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if val, ok := Lookup(data, path); ok {
			return format(val)
		}
		if !seen[path] {
			seen[path] = true
			missing = append(missing, path)
		}
		return match
	})
	return out, missing
}

// Lookup 按 a.b[0].c 形式的路径在 JSON 解码后的数据中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			arr, isArr := current.([]any)
			if !isArr || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// parseSegment 拆分 "items[2][0]" 为名字与下标列表。
func parseSegment(segment string) (string, []int, bool) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil, segment != ""
	}
	name, rest := segment[:i], segment[i:]
	var indexes []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

// format 输出值的文本形式；JSON 数字按最短形式输出。
func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
