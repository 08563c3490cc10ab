package layout

// Fuse 合并相邻且样式覆盖值完全相同的 run（文本拼接、宽度相加），
// 避免下划线、删除线在 run 边界出现接缝或重叠。
// 返回新的切片与 run 副本，输入不会被修改；顺序保持不变。
func Fuse(runs []*Run) []*Run {
	out := make([]*Run, 0, len(runs))
	if len(runs) == 0 {
		return out
	}
	cur := runs[0].clone()
	for _, r := range runs[1:] {
		if cur.style.Equal(r.style) {
			cur.text += r.text
			cur.width += r.width
			cur.measured = cur.measured && r.measured
			continue
		}
		out = append(out, cur)
		cur = r.clone()
	}
	return append(out, cur)
}
