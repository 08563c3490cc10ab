package layout

// BuildOptions 配置排版阶段所需的依赖，例如测量后端与断词策略。
type BuildOptions struct {
	Measurer Measurer
	Splitter Splitter // 为空时使用 SplitWords
	Ellipsis string   // 为空时使用 DefaultEllipsis
	Strict   bool     // 存在无法解析的 ${} 占位符时报错
}
