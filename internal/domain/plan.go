package domain

// RenameEntry 规划一次同目录内的重命名（只描述 old/new；真正执行由上层决定）。
//
// 不变量：
// - NewName 非空，保留原扩展名（小写，且在允许列表内）
// - NewName != OldName（no-op 条目在规划阶段就被剔除）
type RenameEntry struct {
	OldName string
	NewName string

	// Episode 是匹配到的集号（电影模式为 0）。
	Episode int
	// Title 是最终采用的标题（已规范化；用于展示与追溯）。
	Title string
	// Pattern 是命中的模式名（"standard" / "flexible" / "movie"）。
	Pattern string
}
