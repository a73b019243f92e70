package domain

const (
	// UnmatchedNoMatch 表示文件名没有命中链上任何模式。
	UnmatchedNoMatch = "no_match"
	// UnmatchedEmptyTitle 表示模式命中但派生标题为空。
	// 宁可 unmatched，也不生成 "_S04E02.mkv" 这种退化文件名。
	UnmatchedEmptyTitle = "empty_title"
	// UnmatchedBadExt 表示扩展名不在允许列表内（目录列举阶段产生）。
	UnmatchedBadExt = "bad_ext"
)

// Unmatched 描述一个进不了重命名计划的文件。
// 纯信息性：同一轮规划内不会自动重试（flexible 回退是上层显式的第二轮）。
type Unmatched struct {
	Name string
	Kind string // no_match | empty_title | bad_ext
}
