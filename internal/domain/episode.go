package domain

import "fmt"

// MediaType 区分两种重命名模式：剧集（SxxEyy）与电影（只有标题）。
type MediaType string

const (
	MediaTV    MediaType = "tv"
	MediaMovie MediaType = "movie"
)

// EpisodeContext 是一次 run 的季/年/标题查表上下文。
//
// 约束：
// - 构造一次，之后只读（planner 不得修改）
// - SeasonLabel 必须是预格式化的 "S" + 两位季号（例如 "S04"）；
//   有全局季上下文时 planner 不再从文件名里重推季号
// - Titles 按集号 1-based 索引（第 N 集对应 Titles[N-1]）；越界视为未命中
type EpisodeContext struct {
	SeasonLabel string
	Season      int
	Year        string
	Titles      []string
}

// NewSeasonLabel 把季号格式化为 "S%02d"。
func NewSeasonLabel(season int) string {
	return fmt.Sprintf("S%02d", season)
}

// Title 按 1-based 集号查标题。查表缺失或越界返回 ok=false，
// 由调用方回退到文件名派生标题（查表失败永远不是致命错误）。
func (c EpisodeContext) Title(episode int) (string, bool) {
	if episode < 1 || episode > len(c.Titles) {
		return "", false
	}
	t := c.Titles[episode-1]
	if t == "" {
		return "", false
	}
	return t, true
}
