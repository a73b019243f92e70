package planner

import (
	"fmt"

	"github.com/John-Robertt/EpRen/internal/domain"
	"github.com/John-Robertt/EpRen/internal/pattern"
)

// Result 是一轮规划的完整产出。三个序列互不重叠，
// 且 Entries/Skipped/Unmatched 各自保持输入顺序。
type Result struct {
	// Entries 是待执行的重命名（no-op 已剔除）。
	Entries []domain.RenameEntry
	// Skipped 是新名等于旧名的文件（幂等：已在目标形态）。
	Skipped []string
	// Unmatched 是进不了计划的文件（no_match / empty_title）。
	Unmatched []domain.Unmatched
}

// Plan 对一组文件名做一轮规划。纯函数：不做 I/O，相同输入给出相同输出。
//
// 规则（硬约束）：
// - 每个文件按链序尝试模式，命中即停；零命中 => unmatched，继续下一个
// - 标题优先级：查表（1-based 集号，越界回退）> 文件名派生
// - 派生标题为空 => unmatched（不生成 "_S04E02.mkv" 这种退化名）
// - 新名与旧名相同 => skipped（静默剔除出计划，但报告可见）
// - 链内零命中不会自动换链：flexible 回退由上层显式发起第二轮
func Plan(files []domain.MediaFile, chain []pattern.NamingPattern, ctx domain.EpisodeContext) Result {
	var out Result

	for _, f := range files {
		m, ok := pattern.MatchChain(chain, f.Name)
		if !ok {
			out.Unmatched = append(out.Unmatched, domain.Unmatched{
				Name: f.Name,
				Kind: domain.UnmatchedNoMatch,
			})
			continue
		}

		raw := deriveTitle(m, ctx)
		if raw == "" {
			out.Unmatched = append(out.Unmatched, domain.Unmatched{
				Name: f.Name,
				Kind: domain.UnmatchedEmptyTitle,
			})
			continue
		}

		title := pattern.Normalize(raw)
		newName := compose(title, m, ctx)
		if newName == f.Name {
			out.Skipped = append(out.Skipped, f.Name)
			continue
		}

		out.Entries = append(out.Entries, domain.RenameEntry{
			OldName: f.Name,
			NewName: newName,
			Episode: m.Episode,
			Title:   title,
			Pattern: m.Pattern,
		})
	}
	return out
}

// deriveTitle 实现标题优先级：查表 > title 组 / 后缀派生。
func deriveTitle(m pattern.Match, ctx domain.EpisodeContext) string {
	if m.HasEpisode {
		if t, ok := ctx.Title(m.Episode); ok {
			return t
		}
		if m.Source == pattern.FromSuffix {
			if t := pattern.TitleFromSuffix(m.Suffix); t != "" {
				return t
			}
			// 后缀全是发行/年份标记：标题在季集标记之前
			// （已在目标形态的文件名就是这种形状）。
			return pattern.TitleFromGroup(m.Title)
		}
		return pattern.TitleFromGroup(m.Title)
	}

	// 电影：标题要做噪音清洗。上下文没给年份时保留标题里的裸年份。
	return pattern.CleanMovieTitle(m.Title, m.Suffix, ctx.Year == "")
}

// compose 拼装目标文件名：
// 剧集 {title}_{SxxEyy}[_(year)].{ext}，电影 {Title}[_(year)].{ext}。
// 集号恒定两位零填充；扩展名取自匹配（已小写）。
func compose(title string, m pattern.Match, ctx domain.EpisodeContext) string {
	name := title
	if m.HasEpisode {
		label := ctx.SeasonLabel
		if label == "" {
			// 没有全局季上下文才回退到匹配出的季号。
			label = domain.NewSeasonLabel(m.Season)
		}
		name = fmt.Sprintf("%s_%sE%02d", title, label, m.Episode)
	}
	if ctx.Year != "" {
		name += "_(" + ctx.Year + ")"
	}
	return name + "." + m.Ext
}
