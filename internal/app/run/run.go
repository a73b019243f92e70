package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/John-Robertt/EpRen/internal/app/planner"
	"github.com/John-Robertt/EpRen/internal/config"
	"github.com/John-Robertt/EpRen/internal/domain"
	"github.com/John-Robertt/EpRen/internal/infra/fsx"
	"github.com/John-Robertt/EpRen/internal/infra/httpx"
	"github.com/John-Robertt/EpRen/internal/pattern"
	"github.com/John-Robertt/EpRen/internal/provider"
	"github.com/John-Robertt/EpRen/internal/scan"
)

// ReportFileName 是 apply 模式下落盘的报告文件名。
const ReportFileName = "report.json"

// Execute 执行一次 run（dry-run/apply），并返回对外稳定的 RunReport。
//
// 错误分层：
// - 致命（run 直接结束）：目录无效、锁被占、代理配置无效
// - 降级（记录后继续）：集标题查询失败（标题回退到文件名派生）
// - 条目级（单条失败不影响其他）：单个文件的重命名失败
func Execute(ctx context.Context, eff config.EffectiveConfig, reg provider.Registry, obs Observer, confirmer Confirmer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:        eff.Path,
		DryRun:      !eff.Apply,
		TitleSource: "filename",
		StartedAt:   started,
		Items:       make([]domain.ItemResult, 0, 64),
	}

	client, err := httpx.NewScrapeClient(eff.ProxyURL)
	if err != nil {
		return finish(&rr, eff, syntheticFailed(domain.ErrCodeConfigInvalid, fmt.Sprintf("proxy.url 无效：%v", err)))
	}

	// apply 模式先拿目录锁：同一目录同一时刻只允许一个实例动文件。
	if eff.Apply {
		release, lerr := fsx.AcquireLock(eff.Path)
		if lerr != nil {
			var lh *fsx.LockHeldError
			if errors.As(lerr, &lh) {
				return finish(&rr, eff, syntheticFailed(domain.ErrCodeLockHeld, lerr.Error()))
			}
			return finish(&rr, eff, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("获取目录锁失败：%v", lerr)))
		}
		defer release()
	}

	scanStarted := time.Now()
	listing, err := scan.ListDir(eff.Path)
	if err != nil {
		return finish(&rr, eff, syntheticFailed(domain.ErrCodeInvalidDirectory, err.Error()))
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"files":   len(listing.Files),
			"skipped": len(listing.Skipped),
		}, time.Since(scanStarted))
	}

	// 集标题查询：失败降级为文件名派生，原因写入报告。
	ectx := domain.EpisodeContext{
		SeasonLabel: eff.SeasonLabel,
		Season:      eff.Season,
		Year:        eff.Year,
	}
	if eff.IMDbID != "" && eff.MediaType == domain.MediaTV {
		fetchStarted := time.Now()
		titles, website, ferr := provider.FetchTitles(ctx, reg, eff.Provider,
			provider.Query{ID: eff.IMDbID, Season: eff.Season}, client)
		fields := map[string]any{"provider": eff.Provider}
		if ferr != nil {
			rr.LookupError = ferr.Error()
			fields["error"] = ferr.Error()
		} else {
			ectx.Titles = titles
			rr.TitleSource = "provider"
			rr.Website = website
			fields["titles"] = len(titles)
		}
		if obs != nil {
			obs.OnPhaseDone("fetch", fields, time.Since(fetchStarted))
		}
	}

	planStarted := time.Now()
	result, pass := plan(listing.Files, eff.MediaType, ectx)
	rr.Pass = pass
	if obs != nil {
		obs.OnPhaseDone("plan", map[string]any{
			"pass":      pass,
			"entries":   len(result.Entries),
			"skipped":   len(result.Skipped),
			"unmatched": len(result.Unmatched),
		}, time.Since(planStarted))
	}

	// 确认环节只在 apply 且确有条目时出现；拒绝 => 全部 declined，不动文件。
	approved := true
	if eff.Apply && len(result.Entries) > 0 && confirmer != nil {
		approved = confirmer.Confirm(result.Entries)
	}

	execStarted := time.Now()
	items := executeItems(eff, listing, result, approved, obs)
	rr.Items = append(rr.Items, items...)
	if obs != nil && eff.Apply {
		obs.OnPhaseDone("exec", map[string]any{
			"entries":  len(result.Entries),
			"approved": approved,
		}, time.Since(execStarted))
	}

	return finish(&rr, eff)
}

// plan 按媒体类型选择模式链。tv 的 flexible 链是显式第二轮：
// 只有第一轮（standard）零命中且第二轮确有产出时才采用。
func plan(files []domain.MediaFile, mt domain.MediaType, ectx domain.EpisodeContext) (planner.Result, string) {
	if mt == domain.MediaMovie {
		return planner.Plan(files, pattern.MovieChain(), ectx), "movie"
	}

	std := planner.Plan(files, pattern.StandardChain(), ectx)
	if len(std.Entries) > 0 {
		return std, "standard"
	}
	flex := planner.Plan(files, pattern.FlexibleChain(), ectx)
	if len(flex.Entries) > 0 {
		return flex, "flexible"
	}
	return std, "standard"
}

// executeItems 把规划结果展开成逐文件的报告条目，保持列举顺序；
// 尾部追加扩展名不合法的文件（bad_ext）。
// apply 且通过确认时逐条执行重命名：单条失败记录后继续。
func executeItems(eff config.EffectiveConfig, listing scan.Listing, result planner.Result, approved bool, obs Observer) []domain.ItemResult {
	entryByOld := make(map[string]domain.RenameEntry, len(result.Entries))
	for _, e := range result.Entries {
		entryByOld[e.OldName] = e
	}
	skipped := make(map[string]struct{}, len(result.Skipped))
	for _, n := range result.Skipped {
		skipped[n] = struct{}{}
	}
	unmatchedByName := make(map[string]domain.Unmatched, len(result.Unmatched))
	for _, u := range result.Unmatched {
		unmatchedByName[u.Name] = u
	}

	total := len(listing.Files) + len(listing.Skipped)
	items := make([]domain.ItemResult, 0, total)
	idx := 0

	emit := func(it domain.ItemResult, dur time.Duration) {
		idx++
		items = append(items, it)
		if obs != nil {
			obs.OnItemDone(idx, total, it, dur)
		}
	}

	for _, f := range listing.Files {
		if e, ok := entryByOld[f.Name]; ok {
			oneStarted := time.Now()
			emit(renameItem(eff, e, approved), time.Since(oneStarted))
			continue
		}
		if _, ok := skipped[f.Name]; ok {
			emit(domain.ItemResult{Old: f.Name, New: f.Name, Status: domain.StatusSkipped}, 0)
			continue
		}
		if u, ok := unmatchedByName[f.Name]; ok {
			emit(unmatchedItem(u), 0)
			continue
		}
		// planner 对每个输入恰好给一个归属；走到这里说明上游破坏了该不变量。
		emit(domain.ItemResult{
			Old:       f.Name,
			Status:    domain.StatusFailed,
			ErrorCode: domain.ErrCodeIOFailed,
			ErrorMsg:  "规划结果缺少该文件的归属",
		}, 0)
	}

	for _, name := range listing.Skipped {
		emit(unmatchedItem(domain.Unmatched{Name: name, Kind: domain.UnmatchedBadExt}), 0)
	}

	return items
}

func renameItem(eff config.EffectiveConfig, e domain.RenameEntry, approved bool) domain.ItemResult {
	it := domain.ItemResult{
		Old:     e.OldName,
		New:     e.NewName,
		Episode: e.Episode,
	}

	if !eff.Apply {
		it.Status = domain.StatusPlanned
		return it
	}
	if !approved {
		it.Status = domain.StatusDeclined
		return it
	}

	src := filepath.Join(eff.Path, e.OldName)
	dst := filepath.Join(eff.Path, e.NewName)
	if err := fsx.RenameNoReplace(src, dst); err != nil {
		it.Status = domain.StatusFailed
		it.ErrorCode = domain.ErrCodeRenameFailed
		it.ErrorMsg = err.Error()
		return it
	}
	it.Status = domain.StatusRenamed
	return it
}

func unmatchedItem(u domain.Unmatched) domain.ItemResult {
	it := domain.ItemResult{
		Old:    u.Name,
		Status: domain.StatusUnmatched,
	}
	switch u.Kind {
	case domain.UnmatchedEmptyTitle:
		it.ErrorCode = domain.ErrCodeEmptyTitle
		it.ErrorMsg = "匹配成功但派生不出标题；请重命名文件或提供集标题查表"
	case domain.UnmatchedBadExt:
		it.ErrorCode = domain.ErrCodeBadExt
		it.ErrorMsg = "扩展名不在允许列表（mkv/mp4/avi）"
	default:
		it.ErrorCode = domain.ErrCodePatternMismatch
		it.ErrorMsg = "文件名不符合任何已知命名模式"
	}
	return it
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}

// finish 收尾：附加合成失败项（若有）、统一 UTC、汇总 summary，
// apply 模式下把 report.json 原子落盘到目标目录。
func finish(rr *domain.RunReport, eff config.EffectiveConfig, extra ...domain.ItemResult) domain.RunReport {
	rr.Items = append(rr.Items, extra...)
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()

	if eff.Apply && len(extra) == 0 {
		if b, err := json.MarshalIndent(*rr, "", "  "); err == nil {
			if werr := fsx.WriteFileAtomicReplace(eff.Path, ReportFileName, b); werr != nil {
				rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("写入 %s 失败：%v", ReportFileName, werr)))
				rr.Finalize()
			}
		}
	}
	return *rr
}
