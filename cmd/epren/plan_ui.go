package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/EpRen/internal/app/run"
	"github.com/John-Robertt/EpRen/internal/config"
	"github.com/John-Robertt/EpRen/internal/domain"
)

var (
	_ run.Observer  = (*planUI)(nil)
	_ run.Confirmer = (*planUI)(nil)
)

// planUI 是交互终端的进度/计划展示与执行前确认。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - 确认环节展示完整计划，默认答案是 No（误触安全）
type planUI struct {
	w  io.Writer
	in *bufio.Reader

	mu        sync.Mutex
	startedAt time.Time
}

func newPlanUI(w io.Writer, in io.Reader) *planUI {
	return &planUI{w: w, in: bufio.NewReader(in)}
}

func (p *planUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "dry-run"
	modeHint := " (只规划，不改名)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	fmt.Fprintf(p.w, "[%s] epren run (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  media_type: %s\n", eff.MediaType)
	if eff.MediaType == domain.MediaTV {
		fmt.Fprintf(p.w, "  season: %s\n", eff.SeasonLabel)
	}
	if eff.Year != "" {
		fmt.Fprintf(p.w, "  year: %s\n", eff.Year)
	}
	if eff.IMDbID != "" {
		fmt.Fprintf(p.w, "  titles: %s (%s)\n", eff.Provider, eff.IMDbID)
	} else {
		fmt.Fprintf(p.w, "  titles: 文件名派生\n")
	}
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	fmt.Fprintln(p.w)
}

func (p *planUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: files=%d skipped=%d (%s)\n",
			intField(fields, "files"), intField(fields, "skipped"), formatShortDuration(dur),
		)
	case "fetch":
		if e, ok := fields["error"]; ok {
			fmt.Fprintf(p.w, "集标题: 查询失败，回退到文件名派生：%s (%s)\n",
				truncate(fmt.Sprint(e), 160), formatShortDuration(dur))
			return
		}
		fmt.Fprintf(p.w, "集标题: provider=%v titles=%d (%s)\n",
			fields["provider"], intField(fields, "titles"), formatShortDuration(dur),
		)
	case "plan":
		fmt.Fprintf(p.w, "规划: pass=%v entries=%d skipped=%d unmatched=%d (%s)\n\n",
			fields["pass"],
			intField(fields, "entries"),
			intField(fields, "skipped"),
			intField(fields, "unmatched"),
			formatShortDuration(dur),
		)
	case "exec":
		fmt.Fprintf(p.w, "\n执行: entries=%d approved=%v (%s)\n",
			intField(fields, "entries"), fields["approved"], formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *planUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch res.Status {
	case domain.StatusRenamed:
		fmt.Fprintf(p.w, "[%d/%d] OK   %s -> %s (%s)\n", idx, total, res.Old, res.New, formatShortDuration(dur))
	case domain.StatusPlanned:
		fmt.Fprintf(p.w, "[%d/%d] PLAN %s -> %s\n", idx, total, res.Old, res.New)
	case domain.StatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] SKIP %s (已是目标形态)\n", idx, total, res.Old)
	case domain.StatusDeclined:
		fmt.Fprintf(p.w, "[%d/%d] DECL %s (用户拒绝)\n", idx, total, res.Old)
	case domain.StatusUnmatched:
		fmt.Fprintf(p.w, "[%d/%d] MISS %s %s: %s\n", idx, total, res.Old, res.ErrorCode, truncate(res.ErrorMsg, 120))
	default:
		fmt.Fprintf(p.w, "[%d/%d] FAIL %s %s: %s (%s)\n",
			idx, total, res.Old, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur))
	}
}

// Confirm 展示完整计划并读取 y/n。任何非 y 的输入（含读取失败）都视为拒绝。
func (p *planUI) Confirm(entries []domain.RenameEntry) bool {
	p.mu.Lock()
	fmt.Fprintf(p.w, "\n即将执行 %d 条重命名：\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(p.w, "  %s -> %s\n", e.OldName, e.NewName)
	}
	fmt.Fprint(p.w, "继续？[y/N] ")
	p.mu.Unlock()

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}
