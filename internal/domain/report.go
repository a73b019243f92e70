package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusPlanned  = "planned"  // dry-run：只规划，不执行
	StatusRenamed  = "renamed"  // apply：重命名成功
	StatusDeclined = "declined" // apply：用户在确认环节拒绝
	StatusSkipped  = "skipped"  // no-op：新名与旧名相同
	StatusFailed   = "failed"   // 执行失败（或 run 级合成失败项）
	StatusUnmatched = "unmatched"
)

const (
	ErrCodePatternMismatch  = "pattern_mismatch"
	ErrCodeEmptyTitle       = "empty_title"
	ErrCodeBadExt           = "bad_ext"
	ErrCodeFetchFailed      = "fetch_failed"
	ErrCodeParseFailed      = "parse_failed"
	ErrCodeRenameFailed     = "rename_failed"
	ErrCodeInvalidDirectory = "invalid_directory"
	ErrCodeLockHeld         = "lock_held"
	ErrCodeIOFailed         = "io_failed"

	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
//
// 约束：Items 保持输入文件的列举顺序。顺序是契约的一部分
// （控制台报告与计划展示都按它走），Finalize 不得重排。
type RunReport struct {
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`

	// Pass 标记本轮采用的模式链："standard" / "flexible" / "movie"。
	Pass string `json:"pass"`

	// TitleSource 标记标题来源："provider" 或 "filename"。
	TitleSource string `json:"title_source"`

	// Website 是集标题来源页 URL（查表成功时填写）。
	Website string `json:"website,omitempty"`

	// LookupError 记录集标题查询失败的原因。查询失败只降级不中断，
	// 但必须在报告里可见。
	LookupError string `json:"lookup_error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Planned   int `json:"planned"`
	Renamed   int `json:"renamed"`
	Declined  int `json:"declined"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Unmatched int `json:"unmatched"`
}

type ItemResult struct {
	Old     string `json:"old"`
	New     string `json:"new"`
	Episode int    `json:"episode,omitempty"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 items 计算得出
// 注意：不排序（Items 顺序即输入顺序，见类型注释）。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusPlanned:
			s.Planned++
		case StatusRenamed:
			s.Renamed++
		case StatusDeclined:
			s.Declined++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		case StatusUnmatched:
			s.Unmatched++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
