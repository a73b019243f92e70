package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SummaryAndUTCAndOrder(t *testing.T) {
	r := RunReport{
		Path:       "/abs/path",
		DryRun:     true,
		Pass:       "standard",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Old: "b.mkv", Status: StatusPlanned},
			{Old: "z.txt", Status: StatusUnmatched},
			{Old: "a.mkv", Status: StatusSkipped},
			{Old: "c.mkv", Status: StatusFailed},
		},
	}

	r.Finalize()

	// Items 顺序即输入顺序，Finalize 不得重排。
	if r.Items[0].Old != "b.mkv" || r.Items[1].Old != "z.txt" || r.Items[2].Old != "a.mkv" || r.Items[3].Old != "c.mkv" {
		t.Fatalf("items 顺序被改变：%v", []string{r.Items[0].Old, r.Items[1].Old, r.Items[2].Old, r.Items[3].Old})
	}
	if r.Summary.Planned != 1 || r.Summary.Unmatched != 1 || r.Summary.Skipped != 1 || r.Summary.Failed != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	// time.Time 在 UTC 下应输出 'Z' 后缀。
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestEpisodeContext_TitleLookup(t *testing.T) {
	ctx := EpisodeContext{
		SeasonLabel: "S02",
		Season:      2,
		Titles:      []string{"Pilot", "The Crash"},
	}

	if got, ok := ctx.Title(2); !ok || got != "The Crash" {
		t.Fatalf("期望命中 The Crash，实际 %q ok=%v", got, ok)
	}
	// 越界：回退到文件名派生（ok=false），不是错误。
	if _, ok := ctx.Title(3); ok {
		t.Fatalf("期望越界未命中")
	}
	if _, ok := ctx.Title(0); ok {
		t.Fatalf("集号是 1-based，0 不应命中")
	}
}
