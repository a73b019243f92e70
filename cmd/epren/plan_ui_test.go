package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/John-Robertt/EpRen/internal/domain"
)

func TestPlanUI_ConfirmParsesAnswer(t *testing.T) {
	entries := []domain.RenameEntry{
		{OldName: "a.S01E01.Pilot.1080p.mkv", NewName: "Pilot_S01E01.mkv"},
	}

	cases := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},   // 默认答案是 No
		{"", false},     // EOF 视为拒绝
		{"oui\n", false},
	}
	for _, c := range cases {
		var out bytes.Buffer
		ui := newPlanUI(&out, strings.NewReader(c.in))
		if got := ui.Confirm(entries); got != c.want {
			t.Fatalf("输入 %q：期望 %v，实际 %v", c.in, c.want, got)
		}
		// 确认前必须能看到完整计划。
		if !strings.Contains(out.String(), "Pilot_S01E01.mkv") {
			t.Fatalf("确认提示缺少计划内容：%q", out.String())
		}
	}
}

func TestPlanUI_OnItemDoneLines(t *testing.T) {
	var out bytes.Buffer
	ui := newPlanUI(&out, strings.NewReader(""))

	ui.OnItemDone(1, 3, domain.ItemResult{
		Old: "a.mkv", New: "b.mkv", Status: domain.StatusPlanned,
	}, 0)
	ui.OnItemDone(2, 3, domain.ItemResult{
		Old: "c.mkv", Status: domain.StatusFailed,
		ErrorCode: domain.ErrCodeRenameFailed, ErrorMsg: "目标已存在",
	}, 0)
	ui.OnItemDone(3, 3, domain.ItemResult{
		Old: "notes.txt", Status: domain.StatusUnmatched,
		ErrorCode: domain.ErrCodeBadExt,
	}, 0)

	s := out.String()
	for _, want := range []string{
		"[1/3] PLAN a.mkv -> b.mkv",
		"[2/3] FAIL c.mkv rename_failed",
		"[3/3] MISS notes.txt bad_ext",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, s)
		}
	}
}

func TestParseRunArgs(t *testing.T) {
	ra, err := parseRunArgs([]string{
		"videos", "--season", "S02", "--year=2022", "--imdb", "tt0944947", "--apply=false", "-y",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ra.Path != "videos" || ra.Season != "S02" || ra.Year != "2022" || ra.IMDbID != "tt0944947" {
		t.Fatalf("参数解析不符合：%+v", ra)
	}
	if !ra.ApplySet || ra.Apply || !ra.Yes {
		t.Fatalf("布尔参数不符合：%+v", ra)
	}

	if _, err := parseRunArgs([]string{"--season"}); err == nil {
		t.Fatalf("缺值参数必须报错")
	}
	if _, err := parseRunArgs([]string{"--nope"}); err == nil {
		t.Fatalf("未知参数必须报错")
	}
	if _, err := parseRunArgs([]string{"a", "b"}); err == nil {
		t.Fatalf("重复 path 必须报错")
	}

	ra2, err := parseRunArgs([]string{"--movie", "films"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ra2.MediaTypeSet || ra2.MediaType != "movie" {
		t.Fatalf("--movie 应映射为 media_type=movie：%+v", ra2)
	}
}
