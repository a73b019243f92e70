package pattern

import "testing"

func TestStandard_MatchGroups(t *testing.T) {
	m, ok := MatchChain(StandardChain(), "Show.S02E05.The_Return.1080p.BluRay.x265.mkv")
	if !ok {
		t.Fatalf("期望命中 standard")
	}
	if m.Pattern != "standard" || m.Season != 2 || m.Episode != 5 {
		t.Fatalf("捕获组不符合：%+v", m)
	}
	if m.Ext != "mkv" {
		t.Fatalf("期望 ext=mkv，实际 %q", m.Ext)
	}
	if m.Suffix != ".The_Return.1080p.BluRay.x265" {
		t.Fatalf("suffix 不符合：%q", m.Suffix)
	}
}

func TestStandard_CaseInsensitiveAndLeadingZeros(t *testing.T) {
	m, ok := MatchChain(StandardChain(), "show.s04e07.Pilot.720p.MKV")
	if !ok {
		t.Fatalf("期望大小写不敏感命中")
	}
	if m.Season != 4 || m.Episode != 7 {
		t.Fatalf("季/集解析不符合：%+v", m)
	}
	// 扩展名统一小写。
	if m.Ext != "mkv" {
		t.Fatalf("期望 ext 小写，实际 %q", m.Ext)
	}
}

func TestStandard_AnchoredNoPartialMatch(t *testing.T) {
	// 扩展名不在允许列表：整名必须不匹配，而不是部分匹配。
	if _, ok := MatchChain(StandardChain(), "Show.S01E01.notes.txt"); ok {
		t.Fatalf("txt 不应命中")
	}
	if _, ok := MatchChain(StandardChain(), "random_notes.txt"); ok {
		t.Fatalf("无 SxxEyy 不应命中")
	}
}

func TestFlexible_BareNxNN(t *testing.T) {
	m, ok := MatchChain(FlexibleChain(), "Show.Name.1x02.720p.mkv")
	if !ok {
		t.Fatalf("期望命中 flexible")
	}
	if m.Season != 1 || m.Episode != 2 || m.Source != FromGroup {
		t.Fatalf("flexible 捕获不符合：%+v", m)
	}
	if m.Title != "Show.Name." {
		t.Fatalf("title 组不符合：%q", m.Title)
	}
}

func TestChain_PriorityFirstHitWins(t *testing.T) {
	chain := append(StandardChain(), FlexibleChain()...)
	m, ok := MatchChain(chain, "Show.S03E01.Pilot.1080p.mkv")
	if !ok || m.Pattern != "standard" {
		t.Fatalf("期望严格模式优先命中，实际 %+v ok=%v", m, ok)
	}
}

func TestMovie_TitleOnly(t *testing.T) {
	m, ok := MatchChain(MovieChain(), "The.Long.Goodbye.1080p.BluRay.mp4")
	if !ok {
		t.Fatalf("期望命中 movie")
	}
	if m.Episode != 0 || m.Season != 0 {
		t.Fatalf("电影模式不应有季/集：%+v", m)
	}
}

func TestTitleFromSuffix_StopsAtReleaseToken(t *testing.T) {
	got := TitleFromSuffix(".The_Return.1080p.BluRay.x265")
	if got != "The_Return" {
		t.Fatalf("期望 The_Return，实际 %q", got)
	}
	// 标记大小写不敏感。
	if got := TitleFromSuffix(".Part.Two.BLURAY.x264"); got != "Part Two" {
		t.Fatalf("期望 Part Two，实际 %q", got)
	}
}

func TestTitleFromSuffix_EmptyWhenOnlyTokens(t *testing.T) {
	if got := TitleFromSuffix(".1080p.WEB-DL.x264"); got != "" {
		t.Fatalf("只有发行标记时应为空，实际 %q", got)
	}
	if got := TitleFromSuffix(""); got != "" {
		t.Fatalf("空后缀应为空，实际 %q", got)
	}
}

func TestTitleFromGroup_SeparatorNoise(t *testing.T) {
	if got := TitleFromGroup("Show.Name."); got != "Show Name" {
		t.Fatalf("期望 Show Name，实际 %q", got)
	}
	if got := TitleFromGroup("..."); got != "" {
		t.Fatalf("纯分隔符应为空，实际 %q", got)
	}
}

func TestNormalize_SanitizeInvalidChars(t *testing.T) {
	got := Normalize(`Who: Part 2?`)
	if got != "Who__Part_2_" {
		t.Fatalf("期望 Who__Part_2_，实际 %q", got)
	}
	// 替换必须覆盖整个非法字符集。
	got = Normalize(`a<b>c:d"e/f\g|h?i*j`)
	for _, r := range got {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*', ' ':
			t.Fatalf("产物中残留非法字符 %q：%q", r, got)
		}
	}
}

func TestCleanMovieTitle_NoiseAndYear(t *testing.T) {
	got := CleanMovieTitle("watch the long goodbye 1973 1080p bluray", "", false)
	if got != "The Long Goodbye" {
		t.Fatalf("期望 The Long Goodbye，实际 %q", got)
	}
	// keepYear=true 时保留年份（由调用方决定展示）。
	got = CleanMovieTitle("heat 1995", "", true)
	if got != "Heat 1995" {
		t.Fatalf("期望 Heat 1995，实际 %q", got)
	}
	if got := CleanMovieTitle("1080p x265", "", false); got != "" {
		t.Fatalf("纯噪音应清成空串，实际 %q", got)
	}
}

func TestSeasonFromDirName_Variants(t *testing.T) {
	cases := []struct {
		dir  string
		want int
		ok   bool
	}{
		{"Breaking.Bad.S04.1080p", 4, true},
		{"season 2", 2, true},
		{"4th Season", 4, true},
		{"Series 3", 3, true},
		{"movies", 0, false},
	}
	for _, c := range cases {
		got, ok := SeasonFromDirName(c.dir)
		if ok != c.ok || got != c.want {
			t.Fatalf("%q：期望 (%d,%v)，实际 (%d,%v)", c.dir, c.want, c.ok, got, ok)
		}
	}
}

func TestParseSeason_Forms(t *testing.T) {
	for _, s := range []string{"S04", "s4", "4", " 04 "} {
		n, ok := ParseSeason(s)
		if !ok || n != 4 {
			t.Fatalf("%q：期望 4，实际 (%d,%v)", s, n, ok)
		}
	}
	if _, ok := ParseSeason("abc"); ok {
		t.Fatalf("非数字不应解析成功")
	}
}
