package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// TitleSource 决定命中后从哪里派生标题（查表未命中时才用）。
type TitleSource int

const (
	// FromSuffix：标题在 SxxEyy 之后的剩余段里（按 '.' 切分取前导段）。
	FromSuffix TitleSource = iota
	// FromGroup：标题就是 title 捕获组本身。
	FromGroup
)

// NamingPattern 是一条不可变的命名约定：锚定正则 + 标题派生规则。
//
// 不变量：要么整名匹配并给出完整的 Match，要么完全不匹配；
// 不允许部分匹配流入下游。
type NamingPattern struct {
	Name       string
	Source     TitleSource
	HasEpisode bool

	re *regexp.Regexp

	iTitle   int
	iSeason  int
	iEpisode int
	iSuffix  int
	iExt     int
}

// Match 是命中后的定型结果：固定命名字段，下游不再做动态组查找。
type Match struct {
	Pattern    string
	Source     TitleSource
	HasEpisode bool

	Title   string // title 组原文（可能为空）
	Season  int    // 电影模式恒为 0
	Episode int    // 电影模式恒为 0
	Suffix  string
	Ext     string // 小写、不含点，例如 "mkv"
}

func compile(name string, src TitleSource, hasEpisode bool, expr string) NamingPattern {
	re := regexp.MustCompile(expr)
	return NamingPattern{
		Name:       name,
		Source:     src,
		HasEpisode: hasEpisode,
		re:         re,
		iTitle:     re.SubexpIndex("title"),
		iSeason:    re.SubexpIndex("season"),
		iEpisode:   re.SubexpIndex("episode"),
		iSuffix:    re.SubexpIndex("suffix"),
		iExt:       re.SubexpIndex("ext"),
	}
}

// 预定义模式。顺序（严格在前、宽松在后）由链函数给出，不在这里隐含。
var (
	// standard：SxxEyy 形态；标题藏在后缀里（Show.S02E05.The_Return.1080p...）。
	standard = compile("standard", FromSuffix, true,
		`(?i)^(?P<title>.*?)s(?P<season>\d{1,2})e(?P<episode>\d{1,3})(?P<suffix>.*)\.(?P<ext>mkv|mp4|avi)$`)

	// flexible：裸 NxNN 形态；标题在前缀 title 组里（Show.Name.1x02....）。
	flexible = compile("flexible", FromGroup, true,
		`(?i)^(?P<title>.*?)\b(?P<season>\d{1,2})x(?P<episode>\d{2})\b(?P<suffix>.*)\.(?P<ext>mkv|mp4|avi)$`)

	// movie：没有季/集标记，整个主干就是标题（可带 " - 副题" 后缀）。
	movie = compile("movie", FromGroup, false,
		`(?i)^(?:watch\s+)?(?P<title>.*?)(?:\s*-\s*(?P<suffix>.*?))?\.(?P<ext>mkv|mp4|avi)$`)
)

// StandardChain 是第一轮规划用的模式链（当前只有 standard 一条；
// 链结构保留，便于后续插入更严格的变体）。
func StandardChain() []NamingPattern { return []NamingPattern{standard} }

// FlexibleChain 是显式第二轮（第一轮零命中时由上层发起）。
func FlexibleChain() []NamingPattern { return []NamingPattern{flexible} }

// MovieChain 是电影模式的链。
func MovieChain() []NamingPattern { return []NamingPattern{movie} }

// Match 对整个文件名做锚定匹配。集号/季号按十进制解析（接受前导零）。
func (p NamingPattern) Match(name string) (Match, bool) {
	sub := p.re.FindStringSubmatch(name)
	if sub == nil {
		return Match{}, false
	}

	m := Match{Pattern: p.Name, Source: p.Source, HasEpisode: p.HasEpisode}
	if p.iTitle >= 0 {
		m.Title = sub[p.iTitle]
	}
	if p.iSuffix >= 0 {
		m.Suffix = sub[p.iSuffix]
	}
	if p.iExt >= 0 {
		m.Ext = strings.ToLower(sub[p.iExt])
	}
	if p.HasEpisode {
		if p.iSeason >= 0 {
			m.Season = atoi(sub[p.iSeason])
		}
		if p.iEpisode >= 0 {
			m.Episode = atoi(sub[p.iEpisode])
		}
	}
	return m, true
}

// MatchChain 按优先级依次尝试，命中即停。
func MatchChain(chain []NamingPattern, name string) (Match, bool) {
	for _, p := range chain {
		if m, ok := p.Match(name); ok {
			return m, true
		}
	}
	return Match{}, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
