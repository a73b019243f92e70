package pattern

import (
	"regexp"
	"strings"
)

// releaseTokens 是发行元数据标记（小写）。后缀派生标题时，
// 遇到第一个标记即截断；标记本身与其后的一切都不属于标题。
var releaseTokens = map[string]struct{}{
	"1080p":  {},
	"720p":   {},
	"bluray": {},
	"x264":   {},
	"x265":   {},
	"web-dl": {},
	"webrip": {},
}

// IsReleaseToken 判断单个段是否为发行元数据标记（大小写不敏感）。
func IsReleaseToken(s string) bool {
	_, ok := releaseTokens[strings.ToLower(s)]
	return ok
}

// yearTagRE 识别我们自己产出的年份标记段（"_(2022)"）。
// 它和发行标记一样是截断点：这保证已在目标形态的文件名
// 重新规划时不会把年份当成标题（幂等性的前提）。
var yearTagRE = regexp.MustCompile(`^_?\((19|20)\d{2}\)$`)

// TitleFromSuffix 从 SxxEyy 之后的剩余段派生标题：
// 按 '.' 切分，取前导的非空段直到第一个发行标记/年份标记，用单个空格拼接。
// 没有可用段时返回空串（由上层决定如何处置，见 planner）。
func TitleFromSuffix(suffix string) string {
	parts := strings.Split(suffix, ".")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if IsReleaseToken(p) || yearTagRE.MatchString(p) {
			break
		}
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, " ")
}

// TitleFromGroup 从 title 捕获组派生标题：去掉两端的分隔噪音，
// 把 '.' 与 '_' 统一成空格（后续 Normalize 再统一回下划线）。
func TitleFromGroup(title string) string {
	title = strings.Trim(title, ". -_")
	title = strings.NewReplacer(".", " ", "_", " ").Replace(title)
	return strings.Join(strings.Fields(title), " ")
}

// invalidRE 是常见文件系统的非法字符集。
var invalidRE = regexp.MustCompile(`[<>:"/\\|?*]`)

// Normalize 把标题变成文件名安全形态：
// 先空格 → '_'，再把非法字符（< > : " / \ | ? *）替换为 '_'。
// 顺序是契约：查表得到的 "Who: Part 2?" 必须变成 "Who__Part_2_"。
func Normalize(title string) string {
	title = strings.ReplaceAll(title, " ", "_")
	return invalidRE.ReplaceAllString(title, "_")
}

// movieNoise 是电影标题清洗用的扩展噪音词表（含音轨/发布组等）。
// 与 releaseTokens 分开维护：剧集后缀截断的语义是"遇标记即停"，
// 电影清洗的语义是"逐词剔除"。
var movieNoise = map[string]struct{}{
	"1080p": {}, "720p": {}, "480p": {}, "2160p": {}, "4k": {},
	"hd": {}, "uhd": {}, "hdr": {},
	"bluray": {}, "blu-ray": {}, "webrip": {}, "web-dl": {}, "hdtv": {}, "dvdrip": {}, "brrip": {},
	"x264": {}, "x265": {}, "h264": {}, "h265": {}, "hevc": {}, "xvid": {},
	"aac": {}, "ac3": {}, "dts": {}, "atmos": {}, "dolby": {},
	"yify": {}, "rarbg": {}, "ettv": {}, "eztv": {}, "torrent": {},
	"watch": {}, "download": {}, "stream": {},
}

var (
	watchTailRE = regexp.MustCompile(`(?i)\s*-?\s*watch(?:_?\d+)?\s*$`)
	yearRE      = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// CleanMovieTitle 清洗电影主干标题：剔除噪音词、结尾的 "Watch N" 残留，
// keepYear=false 时顺带剔除裸年份（年份由上下文统一追加）。
// 结果逐词首字母大写；清不出内容时返回空串。
func CleanMovieTitle(title, suffix string, keepYear bool) string {
	cleaned := strings.Trim(title, ". -_")
	cleaned = strings.NewReplacer(".", " ", "_", " ").Replace(cleaned)

	// 简短的副题（" - xxx"）并入标题；纯噪音副题丢弃。
	if suffix != "" {
		var extra []string
		for _, w := range strings.FieldsFunc(suffix, func(r rune) bool {
			return r == ' ' || r == '.' || r == '-' || r == '_'
		}) {
			if _, noise := movieNoise[strings.ToLower(w)]; noise {
				continue
			}
			extra = append(extra, w)
		}
		if len(extra) > 0 && len(extra) <= 3 {
			tail := strings.Join(extra, " ")
			if !strings.Contains(strings.ToLower(cleaned), strings.ToLower(tail)) {
				cleaned += " " + tail
			}
		}
	}

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		if _, noise := movieNoise[strings.ToLower(w)]; noise {
			continue
		}
		kept = append(kept, w)
	}
	cleaned = strings.Join(kept, " ")

	cleaned = watchTailRE.ReplaceAllString(cleaned, "")
	if !keepYear {
		cleaned = yearRE.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.Trim(strings.Join(strings.Fields(cleaned), " "), " -.")

	return capitalizeWords(cleaned)
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
