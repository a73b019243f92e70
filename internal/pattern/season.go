package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// 目录名里常见的季号写法，按可信度排序：
// "S04" / "s4" / "Season 4" / "4th Season" / "Series 4"。
var seasonDirREs = []*regexp.Regexp{
	regexp.MustCompile(`s(?:eason\s*)?(\d{1,2})`),
	regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\s*season`),
	regexp.MustCompile(`series\s*(\d{1,2})`),
}

// SeasonFromDirName 从目录名推断季号。第一条命中的规则生效。
// 推不出来不是错误：上层改为要求用户显式提供。
func SeasonFromDirName(dirName string) (int, bool) {
	low := strings.ToLower(dirName)
	for _, re := range seasonDirREs {
		sub := re.FindStringSubmatch(low)
		if sub == nil {
			continue
		}
		n, err := strconv.Atoi(sub[1])
		if err != nil || n < 0 {
			continue
		}
		return n, true
	}
	return 0, false
}

// ParseSeason 解析用户输入的季号："S04"、"s4"、"4" 均可。
func ParseSeason(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if s[0] == 'S' || s[0] == 's' {
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
