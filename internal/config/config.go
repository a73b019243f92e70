package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/EpRen/internal/domain"
	"github.com/John-Robertt/EpRen/internal/pattern"
)

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 epren.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示无参运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

// DefaultProvider 是集标题查询的默认站点（当 CLI 与配置文件都未指定时）。
const DefaultProvider = "imdb"

// ConfigFileName 是配置文件的固定文件名。
const ConfigFileName = "epren.json"

// CLIArgs 包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	Path string

	Season    string
	SeasonSet bool

	Year    string
	YearSet bool

	Provider    string
	ProviderSet bool

	IMDbID    string
	IMDbIDSet bool

	MediaType    string
	MediaTypeSet bool

	Apply    bool
	ApplySet bool

	Yes    bool
	YesSet bool
}

// FileConfig 对应 epren.json 的解析结构。
type FileConfig struct {
	Path      string       `json:"path"`
	Season    string       `json:"season"`
	Year      string       `json:"year"`
	Provider  string       `json:"provider"`
	IMDbID    string       `json:"imdb_id"`
	MediaType string       `json:"media_type"`
	Apply     *bool        `json:"apply"`
	Yes       *bool        `json:"yes"`
	Proxy     *ProxyConfig `json:"proxy"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
// （实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path string

	MediaType   domain.MediaType
	Season      int    // tv 模式下必填（>=1）；movie 模式恒为 0
	SeasonLabel string // "S04" 形态；movie 模式为空
	Year        string // 4 位年份或空

	Provider string
	IMDbID   string // 空表示不做集标题查询

	Apply bool
	Yes   bool

	ProxyURL string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按文档约定发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/epren.json（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/epren.json（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：CLI > config > 默认值。
// season 特殊：两边都没给时尝试从目录名推断（"Season 4" / "s4" / "4th season"）；
// tv 模式下仍推不出来 => config_invalid。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/epren.json。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, ConfigFileName)

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	// CLI 没给 path：必须读取 <cwd>/epren.json，且其中必须包含 path。
	cfgPath := filepath.Join(cwdAbs, ConfigFileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(absPath, cli, fc, cfgPath)
}

var yearRE = regexp.MustCompile(`^(19|20)\d{2}$`)

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// media_type：CLI > config > 默认 tv
	mt := string(domain.MediaTV)
	if cli.MediaTypeSet {
		mt = cli.MediaType
	} else if strings.TrimSpace(fc.MediaType) != "" {
		mt = fc.MediaType
	}
	mediaType, err := parseMediaType(mt)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// provider：CLI > config > 默认
	provider := DefaultProvider
	if cli.ProviderSet {
		provider = cli.Provider
	} else if strings.TrimSpace(fc.Provider) != "" {
		provider = fc.Provider
	}
	if err := validateProvider(provider); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// imdb_id：CLI > config > 空（空 => 不查集标题）
	imdbID := ""
	if cli.IMDbIDSet {
		imdbID = strings.TrimSpace(cli.IMDbID)
	} else {
		imdbID = strings.TrimSpace(fc.IMDbID)
	}

	// year：CLI > config > 空
	year := ""
	if cli.YearSet {
		year = strings.TrimSpace(cli.Year)
	} else {
		year = strings.TrimSpace(fc.Year)
	}
	if year != "" && !yearRE.MatchString(year) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("year 必须是 4 位年份：%q", year)}
	}

	// season：CLI > config > 目录名推断；movie 模式忽略。
	season := 0
	if mediaType == domain.MediaTV {
		raw := ""
		if cli.SeasonSet {
			raw = cli.Season
		} else if strings.TrimSpace(fc.Season) != "" {
			raw = fc.Season
		}
		if strings.TrimSpace(raw) != "" {
			n, ok := pattern.ParseSeason(raw)
			if !ok {
				return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("season 无法解析：%q（接受 S04 / s4 / 4）", raw)}
			}
			season = n
		} else if n, ok := pattern.SeasonFromDirName(filepath.Base(absPath)); ok {
			season = n
		} else {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("tv 模式缺少 season，且无法从目录名 %q 推断", filepath.Base(absPath))}
		}
	}

	// apply / yes：CLI > config > 默认 false
	apply := false
	if cli.ApplySet {
		apply = cli.Apply
	} else if fc.Apply != nil {
		apply = *fc.Apply
	}
	yes := false
	if cli.YesSet {
		yes = cli.Yes
	} else if fc.Yes != nil {
		yes = *fc.Yes
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy.url 无效：%w", err)}
		}
	}

	eff := EffectiveConfig{
		Path:      absPath,
		MediaType: mediaType,
		Season:    season,
		Year:      year,
		Provider:  provider,
		IMDbID:    imdbID,
		Apply:     apply,
		Yes:       yes,
		ProxyURL:  proxyURL,
	}
	if mediaType == domain.MediaTV {
		eff.SeasonLabel = domain.NewSeasonLabel(season)
	}
	return eff, nil
}

func parseMediaType(s string) (domain.MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(domain.MediaTV):
		return domain.MediaTV, nil
	case string(domain.MediaMovie):
		return domain.MediaMovie, nil
	default:
		return "", fmt.Errorf("media_type 只能是 tv 或 movie，实际是 %q", s)
	}
}

func validateProvider(p string) error {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "imdb":
		return nil
	case "":
		return fmt.Errorf("provider 不能为空")
	default:
		return fmt.Errorf("provider 只能是 imdb，实际是 %q", p)
	}
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
