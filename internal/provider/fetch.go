package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Error 是 provider 阶段的可追溯错误。
// 上层据此把失败归类为 fetch_failed / parse_failed，并决定是否降级继续。
type Error struct {
	Provider string // provider name（小写）
	Stage    string // "fetch" 或 "parse"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FetchTitles 抓取并解析一季的集标题表。
//
// 返回值：
// - titles：按集号升序的标题表（下标 i 对应第 i+1 集）
// - website：集列表页 URL（来源标记，写入 report）
//
// 失败一律包成 *Error（标注 fetch/parse 阶段）；查询失败不是致命错误，
// 上层的契约是降级继续（标题回退到文件名派生）。
func FetchTitles(ctx context.Context, reg Registry, name string, q Query, c *http.Client) (titles []string, website string, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, "", fmt.Errorf("provider 不能为空")
	}
	if strings.TrimSpace(q.ID) == "" {
		return nil, "", fmt.Errorf("查询 ID 不能为空")
	}

	p, ok := reg.Get(name)
	if !ok {
		return nil, "", fmt.Errorf("provider 未注册：%q", name)
	}

	html, pageURL, ferr := p.Fetch(ctx, q, c)
	if ferr != nil {
		return nil, "", &Error{Provider: name, Stage: "fetch", Err: ferr}
	}

	ts, perr := p.Parse(q, html, pageURL)
	if perr != nil {
		return nil, "", &Error{Provider: name, Stage: "parse", Err: perr}
	}
	return ts, pageURL, nil
}
