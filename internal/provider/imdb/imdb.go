package imdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	providerx "github.com/John-Robertt/EpRen/internal/provider"
)

// Provider 实现 IMDb 集列表页的抓取与 HTML 解析。
//
// 约束：
// - 集列表页可以直接拼 URL（/title/<id>/episodes?season=N），不需要搜索
// - Fetch/Parse 不做缓存/重试/限速（由上层统一控制）
// - Parse 必须是纯函数（依赖输入 html + pageURL）
type Provider struct {
	// BaseURL 允许指定镜像域名。为空时使用默认的 https://www.imdb.com。
	BaseURL string
}

func (Provider) Name() string { return "imdb" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return "https://www.imdb.com"
	}
	return strings.TrimRight(u, "/")
}

// idRE 是 IMDb 剧集 ID 的形态（tt + 7~8 位数字）。
var idRE = regexp.MustCompile(`^tt\d{7,8}$`)

// Fetch 直接进入集列表页：
// https://www.imdb.com/title/<id>/episodes?season=<N>
func (p Provider) Fetch(ctx context.Context, q providerx.Query, c *http.Client) ([]byte, string, error) {
	if c == nil {
		return nil, "", errors.New("http client 不能为空")
	}
	id := strings.TrimSpace(q.ID)
	if !idRE.MatchString(id) {
		return nil, "", fmt.Errorf("非法 IMDb ID：%q", q.ID)
	}

	pageURL := p.baseURL() + "/title/" + id + "/episodes"
	if q.Season > 0 {
		pageURL += "?season=" + strconv.Itoa(q.Season)
	}
	b, err := fetchURL(ctx, c, pageURL)
	return b, pageURL, err
}

// 集标题的候选选择器，按站点版式从新到旧排列。
// 命中任何一个选择器产出非空结果即停（不跨版式混采）。
var episodeSelectors = []string{
	"div.ipc-title.ipc-title--base.ipc-title--title .ipc-title__text",
	".titleColumn a",
	".ipc-title__text",
	"h3.ipc-title__text",
}

// Parse 把 IMDb 集列表页 HTML 解析为按集号升序的标题表。
//
// 新版式的标题形如 "S2.E5 ∙ The Return"：取 '∙' 之后的部分；
// 旧版式是纯标题文本。结果做保序去重；一个标题都解不出来视为 parse 失败。
func (Provider) Parse(q providerx.Query, html []byte, pageURL string) ([]string, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}
	if strings.TrimSpace(pageURL) == "" {
		return nil, errors.New("pageURL 不能为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, sel := range episodeSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := normSpace(s.Text())
			if i := strings.LastIndex(text, "∙"); i >= 0 {
				if t := strings.TrimSpace(text[i+len("∙"):]); t != "" {
					titles = append(titles, t)
				}
				return
			}
			// 纯 "S2.E5" 这类编号行不是标题。
			if text != "" && !strings.Contains(text, "S.") {
				titles = append(titles, text)
			}
		})
		if len(titles) > 0 {
			break
		}
	}

	titles = dedupe(titles)
	if len(titles) == 0 {
		return nil, fmt.Errorf("页面中未解析到任何集标题：%s", pageURL)
	}
	return titles, nil
}

func fetchURL(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &providerx.HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return io.ReadAll(resp.Body)
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

func dedupe(in []string) []string {
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
