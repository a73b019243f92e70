package provider

import (
	"context"
	"net/http"
)

// Query 标识一次剧集标题查询：站点侧的剧集 ID + 季号。
type Query struct {
	ID     string // 站点侧剧集标识（IMDb 形如 tt0944947）
	Season int    // 1-based；0 表示站点默认季
}

// Provider 把“站点变化”限制在 provider 包内部；核心流程只依赖统一接口与稳定的标题表。
//
// 约束：
// - Fetch 不做缓存、不做重试、不做限速（重试由 httpx 传输层统一实现）
// - Parse 必须是纯函数：相同输入 => 相同输出
// - 标题表按集号升序：下标 i 对应第 i+1 集
// - pageURL 必须是集列表页（用于 report 追溯）
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query, c *http.Client) (html []byte, pageURL string, err error)
	Parse(q Query, html []byte, pageURL string) ([]string, error)
}
