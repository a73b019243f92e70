package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type stubProvider struct {
	name     string
	fetchErr error
	parseErr error
	titles   []string
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Fetch(_ context.Context, _ Query, _ *http.Client) ([]byte, string, error) {
	if s.fetchErr != nil {
		return nil, "", s.fetchErr
	}
	return []byte("<html/>"), "https://example.test/episodes", nil
}

func (s stubProvider) Parse(_ Query, _ []byte, _ string) ([]string, error) {
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	return s.titles, nil
}

func TestRegistry_LookupNormalized(t *testing.T) {
	reg, err := NewRegistry(stubProvider{name: "IMDb"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, ok := reg.Get(" imdb "); !ok {
		t.Fatalf("name 查找应忽略大小写与空白")
	}
	if _, ok := reg.Get("tvdb"); ok {
		t.Fatalf("未注册的 provider 不应命中")
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry(stubProvider{name: "imdb"}, stubProvider{name: "IMDB"}); err == nil {
		t.Fatalf("重名注册必须拒绝")
	}
	if _, err := NewRegistry(stubProvider{name: "  "}); err == nil {
		t.Fatalf("空名注册必须拒绝")
	}
}

func TestFetchTitles_OK(t *testing.T) {
	reg, _ := NewRegistry(stubProvider{name: "imdb", titles: []string{"Pilot", "The Crash"}})

	titles, website, err := FetchTitles(context.Background(), reg, "imdb",
		Query{ID: "tt0000001", Season: 1}, http.DefaultClient)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(titles) != 2 || titles[1] != "The Crash" {
		t.Fatalf("标题表不符合：%v", titles)
	}
	if website == "" {
		t.Fatalf("website 不能为空")
	}
}

func TestFetchTitles_StagedErrors(t *testing.T) {
	boom := errors.New("boom")

	reg, _ := NewRegistry(stubProvider{name: "imdb", fetchErr: boom})
	_, _, err := FetchTitles(context.Background(), reg, "imdb", Query{ID: "tt0000001"}, http.DefaultClient)
	var pe *Error
	if !errors.As(err, &pe) || pe.Stage != "fetch" || !errors.Is(err, boom) {
		t.Fatalf("期望 fetch 阶段错误，实际 %v", err)
	}

	reg, _ = NewRegistry(stubProvider{name: "imdb", parseErr: boom})
	_, _, err = FetchTitles(context.Background(), reg, "imdb", Query{ID: "tt0000001"}, http.DefaultClient)
	if !errors.As(err, &pe) || pe.Stage != "parse" {
		t.Fatalf("期望 parse 阶段错误，实际 %v", err)
	}
}

func TestFetchTitles_Validation(t *testing.T) {
	reg, _ := NewRegistry(stubProvider{name: "imdb"})
	if _, _, err := FetchTitles(context.Background(), reg, "", Query{ID: "tt1"}, nil); err == nil {
		t.Fatalf("空 provider 必须拒绝")
	}
	if _, _, err := FetchTitles(context.Background(), reg, "imdb", Query{}, nil); err == nil {
		t.Fatalf("空查询 ID 必须拒绝")
	}
	if _, _, err := FetchTitles(context.Background(), reg, "tvdb", Query{ID: "tt1"}, nil); err == nil {
		t.Fatalf("未注册 provider 必须报错")
	}
}
