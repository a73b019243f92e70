package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestListDir_SplitVideosAndSkipped(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "b.S01E02.mkv"))
	touch(t, filepath.Join(dir, "a.S01E01.mp4"))
	touch(t, filepath.Join(dir, "random_notes.txt"))
	touch(t, filepath.Join(dir, "cover.jpg"))

	got, err := ListDir(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got.Files) != 2 {
		t.Fatalf("期望 2 个候选文件，实际 %d", len(got.Files))
	}
	// 列举按文件名排序。
	if got.Files[0].Name != "a.S01E01.mp4" || got.Files[1].Name != "b.S01E02.mkv" {
		t.Fatalf("顺序不符合：%+v", got.Files)
	}
	if len(got.Skipped) != 2 || got.Skipped[0] != "cover.jpg" || got.Skipped[1] != "random_notes.txt" {
		t.Fatalf("skipped 不符合：%v", got.Skipped)
	}
}

func TestListDir_NonRecursiveAndExtLowercased(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "X.MP4"))
	touch(t, filepath.Join(dir, "sub", "inner.mkv"))

	got, err := ListDir(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// 子目录不进入。
	if len(got.Files) != 1 {
		t.Fatalf("期望 1 个候选文件，实际 %d", len(got.Files))
	}
	if got.Files[0].Ext != ".mp4" {
		t.Fatalf("期望 ext=.mp4，实际 %q", got.Files[0].Ext)
	}
}

func TestListDir_HiddenFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, ".epren.lock"))
	touch(t, filepath.Join(dir, "a.mkv"))

	got, err := ListDir(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got.Files) != 1 || len(got.Skipped) != 0 {
		t.Fatalf("隐藏文件不应出现在任何列表：%+v", got)
	}
}

func TestListDir_OwnFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "epren.json"))
	touch(t, filepath.Join(dir, "report.json"))
	touch(t, filepath.Join(dir, "a.mkv"))

	got, err := ListDir(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got.Files) != 1 || len(got.Skipped) != 0 {
		t.Fatalf("工具自身文件不应出现在任何列表：%+v", got)
	}
}

func TestListDir_InvalidDirectory(t *testing.T) {
	_, err := ListDir(filepath.Join(t.TempDir(), "nope"))
	var de *DirError
	if !errors.As(err, &de) {
		t.Fatalf("期望 *DirError，实际 %v", err)
	}

	// 普通文件也算 invalid_directory。
	f := filepath.Join(t.TempDir(), "f")
	touch(t, f)
	if _, err := ListDir(f); !errors.As(err, &de) {
		t.Fatalf("期望 *DirError，实际 %v", err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
