package scan

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/John-Robertt/EpRen/internal/domain"
)

// DirError 表示目标目录不可用（不存在/不是目录/读不了）。
// 对一次 run 是致命的：上层据此生成 invalid_directory 并终止。
type DirError struct {
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("目录不可用：%q：%v", e.Path, e.Err)
}

func (e *DirError) Unwrap() error { return e.Err }

// Listing 是一次目录列举的结果。
//
// - Files：扩展名在允许列表内的候选文件，按文件名字典序
// - Skipped：其余普通文件的文件名（进入 non-matching 报告，不静默丢弃）
type Listing struct {
	Files   []domain.MediaFile
	Skipped []string
}

// ListDir 非递归列举 dir 下的普通文件（子目录不进入）。
//
// 注意：排序是契约，计划顺序、报告顺序都跟随列举顺序。
func ListDir(dir string) (Listing, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return Listing{}, &DirError{Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return Listing{}, &DirError{Path: dir, Err: fmt.Errorf("不是目录")}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Listing{}, &DirError{Path: dir, Err: err}
	}

	var out Listing
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		// '.' 开头的条目（锁文件、临时文件）不参与规划也不进报告。
		if strings.HasPrefix(name, ".") {
			continue
		}
		// 工具自己的落盘文件同样忽略，否则每轮报告都会多出两条 bad_ext。
		if name == "epren.json" || name == "report.json" {
			continue
		}

		_, ext := domain.SplitExt(name)
		if !domain.IsVideoExt(ext) {
			out.Skipped = append(out.Skipped, name)
			continue
		}

		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		out.Files = append(out.Files, domain.MediaFile{
			Name: name,
			Ext:  ext,
			Size: size,
		})
	}

	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Name < out.Files[j].Name })
	sort.Strings(out.Skipped)
	return out, nil
}
