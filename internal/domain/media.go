package domain

import (
	"path/filepath"
	"strings"
)

// MediaFile 描述目录列举得到的一个候选文件（只看文件名，不读内容）。
//
// 不变量（实现必须遵守）：
// - Name 是目录内的裸文件名（不含路径分隔符）
// - Ext 是小写扩展名（含点，例如 ".mkv"），且必须在允许列表内
type MediaFile struct {
	Name string
	Ext  string
	Size int64
}

// IsVideoExt 判断扩展名是否在允许列表内（mkv/mp4/avi，小写、含点）。
// 列表故意收紧：其余扩展名一律进入 non-matching 报告，而不是猜测。
func IsVideoExt(ext string) bool {
	switch ext {
	case ".mkv", ".mp4", ".avi":
		return true
	default:
		return false
	}
}

// SplitExt 把文件名拆成主干与小写扩展名。
func SplitExt(name string) (base, ext string) {
	ext = strings.ToLower(filepath.Ext(name))
	return strings.TrimSuffix(name, filepath.Ext(name)), ext
}
