package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LockFileName 是目录级单实例锁的文件名（隐藏文件，扫描阶段自动忽略）。
const LockFileName = ".epren.lock"

// LockHeldError 表示目录已被另一个存活实例锁住。
// 上层映射为 error_code=lock_held。
type LockHeldError struct {
	Path string
	PID  int
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("目录已被锁定（pid=%d）：%q；另一个实例正在处理该目录", e.PID, e.Path)
}

// AcquireLock 在 dir 下获取单实例锁（O_EXCL 创建 pid 文件）。
//
// 约束：
// - 同一目录同一时刻只允许一个实例执行重命名
// - 持有者进程已消失的残留锁（崩溃遗留）允许接管
// - 返回的 release 幂等，必须在流程结束时调用（含失败路径）
func AcquireLock(dir string) (release func(), err error) {
	path := filepath.Join(dir, LockFileName)

	for attempt := 0; attempt < 2; attempt++ {
		f, cerr := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if cerr == nil {
			if _, werr := f.WriteString(strconv.Itoa(os.Getpid())); werr != nil {
				f.Close()
				os.Remove(path)
				return nil, werr
			}
			if cerr := f.Close(); cerr != nil {
				os.Remove(path)
				return nil, cerr
			}
			released := false
			return func() {
				if released {
					return
				}
				released = true
				_ = os.Remove(path)
			}, nil
		}
		if !os.IsExist(cerr) {
			return nil, cerr
		}

		pid, ok := readLockPID(path)
		if ok && pidAlive(pid) {
			return nil, &LockHeldError{Path: dir, PID: pid}
		}
		// 残留锁：持有者已不在，清掉后重试一次。
		if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
			return nil, rerr
		}
	}
	return nil, fmt.Errorf("获取目录锁失败（反复被抢）：%q", dir)
}

func readLockPID(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
