//go:build unix

package fsx

import (
	"errors"
	"os"
	"syscall"
)

func pidAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 只做存在性探测，不投递信号。
	// EPERM 表示进程存在但无权限投递：同样算存活。
	serr := p.Signal(syscall.Signal(0))
	return serr == nil || errors.Is(serr, syscall.EPERM)
}
