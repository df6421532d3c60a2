//go:build linux

package gtimer

// NewSystem 创建平台默认的定时器系统.
// Linux 下基于内核 timerfd 实现.
func NewSystem(options ...Option) System {
	return NewTimerFd(options...)
}
