//go:build !linux

package gtimer

// NewSystem 创建平台默认的定时器系统.
func NewSystem(options ...Option) System {
	return NewTimerHeap(options...)
}
