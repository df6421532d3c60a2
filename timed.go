package gtimer

import (
	"context"
	"time"
)

// TimedFunc 限时任务函数.
type TimedFunc func(ctx context.Context) error

// Timed 在限定时间内执行任务 f.
// 超时后 f 的 ctx 被取消并返回 ErrExpired, 否则返回 f 的执行结果.
func Timed(ctx context.Context, s System, timeout time.Duration, f TimedFunc) error {
	if timeout <= 0 {
		panic("timeout must > 0")
	}

	if f == nil {
		panic("timed func is nil")
	}

	d, err := NewDelay(s, timeout)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cErr := make(chan error, 1)
	go func() {
		cErr <- f(ctx)
	}()

	select {
	case err := <-cErr:
		return err
	case <-d.C():
		return ErrExpired
	case <-ctx.Done():
		return ctx.Err()
	}
}
