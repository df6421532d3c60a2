package gtimer

import (
	"context"
	"sync/atomic"
	"time"
)

// Delay 一次性延迟定时器.
// 基于 System 实现, 到期后通过通道传递信号. 可以取消和重新开始,
// 底层定时器保持注册状态, 直到 Close.
type Delay struct {
	s       System
	tid     TimerId
	c       chan time.Time
	expired int32 // 是否已到期.
}

// NewDelay 创建延迟定时器并立即装载.
func NewDelay(s System, delay time.Duration) (*Delay, error) {
	if delay <= 0 {
		panic("delay must > 0")
	}

	d := &Delay{
		s: s,
		c: make(chan time.Time, 1),
	}

	d.tid = s.CreateTimer(nil, d.onTimer)
	if d.tid == TimerIdNone {
		return nil, ErrCreateTimer
	}

	if err := s.ArmTimer(d.tid, delay, 0); err != nil {
		s.StopTimer(d.tid)
		return nil, err
	}

	return d, nil
}

// onTimer 定时器回调.
func (d *Delay) onTimer(args *TimerArgs) {
	atomic.StoreInt32(&d.expired, 1)
	select {
	case d.c <- time.Now():
	default:
	}
}

// C 到期信号通道.
func (d *Delay) C() <-chan time.Time {
	return d.c
}

// Expired 是否已到期.
func (d *Delay) Expired() bool {
	return atomic.LoadInt32(&d.expired) == 1
}

// Cancel 取消定时. 已经产生的到期信号不会被清除.
func (d *Delay) Cancel() error {
	return d.s.ArmTimer(d.tid, 0, 0)
}

// Restart 重新开始定时, 清除残留的到期信号和到期状态.
func (d *Delay) Restart(delay time.Duration) error {
	if delay <= 0 {
		panic("delay must > 0")
	}

	// 先卸载再清理, 避免清理期间定时器到期.
	if err := d.s.ArmTimer(d.tid, 0, 0); err != nil {
		return err
	}

	atomic.StoreInt32(&d.expired, 0)
	select {
	case <-d.c:
	default:
	}

	return d.s.ArmTimer(d.tid, delay, 0)
}

// Wait 阻塞等待到期.
func (d *Delay) Wait(ctx context.Context) error {
	select {
	case <-d.c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 注销定时器.
func (d *Delay) Close() {
	d.s.StopTimer(d.tid)
}
