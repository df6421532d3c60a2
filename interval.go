package gtimer

import "time"

// Interval 周期性定时器.
// 语义与 time.Ticker 类似, 接收不及时会丢弃到期信号.
type Interval struct {
	s   System
	tid TimerId
	c   chan time.Time
}

// NewInterval 创建周期性定时器并立即装载.
func NewInterval(s System, interval time.Duration) (*Interval, error) {
	if interval <= 0 {
		panic("interval must > 0")
	}

	iv := &Interval{
		s: s,
		c: make(chan time.Time, 1),
	}

	iv.tid = s.CreateTimer(nil, iv.onTimer)
	if iv.tid == TimerIdNone {
		return nil, ErrCreateTimer
	}

	if err := s.ArmTimer(iv.tid, interval, interval); err != nil {
		s.StopTimer(iv.tid)
		return nil, err
	}

	return iv, nil
}

// onTimer 定时器回调.
func (iv *Interval) onTimer(args *TimerArgs) {
	select {
	case iv.c <- time.Now():
	default:
	}
}

// C 到期信号通道.
func (iv *Interval) C() <-chan time.Time {
	return iv.c
}

// Restart 以新的间隔重新开始定时.
func (iv *Interval) Restart(interval time.Duration) error {
	if interval <= 0 {
		panic("interval must > 0")
	}
	return iv.s.ArmTimer(iv.tid, interval, interval)
}

// Stop 注销定时器.
func (iv *Interval) Stop() {
	iv.s.StopTimer(iv.tid)
}
