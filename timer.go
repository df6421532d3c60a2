package gtimer

import "time"

// System 定时器系统.
// 将定时器到期事件转换为回调调用. 回调在独立的 goroutine 上执行,
// 不会阻塞定时器的注册、装载和停止.
type System interface {
	// CreateTimer 注册定时器. 注册成功后定时器处于未装载状态, 需要通过
	// ArmTimer 装载才会开始计时. 注册失败返回 TimerIdNone.
	CreateTimer(args any, f TimerFunc) TimerId

	// ArmTimer 装载定时器. delay 指定首次到期的延迟时间, interval 大于 0
	// 表示首次到期后以该间隔周期性到期. delay 为 0 表示仅解除装载.
	ArmTimer(tid TimerId, delay, interval time.Duration) error

	// StartTimer 注册并装载定时器, 等价于 CreateTimer 之后立即 ArmTimer.
	// periodic 表示以 delay 为间隔周期性到期. 失败返回 TimerIdNone.
	StartTimer(delay time.Duration, periodic bool, args any, f TimerFunc) TimerId

	// StopTimer 停止并注销定时器. 定时器注销前始终处于注册状态,
	// 一次性定时器到期后亦是如此, 可以再次装载.
	StopTimer(tid TimerId)

	// Stop 停止定时器系统, 注销所有已注册的定时器.
	// 已经分发的回调不受影响.
	Stop()
}

// TimerId 定时器ID.
type TimerId = uint64

// TimerIdNone 无效的定时器ID.
const TimerIdNone = 0

// TimerArgs 定时器参数.
type TimerArgs struct {
	TID  TimerId // 定时器ID.
	Args any     // 参数.
}

// TimerFunc 定时器回调函数.
type TimerFunc func(*TimerArgs)
