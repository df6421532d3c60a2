package gtimer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/godyy/glog"
	"github.com/godyy/gutils/container/heap"
)

// timerOfTimerHeap TimerHeap 定时器.
type timerOfTimerHeap struct {
	id        TimerId       // 定时器ID.
	heapIndex int           // 堆索引.
	delay     time.Duration // 延迟时间.
	interval  time.Duration // 周期间隔, 大于0表示周期性定时器.
	armed     bool          // 是否已装载.
	args      any           // 参数.
	cb        TimerFunc     // 回调函数.
	expireAt  int64         // 到期时间.
}

func (t *timerOfTimerHeap) HeapLess(other *timerOfTimerHeap) bool {
	if n := t.expireAt - other.expireAt; n == 0 {
		return t.id < other.id
	} else {
		return n < 0
	}
}

func (t *timerOfTimerHeap) HeapIndex() int {
	return t.heapIndex
}

func (t *timerOfTimerHeap) SetHeapIndex(index int) {
	t.heapIndex = index
}

// TimerHeap 最小堆定时器系统.
// 基于 time.Timer 驱动, 不依赖系统定时器设施, 可在所有平台上使用.
type TimerHeap struct {
	mtx        sync.Mutex                    // 互斥锁.
	sysTimer   *time.Timer                   // 系统定时器.
	timerIdGen uint64                        // 定时器ID生成自增键.
	timerHeap  *heap.Heap[*timerOfTimerHeap] // 已装载定时器最小堆.
	timerMap   map[TimerId]*timerOfTimerHeap // 已注册定时器映射.
	stopped    bool                          // 是否已停止.
	cStopped   chan struct{}                 // 已停止信号.
	logger     glog.Logger                   // 日志工具.
}

// NewTimerHeap 构造 TimerHeap.
func NewTimerHeap(options ...Option) *TimerHeap {
	opts := new(optionSet).option(options)

	th := &TimerHeap{
		sysTimer:  time.NewTimer(0),
		timerHeap: heap.NewHeap[*timerOfTimerHeap](),
		timerMap:  make(map[TimerId]*timerOfTimerHeap, opts.expectedTimerCount),
		stopped:   false,
		cStopped:  make(chan struct{}),
		logger:    opts.createLogger("TimerHeap"),
	}

	go th.loop()

	return th
}

// genTimerId 生成定时器ID.
func (th *TimerHeap) genTimerId() TimerId {
	timerId := atomic.AddUint64(&th.timerIdGen, 1)
	if timerId == TimerIdNone {
		timerId = atomic.AddUint64(&th.timerIdGen, 1)
	}
	return timerId
}

// addTimer 添加定时器.
func (th *TimerHeap) addTimer(t *timerOfTimerHeap) {
	th.timerMap[t.id] = t
}

// remTimer 移除定时器.
func (th *TimerHeap) remTimer(t *timerOfTimerHeap) {
	if t.armed {
		th.disarmTimer(t)
	}
	delete(th.timerMap, t.id)
}

// armTimer 装载定时器, 将定时器推入最小堆.
func (th *TimerHeap) armTimer(t *timerOfTimerHeap, expireAt int64) {
	t.expireAt = expireAt
	t.armed = true
	th.timerHeap.Push(t)
}

// disarmTimer 卸载定时器, 将定时器移出最小堆. 定时器保持注册状态.
func (th *TimerHeap) disarmTimer(t *timerOfTimerHeap) {
	th.timerHeap.Remove(t.heapIndex)
	t.armed = false
	t.heapIndex = -1
}

// resetSysTimer 重置系统定时器.
func (th *TimerHeap) resetSysTimer(expireAt int64) {
	th.stopSysTimer()
	th.sysTimer.Reset(time.Duration(expireAt - time.Now().UnixNano()))
}

// stopSysTimer 停止系统定时器.
func (th *TimerHeap) stopSysTimer() {
	if !th.sysTimer.Stop() {
		select {
		case <-th.sysTimer.C:
		default:
		}
	}
}

// updateSysTimer 根据堆顶定时器更新系统定时器.
func (th *TimerHeap) updateSysTimer() {
	if th.timerHeap.Len() == 0 {
		th.stopSysTimer()
	} else {
		th.resetSysTimer(th.timerHeap.Top().expireAt)
	}
}

// Stop 停止 TimerHeap.
func (th *TimerHeap) Stop() {
	th.mtx.Lock()
	defer th.mtx.Unlock()

	if th.stopped {
		return
	}

	th.stopSysTimer()
	th.timerHeap = nil
	th.timerMap = nil
	close(th.cStopped)
	th.stopped = true

	th.logger.Debug("stopped")
}

// CreateTimer 注册定时器.
func (th *TimerHeap) CreateTimer(args any, cb TimerFunc) TimerId {
	if cb == nil {
		panic("callback func is nil")
	}

	// 创建定时器.
	t := &timerOfTimerHeap{
		id:        th.genTimerId(),
		heapIndex: -1,
		args:      args,
		cb:        cb,
	}

	th.mtx.Lock()
	defer th.mtx.Unlock()

	// 检查是否已停止.
	if th.stopped {
		th.logger.WarnFields("create timer on stopped system")
		return TimerIdNone
	}

	// 添加定时器.
	th.addTimer(t)

	return t.id
}

// ArmTimer 装载定时器.
func (th *TimerHeap) ArmTimer(tid TimerId, delay, interval time.Duration) error {
	if delay < 0 {
		return ErrDelayInvalid
	}

	if interval < 0 {
		return ErrIntervalInvalid
	}

	th.mtx.Lock()
	defer th.mtx.Unlock()

	// 检查是否已停止.
	if th.stopped {
		return ErrSystemStopped
	}

	// 获取定时器.
	t, exists := th.timerMap[tid]
	if !exists {
		return ErrTimerNotExist
	}

	// 卸载已装载的定时器.
	wasTop := t.armed && t == th.timerHeap.Top()
	if t.armed {
		th.disarmTimer(t)
	}

	// delay 大于0时重新装载.
	if delay > 0 {
		t.delay = delay
		t.interval = interval
		th.armTimer(t, time.Now().Add(delay).UnixNano())
	}

	// 更新系统定时器.
	if wasTop || (t.armed && t == th.timerHeap.Top()) {
		th.updateSysTimer()
	}

	return nil
}

// StartTimer 启动定时器.
func (th *TimerHeap) StartTimer(delay time.Duration, periodic bool, args any, cb TimerFunc) TimerId {
	if delay <= 0 {
		panic("delay must > 0")
	}

	if cb == nil {
		panic("callback func is nil")
	}

	// 创建定时器.
	t := &timerOfTimerHeap{
		id:        th.genTimerId(),
		heapIndex: -1,
		delay:     delay,
		args:      args,
		cb:        cb,
	}
	if periodic {
		t.interval = delay
	}

	th.mtx.Lock()
	defer th.mtx.Unlock()

	// 检查是否已停止.
	if th.stopped {
		th.logger.WarnFields("create timer on stopped system")
		return TimerIdNone
	}

	// 添加并装载定时器.
	th.addTimer(t)
	th.armTimer(t, time.Now().Add(delay).UnixNano())
	if t == th.timerHeap.Top() {
		th.resetSysTimer(t.expireAt)
	}

	return t.id
}

// StopTimer 停止定时器.
func (th *TimerHeap) StopTimer(tid TimerId) {
	th.mtx.Lock()
	defer th.mtx.Unlock()

	// 检查是否已停止.
	if th.stopped {
		return
	}

	// 获取定时器.
	t, exists := th.timerMap[tid]
	if !exists {
		return
	}

	// 检查是否为堆顶定时器.
	wasTop := t.armed && t == th.timerHeap.Top()

	// 移除定时器.
	th.remTimer(t)

	// 更新系统定时器.
	if wasTop {
		th.updateSysTimer()
	}
}

// update 更新定时器.
func (th *TimerHeap) update() {
	for {
		now := time.Now().UnixNano()

		// 获取并更新堆顶定时器.
		th.mtx.Lock()
		if th.stopped {
			th.mtx.Unlock()
			return
		}
		if th.timerHeap.Len() == 0 {
			th.mtx.Unlock()
			return
		}
		t := th.timerHeap.Top()
		if t.expireAt > now {
			th.resetSysTimer(t.expireAt)
			th.mtx.Unlock()
			return
		}
		cb := t.cb
		args := &TimerArgs{TID: t.id, Args: t.args}
		if t.interval > 0 {
			t.expireAt += int64(t.interval)
			th.timerHeap.Fix(t.heapIndex)
		} else {
			// 一次性定时器到期后仅卸载, 保持注册状态直到 StopTimer.
			th.disarmTimer(t)
		}
		th.mtx.Unlock()

		// 在独立的 goroutine 上调用回调函数.
		go th.invokeCallback(cb, args)
	}
}

// invokeCallback 调用回调函数.
func (th *TimerHeap) invokeCallback(cb TimerFunc, args *TimerArgs) {
	cb(args)
}

// loop 主循环逻辑.
func (th *TimerHeap) loop() {
	for {
		select {
		case <-th.sysTimer.C:
			th.update()
		case <-th.cStopped:
			return
		}
	}
}
