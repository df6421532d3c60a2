//go:build linux

package gtimer

import (
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godyy/glog"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// timerOfTimerFd TimerFd 定时器.
// fd 需要单独保存, file.Fd() 会将文件切换回阻塞模式,
// 导致 Read 无法被 Close 唤醒.
type timerOfTimerFd struct {
	id   TimerId   // 定时器ID.
	fd   int       // timerfd 文件描述符.
	file *os.File  // timerfd 文件封装, 通过 netpoller 等待到期事件.
	args any       // 参数.
	cb   TimerFunc // 回调函数.
}

// TimerFd timerfd 定时器系统.
// 每个定时器对应一个内核 CLOCK_REALTIME timerfd, 由独立的 goroutine
// 读取到期事件并分发回调.
type TimerFd struct {
	mtx        sync.Mutex                  // 互斥锁.
	timerIdGen uint64                      // 定时器ID生成自增键.
	timerMap   map[TimerId]*timerOfTimerFd // 已注册定时器映射.
	stopped    bool                        // 是否已停止.
	logger     glog.Logger                 // 日志工具.
}

// NewTimerFd 构造 TimerFd.
func NewTimerFd(options ...Option) *TimerFd {
	opts := new(optionSet).option(options)

	tf := &TimerFd{
		timerMap: make(map[TimerId]*timerOfTimerFd, opts.expectedTimerCount),
		stopped:  false,
		logger:   opts.createLogger("TimerFd"),
	}

	return tf
}

// genTimerId 生成定时器ID.
func (tf *TimerFd) genTimerId() TimerId {
	timerId := atomic.AddUint64(&tf.timerIdGen, 1)
	if timerId == TimerIdNone {
		timerId = atomic.AddUint64(&tf.timerIdGen, 1)
	}
	return timerId
}

// Stop 停止 TimerFd.
func (tf *TimerFd) Stop() {
	tf.mtx.Lock()
	defer tf.mtx.Unlock()

	if tf.stopped {
		return
	}

	// 关闭所有 timerfd, 唤醒对应的 readLoop.
	for _, t := range tf.timerMap {
		_ = t.file.Close()
	}
	tf.timerMap = nil
	tf.stopped = true

	tf.logger.Debug("stopped")
}

// CreateTimer 注册定时器.
func (tf *TimerFd) CreateTimer(args any, cb TimerFunc) TimerId {
	if cb == nil {
		panic("callback func is nil")
	}

	// 创建 timerfd. TFD_NONBLOCK 使文件可被 netpoller 托管.
	fd, err := unix.TimerfdCreate(unix.CLOCK_REALTIME, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		tf.logger.ErrorFields("create timerfd", lfdError(err))
		return TimerIdNone
	}

	// 创建定时器.
	t := &timerOfTimerFd{
		id:   tf.genTimerId(),
		fd:   fd,
		file: os.NewFile(uintptr(fd), "timerfd"),
		args: args,
		cb:   cb,
	}

	tf.mtx.Lock()

	// 检查是否已停止. 注册失败时释放已创建的 timerfd.
	if tf.stopped {
		tf.mtx.Unlock()
		_ = t.file.Close()
		tf.logger.WarnFields("create timer on stopped system")
		return TimerIdNone
	}

	// 添加定时器.
	tf.timerMap[t.id] = t

	tf.mtx.Unlock()

	go tf.readLoop(t)

	tf.logger.DebugFields("timer created", lfdTimerId(t.id))

	return t.id
}

// ArmTimer 装载定时器.
func (tf *TimerFd) ArmTimer(tid TimerId, delay, interval time.Duration) error {
	if delay < 0 {
		return ErrDelayInvalid
	}

	if interval < 0 {
		return ErrIntervalInvalid
	}

	tf.mtx.Lock()
	defer tf.mtx.Unlock()

	// 检查是否已停止.
	if tf.stopped {
		return ErrSystemStopped
	}

	// 获取定时器.
	t, exists := tf.timerMap[tid]
	if !exists {
		return ErrTimerNotExist
	}

	// 装载内核定时器. delay 为 0 时 timerfd 被解除装载.
	its := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(int64(interval)),
		Value:    unix.NsecToTimespec(int64(delay)),
	}
	if err := unix.TimerfdSettime(t.fd, 0, &its, nil); err != nil {
		tf.logger.ErrorFields("timerfd settime", lfdTimerId(tid), lfdError(err))
		return pkgerrors.WithMessage(err, "timerfd settime")
	}

	if delay > 0 {
		tf.logger.DebugFields("timer armed", lfdTimerId(tid), lfdDelay(delay), lfdInterval(interval))
	} else {
		tf.logger.DebugFields("timer disarmed", lfdTimerId(tid))
	}

	return nil
}

// StartTimer 启动定时器.
func (tf *TimerFd) StartTimer(delay time.Duration, periodic bool, args any, cb TimerFunc) TimerId {
	if delay <= 0 {
		panic("delay must > 0")
	}

	if cb == nil {
		panic("callback func is nil")
	}

	// 注册定时器.
	tid := tf.CreateTimer(args, cb)
	if tid == TimerIdNone {
		return TimerIdNone
	}

	// 装载定时器. 失败时回滚注册.
	var interval time.Duration
	if periodic {
		interval = delay
	}
	if err := tf.ArmTimer(tid, delay, interval); err != nil {
		tf.StopTimer(tid)
		return TimerIdNone
	}

	return tid
}

// StopTimer 停止定时器.
func (tf *TimerFd) StopTimer(tid TimerId) {
	tf.mtx.Lock()
	defer tf.mtx.Unlock()

	// 检查是否已停止.
	if tf.stopped {
		return
	}

	// 获取定时器.
	t, exists := tf.timerMap[tid]
	if !exists {
		return
	}

	// 移除定时器并关闭 timerfd, 唤醒对应的 readLoop.
	delete(tf.timerMap, tid)
	_ = t.file.Close()

	tf.logger.DebugFields("timer stopped", lfdTimerId(tid))
}

// readLoop 读取定时器到期事件并分发回调.
func (tf *TimerFd) readLoop(t *timerOfTimerFd) {
	buf := make([]byte, 8)
	for {
		// 阻塞读取到期次数, 定时器未装载时保持阻塞.
		n, err := t.file.Read(buf)
		if err != nil {
			if !errors.Is(err, os.ErrClosed) {
				tf.logger.ErrorFields("read timerfd", lfdTimerId(t.id), lfdError(err))
			}
			return
		}
		if n < 8 {
			continue
		}

		expirations := binary.NativeEndian.Uint64(buf)
		if expirations == 0 {
			continue
		}
		if expirations > 1 {
			tf.logger.WarnFields("timer overrun", lfdTimerId(t.id), lfdExpirations(expirations))
		}

		// 在独立的 goroutine 上调用回调函数. 同一次唤醒只分发一次回调.
		go tf.invokeCallback(t.cb, &TimerArgs{TID: t.id, Args: t.args})
	}
}

// invokeCallback 调用回调函数.
func (tf *TimerFd) invokeCallback(cb TimerFunc, args *TimerArgs) {
	cb(args)
}
