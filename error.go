package gtimer

import (
	"errors"
)

// ErrSystemStopped 定时器系统已停止.
var ErrSystemStopped = errors.New("timer system stopped")

// ErrTimerNotExist 定时器不存在.
var ErrTimerNotExist = errors.New("timer not exist")

// ErrDelayInvalid 延迟时间非法.
var ErrDelayInvalid = errors.New("delay invalid")

// ErrIntervalInvalid 间隔时间非法.
var ErrIntervalInvalid = errors.New("interval invalid")

// ErrCreateTimer 创建定时器失败.
var ErrCreateTimer = errors.New("create timer failed")

// ErrExpired 已到期.
var ErrExpired = errors.New("expired")
