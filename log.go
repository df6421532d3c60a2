package gtimer

import (
	"time"

	"github.com/godyy/glog"
	"go.uber.org/zap"
)

// createStdLogger 创建标准输出 logger.
func createStdLogger(level glog.Level) glog.Logger {
	return glog.NewLogger(&glog.Config{
		Level:        level,
		EnableCaller: true,
		CallerSkip:   0,
		Development:  true,
		Cores:        []glog.CoreConfig{glog.NewStdCoreConfig()},
	}).Named("gtimer")
}

func lfdError(err error) zap.Field {
	return zap.NamedError("error", err)
}

func lfdTimerId(tid TimerId) zap.Field {
	return zap.Uint64("timerId", tid)
}

func lfdDelay(delay time.Duration) zap.Field {
	return zap.Duration("delay", delay)
}

func lfdInterval(interval time.Duration) zap.Field {
	return zap.Duration("interval", interval)
}

func lfdExpirations(n uint64) zap.Field {
	return zap.Uint64("expirations", n)
}
