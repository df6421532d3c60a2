package gtimer

import "github.com/godyy/glog"

// optionSet 选项集合.
type optionSet struct {
	logger             glog.Logger // 日志工具.
	expectedTimerCount int         // 预估定时器数量.
}

// option 应用选项.
func (opts *optionSet) option(options []Option) *optionSet {
	for _, o := range options {
		o(opts)
	}
	return opts
}

// createLogger 基于选项创建名为 name 的日志工具.
// 未通过 WithLogger 指定时回退到 Warn 等级的标准输出.
func (opts *optionSet) createLogger(name string) glog.Logger {
	logger := opts.logger
	if logger == nil {
		logger = createStdLogger(glog.WarnLevel)
	}
	return logger.Named(name)
}

// Option 选项.
type Option func(*optionSet)

// WithLogger 日志工具选项.
func WithLogger(logger glog.Logger) Option {
	return func(opts *optionSet) {
		opts.logger = logger.Named("gtimer")
	}
}

// WithExpectedTimerCount 预估定时器数量选项, 用于预分配内部容器.
func WithExpectedTimerCount(n int) Option {
	return func(opts *optionSet) {
		if n < 0 {
			panic("expected timer count must >= 0")
		}
		opts.expectedTimerCount = n
	}
}
