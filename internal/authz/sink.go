package authz

import "log/slog"

// Sink receives diagnostics from the guard. Delivery is best effort.
type Sink interface {
	Verbose(msg string, args ...any)
	Warn(msg string, args ...any)
}

// SlogSink writes Verbose at debug level and Warn at warn level.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Verbose(msg string, args ...any) { s.logger().Debug(msg, args...) }
func (s SlogSink) Warn(msg string, args ...any)    { s.logger().Warn(msg, args...) }

func (s SlogSink) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

type nopSink struct{}

func (nopSink) Verbose(string, ...any) {}
func (nopSink) Warn(string, ...any)    {}

// A panicking sink must not change a decision.
func verbose(s Sink, msg string, args ...any) {
	defer func() { _ = recover() }()
	s.Verbose(msg, args...)
}

func warn(s Sink, msg string, args ...any) {
	defer func() { _ = recover() }()
	s.Warn(msg, args...)
}
