// Package clog is an optional, side-effect-free diagnostic hook for the
// ca/udp/tcp state machines. Nothing in this module consults a Clog to
// make a protocol decision; a caller that never configures one gets
// silent operation.
package clog

import (
	"log"
	"os"
	"sync/atomic"
)

// LogProvider is the interface a caller implements (or obtains from some
// other logging package) to receive diagnostic output. Only three levels
// are defined; Channel Access state machines do not have a notion of
// "fatal" below the process level.
type LogProvider interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Clog wraps a LogProvider behind an enable switch so call sites can do
// unconditional sf.log.Debug(...) calls without a nil check, and so
// logging can be toggled at runtime without touching the state machine.
type Clog struct {
	provider LogProvider
	has      uint32
}

// NewLogger builds a Clog backed by the standard library logger, with the
// given prefix, disabled by default.
func NewLogger(prefix string) Clog {
	return Clog{provider: defaultLogger{log.New(os.Stderr, prefix, log.LstdFlags|log.Lmicroseconds)}}
}

// LogMode enables or disables log output.
func (sf *Clog) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetLogProvider swaps in a caller-supplied provider, e.g. to route circuit
// diagnostics into an application's structured logger.
func (sf *Clog) SetLogProvider(p LogProvider) {
	if p != nil {
		sf.provider = p
	}
}

// Error logs at ERROR level.
func (sf Clog) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

// Warn logs at WARN level.
func (sf Clog) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

// Debug logs at DEBUG level. This is where per-command trace output goes.
func (sf Clog) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

type defaultLogger struct {
	*log.Logger
}

var _ LogProvider = defaultLogger{}

func (sf defaultLogger) Error(format string, v ...interface{}) { sf.Printf("[E] "+format, v...) }
func (sf defaultLogger) Warn(format string, v ...interface{})  { sf.Printf("[W] "+format, v...) }
func (sf defaultLogger) Debug(format string, v ...interface{}) { sf.Printf("[D] "+format, v...) }
