// Package monitoring holds the diagnostic logger used by the clusterer.
package monitoring

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Level controls how much the named loggers emit.
type Level int32

const (
	// LevelError only emits errors.
	LevelError Level = iota
	// LevelLog emits the per-event summary lines.
	LevelLog
	// LevelInfo adds per-plane statistics.
	LevelInfo
	// LevelVerbose adds a line per 3D hit.
	LevelVerbose
)

var (
	level  atomic.Int32
	indent atomic.Int32
)

func init() { level.Store(int32(LevelLog)) }

// SetLevel sets the global verbosity.
func SetLevel(l Level) { level.Store(int32(l)) }

// GetLevel returns the global verbosity.
func GetLevel() Level { return Level(level.Load()) }

// IncreaseIndentation indents subsequent log lines by one step.
func IncreaseIndentation() { indent.Add(1) }

// DecreaseIndentation undoes IncreaseIndentation. It never goes below zero.
func DecreaseIndentation() {
	for {
		cur := indent.Load()
		if cur == 0 || indent.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

func emit(l Level, name, format string, v ...interface{}) {
	if GetLevel() < l {
		return
	}
	msg := fmt.Sprintf(format, v...)
	prefix := strings.Repeat("   ", int(indent.Load()))
	if name != "" {
		prefix += "[" + name + "] "
	}
	Logf("%s%s", prefix, msg)
}

// Errorf always logs, prefixed with ERROR.
func Errorf(format string, v ...interface{}) {
	emit(LevelError, "", "ERROR: "+format, v...)
}

// Printf logs at LevelLog.
func Printf(format string, v ...interface{}) { emit(LevelLog, "", format, v...) }

// Named returns a logger that tags every line with name.
func Named(name string) *Logger { return &Logger{name: name} }

// Logger is a named view of the package logger.
type Logger struct {
	name string
}

// Logf logs at LevelLog.
func (lg *Logger) Logf(format string, v ...interface{}) { emit(LevelLog, lg.name, format, v...) }

// Infof logs at LevelInfo.
func (lg *Logger) Infof(format string, v ...interface{}) { emit(LevelInfo, lg.name, format, v...) }

// Verbosef logs at LevelVerbose.
func (lg *Logger) Verbosef(format string, v ...interface{}) {
	emit(LevelVerbose, lg.name, format, v...)
}

// Enabled reports whether lines at l would be emitted.
func (lg *Logger) Enabled(l Level) bool { return GetLevel() >= l }
