// Package stdlogger adapts the global zerolog logger to printf style
// logger interfaces, such as the gorm logger writer.
package stdlogger

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes printf style messages to the global zerolog logger.
type Logger struct {
	component string
	level     zerolog.Level
}

// New returns a Logger writing Printf output at info level.
func New() *Logger {
	return &Logger{level: zerolog.InfoLevel}
}

// NewComponent returns a Logger tagging every message with component and
// writing Printf output at level.
func NewComponent(component string, level zerolog.Level) *Logger {
	return &Logger{component: component, level: level}
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	e := log.WithLevel(level)
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	return e
}

// Printf implements the gorm logger.Writer interface.
func (l *Logger) Printf(format string, v ...any) {
	l.event(l.level).Msg(fmt.Sprintf(format, v...))
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, v ...any) {
	l.event(zerolog.DebugLevel).Msgf(format, v...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, v ...any) {
	l.event(zerolog.InfoLevel).Msgf(format, v...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, v ...any) {
	l.event(zerolog.WarnLevel).Msgf(format, v...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, v ...any) {
	l.event(zerolog.ErrorLevel).Msgf(format, v...)
}
