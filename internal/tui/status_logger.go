package tui

import (
	"fmt"
	"strings"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// statusPrefixes mark Info messages rendered as green status lines.
var statusPrefixes = []string{
	"Connected",
	"All workers finished",
	"Done",
}

// StatusLogger decorates a logger with colored status lines: milestone
// Info messages in green and errors in red.
type StatusLogger struct {
	inner bssimport.Logger
}

// NewStatusLogger panics if inner is nil.
func NewStatusLogger(inner bssimport.Logger) *StatusLogger {
	if inner == nil {
		panic("logger cannot be nil")
	}
	return &StatusLogger{inner: inner}
}

func (l *StatusLogger) Verbose(format string, args ...interface{}) {
	l.inner.Verbose(format, args...)
}

func (l *StatusLogger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isStatus(msg) {
		msg = SuccessStyle.Render(msg)
	}
	l.inner.Info("%s", msg)
}

func (l *StatusLogger) Error(format string, args ...interface{}) {
	l.inner.Error("%s", ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func isStatus(msg string) bool {
	for _, p := range statusPrefixes {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}

var _ bssimport.Logger = (*StatusLogger)(nil)
