// Package log provides named loggers for hexstorm components.
//
// Loggers write to stderr by default. When the terminal UI is active the
// output should be redirected to a file with SetOutput, since stderr is
// occupied by the screen.
package log

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	loggers = make(map[string]*logrus.Logger)
	out     io.Writer
	level   = logrus.InfoLevel
)

// Get returns the logger for the given component name, creating it on
// first use. Loggers are shared: repeated calls with the same name
// return the same instance.
func Get(name string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		l = logrus.New()
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006/01/02 15:04:05.000000",
		})
		l.SetLevel(level)
		if out != nil {
			l.SetOutput(out)
		}
		loggers[name] = l
	}
	return l.WithField("component", name)
}

// SetOutput redirects all loggers, current and future, to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out = w
	for _, l := range loggers {
		l.SetOutput(w)
	}
}

// SetLevel changes the level of all loggers, current and future.
func SetLevel(lvl logrus.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = lvl
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
}
