// Package log provides the logging interface used across the emulator.
package log

import "fmt"

type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logger struct {
	debug bool
}

// New returns a logger writing to stdout.
func New() Logger {
	return &logger{}
}

// NewDebug returns a logger writing to stdout, including debug output.
func NewDebug() Logger {
	return &logger{debug: true}
}

func (l *logger) Infof(format string, args ...interface{}) {
	fmt.Printf("[INFO]\t"+format+"\n", args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	fmt.Printf("[ERROR]\t"+format+"\n", args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	if l.debug {
		fmt.Printf("[DEBUG]\t"+format+"\n", args...)
	}
}
