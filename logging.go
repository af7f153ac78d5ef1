package rstb

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger type every subsystem in this package
// logs through: a logiface.Logger bound to stumpy's JSON event type.
// SetLogger accepts any differently-configured stumpy-backed Logger; a
// logiface logger over another event type (e.g. logiface-logrus) is a
// different type and cannot be installed.
type Logger = *logiface.Logger[*stumpy.Event]

var globalLogger struct {
	sync.RWMutex
	logger Logger
}

func init() {
	globalLogger.logger = stumpy.L.New(stumpy.L.WithStumpy())
}

// SetLogger installs l as the package-wide structured logger. Safe to
// call concurrently with logging calls (though never with anything else
// in this package, which is single-threaded by contract).
func SetLogger(l Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = l
}

// CurrentLogger returns the package-wide structured logger.
func CurrentLogger() Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	return globalLogger.logger
}
