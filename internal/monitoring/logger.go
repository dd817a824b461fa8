// Package monitoring holds the diagnostic logger shared by the stratum
// modelling packages.
package monitoring

import "log"

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

// Warnf logs a non-fatal condition that a caller may want to surface, such
// as a batch in which no point resolved.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}
