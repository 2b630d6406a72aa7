// Package logging provides the leveled log.Printf helpers the engine and
// its supporting packages use instead of formatting "INFO:"/"WARN:"/
// "ERROR:" prefixes by hand at each call site.
package logging

import "log"

// DebugEnabled controls whether Debug() produces output.
// Set via the -debug flag (cmd/mudnet).
var DebugEnabled bool

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

// Info logs a routine operational event: a connection accepted, a
// listener started, a certificate reloaded.
func Info(format string, args ...any) {
	log.Printf("INFO: "+format, args...)
}

// Warn logs a recoverable condition that does not tear anything down:
// a single accept failing, an unregister error during teardown.
func Warn(format string, args ...any) {
	log.Printf("WARN: "+format, args...)
}

// Error logs a condition that aborted the operation it occurred in.
func Error(format string, args ...any) {
	log.Printf("ERROR: "+format, args...)
}
