// SPDX-License-Identifier: MIT
package validate

// LogLevel represents valid log levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogLevels lists every accepted level name.
var LogLevels = []string{
	string(LogLevelTrace),
	string(LogLevelDebug),
	string(LogLevelInfo),
	string(LogLevelWarn),
	string(LogLevelError),
}
