package logging

import (
	"strings"
	"time"
)

// maxLoggedArg bounds how much of any single argv element is logged.
// Prompts and system prompts can be large.
const maxLoggedArg = 200

// ExecLogger provides invocation/result logging for child processes
type ExecLogger struct {
	logger *Logger
}

// NewExecLogger creates a new child-process logger
func NewExecLogger(logger *Logger) *ExecLogger {
	return &ExecLogger{logger: logger}
}

// LogInvocation logs the argv a child process is started with
func (e *ExecLogger) LogInvocation(argv []string) {
	e.logger.Debug("exec start", Fields{
		"cmd":  summarizeArgv(argv),
		"args": len(argv),
	})
}

// LogChunk logs one streamed output chunk (very verbose debugging)
func (e *ExecLogger) LogChunk(chunkNum, size int) {
	e.logger.Debug("exec chunk", Fields{
		"chunk_num":  chunkNum,
		"chunk_size": size,
	})
}

// LogExit logs the completion of a child process
func (e *ExecLogger) LogExit(exitCode int, stdoutBytes, stderrBytes int, duration time.Duration) {
	e.logger.Debug("exec done", Fields{
		"exit_code":    exitCode,
		"stdout_bytes": stdoutBytes,
		"stderr_bytes": stderrBytes,
		"duration_ms":  duration.Milliseconds(),
	})
}

// LogError logs a child process that could not run at all
func (e *ExecLogger) LogError(err error, argv []string) {
	e.logger.Error("exec failed", err, Fields{
		"cmd": summarizeArgv(argv),
	})
}

// summarizeArgv renders argv for logging with long elements truncated
func summarizeArgv(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		if len(a) > maxLoggedArg {
			a = a[:maxLoggedArg] + "...[truncated]"
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
