package utils

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(level string, json bool, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "tracker",
		Level:      lvl,
		Output:     w,
		JSONFormat: json,
	})
}

// LogEvent writes the standard module/action/request_id line.
// Keep message a summary; never log request payloads.
func LogEvent(logger hclog.Logger, requestID, module, action, message string) {
	if logger == nil {
		return
	}
	logger.Info("["+strings.ToUpper(module)+"] "+message,
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	)
}
