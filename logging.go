package tlrun

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fixed debug log locations, appended to on every run with --debug.
const (
	OfflineDebugLog = "/tmp/translate_debug.log"
	OnlineDebugLog  = "/tmp/translate_online_debug.log"
)

// NewDebugLogger returns a debug-level logger appending JSON lines to path,
// or a no-op logger when debugging is disabled.
//
// A log file that cannot be opened never fails the run: the caller gets a
// no-op logger together with the error so it can mention it on stderr.
func NewDebugLogger(enabled bool, path string) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	config.Encoding = "json"
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop(), err
	}
	return logger, nil
}

// preview shortens text for debug logs.
func preview(text string) string {
	const limit = 200
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}
