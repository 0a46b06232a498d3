package blob

import "log/slog"

// Telemetry receives named events with a string-keyed property bag.
type Telemetry interface {
	Emit(name string, props map[string]string)
}

// LogTelemetry writes events to a structured logger.
type LogTelemetry struct {
	Logger *slog.Logger
}

// NewLogTelemetry creates a telemetry sink over logger. A nil logger
// uses slog.Default.
func NewLogTelemetry(logger *slog.Logger) *LogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTelemetry{Logger: logger}
}

func (t *LogTelemetry) Emit(name string, props map[string]string) {
	attrs := make([]any, 0, len(props)*2)
	for k, v := range props {
		attrs = append(attrs, slog.String(k, v))
	}
	t.Logger.Info(name, attrs...)
}

// NoOpTelemetry implements the Telemetry interface but does nothing.
type NoOpTelemetry struct{}

func (NoOpTelemetry) Emit(name string, props map[string]string) {}
