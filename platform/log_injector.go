package platform

import (
	"log/slog"

	"markestedt/stratagem/keys"
)

// LogInjector is an Injector that only logs the events it would send. It is
// used for dry runs.
type LogInjector struct {
	logger *slog.Logger
}

// NewLogInjector creates a dry-run injector. A nil logger uses slog.Default.
func NewLogInjector(logger *slog.Logger) *LogInjector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogInjector{logger: logger}
}

func (l *LogInjector) Press(k keys.Key) error {
	l.logger.Info("Dry run", "event", "press", "key", k.String())
	return nil
}

func (l *LogInjector) Release(k keys.Key) error {
	l.logger.Info("Dry run", "event", "release", "key", k.String())
	return nil
}

func (l *LogInjector) Tap(k keys.Key) error {
	l.logger.Info("Dry run", "event", "tap", "key", k.String())
	return nil
}

func (l *LogInjector) Close() error {
	return nil
}
