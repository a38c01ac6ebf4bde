package logger

// nopLogger discards all log entries. It is used in tests and wherever a
// component requires a logger but output is unwanted.
type nopLogger struct{}

// NewNop creates a logger that does nothing.
func NewNop() Interface {
	return &nopLogger{}
}

func (l *nopLogger) Debug(msg string, fields ...Field) {}

func (l *nopLogger) Info(msg string, fields ...Field) {}

func (l *nopLogger) Warn(msg string, fields ...Field) {}

func (l *nopLogger) Error(msg string, fields ...Field) {}

// Fatal does nothing and, unlike the real implementation, does not exit.
func (l *nopLogger) Fatal(msg string, fields ...Field) {}

func (l *nopLogger) With(fields ...Field) Interface {
	return l
}

func (l *nopLogger) Sync() error {
	return nil
}
