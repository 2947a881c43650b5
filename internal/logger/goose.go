package logger

// GooseLogger routes schema migration output into the global logger.
// It satisfies goose.Logger.
type GooseLogger struct{}

// NewGooseLogger returns a logger suitable for goose.SetLogger.
func NewGooseLogger() *GooseLogger {
	return &GooseLogger{}
}

// Printf logs migration progress at info level.
func (GooseLogger) Printf(format string, v ...interface{}) {
	Log.Infof(format, v...)
}

// Fatalf logs at error level. Unlike log.Fatalf it does not exit: the error
// goose is reporting is also returned to the caller.
func (GooseLogger) Fatalf(format string, v ...interface{}) {
	Log.Errorf(format, v...)
}
