//go:generate mockgen -package=mocks -destination=mocks/mock_logger.go github.com/gocircum/statecell Logger

package statecell

// Logger is the subset of a structured logger a cell needs to report
// lifecycle events. pkg/logging provides a zap-backed implementation;
// the default is a no-op.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
