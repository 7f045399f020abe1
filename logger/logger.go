// Package logger declares the leveled logging capability the rest of
// this module depends on, plus the three package-level instances each
// component actually logs through. Concrete construction lives in
// logger/zap, keeping the capability interface separate from its
// zap-backed implementation.
package logger

// Logger is the leveled logging capability the facade, lock manager,
// and concrete adapters depend on. *zap-backed implementations satisfy
// it; any test double that implements these methods does too.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	Fatalw(msg string, keysAndValues ...any)

	With(fields ...string) Logger
}

// Named loggers, wired up by logger/zap.Init. Facade logs lock
// warnings and adapter-capability diagnostics: bootstrap hands it to
// the Facade, which passes the same logger to its lock manager.
// Database logs adapter-level query execution (gorm's logger.Interface
// wraps Database). Lock is initialized and flushed with the others,
// but no component in this module writes to it.
var (
	Facade   Logger
	Lock     Logger
	Database Logger
)
