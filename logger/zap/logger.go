package zap

import (
	"github.com/forbearing/gstore/logger"
	"go.uber.org/zap"
)

// Logger implements logger.Logger as a thin wrapper around a
// *zap.Logger's sugared logger.
type Logger struct{ zlog *zap.Logger }

var _ logger.Logger = (*Logger)(nil)

func (l *Logger) Debug(args ...any) { l.zlog.Sugar().Debug(args...) }
func (l *Logger) Info(args ...any)  { l.zlog.Sugar().Info(args...) }
func (l *Logger) Warn(args ...any)  { l.zlog.Sugar().Warn(args...) }
func (l *Logger) Error(args ...any) { l.zlog.Sugar().Error(args...) }
func (l *Logger) Fatal(args ...any) { l.zlog.Sugar().Fatal(args...) }

func (l *Logger) Debugf(format string, args ...any) { l.zlog.Sugar().Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.zlog.Sugar().Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.zlog.Sugar().Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.zlog.Sugar().Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...any) { l.zlog.Sugar().Fatalf(format, args...) }

func (l *Logger) Debugw(msg string, kv ...any) { l.zlog.Sugar().Debugw(msg, kv...) }
func (l *Logger) Infow(msg string, kv ...any)  { l.zlog.Sugar().Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...any)  { l.zlog.Sugar().Warnw(msg, kv...) }
func (l *Logger) Errorw(msg string, kv ...any) { l.zlog.Sugar().Errorw(msg, kv...) }
func (l *Logger) Fatalw(msg string, kv ...any) { l.zlog.Sugar().Fatalw(msg, kv...) }

// With attaches key/value pairs, keys and values alternating
// positionally. An odd trailing key is paired with an empty string.
func (l *Logger) With(fields ...string) logger.Logger {
	if len(fields) == 0 {
		return l
	}
	if len(fields)%2 != 0 {
		fields = append(fields, "")
	}
	zapFields := make([]zap.Field, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		if len(fields[i]) == 0 {
			continue
		}
		zapFields = append(zapFields, zap.String(fields[i], fields[i+1]))
	}
	return &Logger{zlog: l.zlog.With(zapFields...)}
}

func (l *Logger) ZapLogger() *zap.Logger { return l.zlog }
