// Package zap wires the logger.Logger capability to go.uber.org/zap,
// with gopkg.in/natefinch/lumberjack.v2 rolling the on-disk files this
// package writes, one file per named logger.
package zap

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/forbearing/gstore/config"
	"github.com/forbearing/gstore/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Option configures a single named logger's encoder.
type Option struct {
	DisableMsg   bool
	DisableLevel bool
	TSLayout     string
}

// Init wires logger.Facade, logger.Lock, and logger.Database from the
// active config.App.Logger section. Call once at process startup,
// before anything logs.
func Init() error {
	logger.Facade = New("facade.log")
	logger.Lock = New("lock.log")
	logger.Database = New("database.log")
	return nil
}

// Clean flushes every named logger's buffered entries. Call at
// shutdown, after the last log line is expected to have been written.
func Clean() {
	for _, l := range []logger.Logger{logger.Facade, logger.Lock, logger.Database} {
		if zl, ok := l.(*Logger); ok {
			_ = zl.zlog.Sync()
		}
	}
}

// New builds a logger.Logger writing to filename under config.App's
// logger directory ("/dev/stdout"/"/dev/stderr" bypass the file and
// lumberjack entirely).
func New(filename string, opts ...Option) *Logger {
	return &Logger{zlog: zap.New(
		zapcore.NewCore(newEncoder(opts...), newWriter(filename), newLevel()),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.FatalLevel),
	)}
}

func newWriter(filename string) zapcore.WriteSyncer {
	switch strings.TrimSpace(filename) {
	case "/dev/stdout", "":
		return zapcore.AddSync(os.Stdout)
	case "/dev/stderr":
		return zapcore.AddSync(os.Stderr)
	default:
		if !config.App.Logger.Stdout {
			return zapcore.AddSync(&lumberjack.Logger{
				Filename:   filepath.Join(config.App.Logger.Dir, filename),
				MaxSize:    config.App.Logger.MaxSizeMB,
				MaxBackups: config.App.Logger.MaxBackups,
				MaxAge:     config.App.Logger.MaxAgeDays,
				Compress:   config.App.Logger.Compress,
				LocalTime:  true,
			})
		}
		return zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(os.Stdout),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   filepath.Join(config.App.Logger.Dir, filename),
				MaxSize:    config.App.Logger.MaxSizeMB,
				MaxBackups: config.App.Logger.MaxBackups,
				MaxAge:     config.App.Logger.MaxAgeDays,
				Compress:   config.App.Logger.Compress,
				LocalTime:  true,
			}),
		)
	}
}

func newLevel() zapcore.Level {
	level := new(zapcore.Level)
	if err := level.UnmarshalText([]byte(config.App.Logger.Level)); err != nil {
		return zapcore.InfoLevel
	}
	return *level
}

func newEncoder(opts ...Option) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if len(opts) > 0 {
		o := opts[0]
		if o.DisableMsg {
			cfg.MessageKey = ""
		}
		if o.DisableLevel {
			cfg.LevelKey = ""
		}
		if len(o.TSLayout) > 0 {
			cfg.EncodeTime = zapcore.TimeEncoderOfLayout(o.TSLayout)
		}
	}
	return zapcore.NewJSONEncoder(cfg)
}
