package zap

import (
	"context"
	"time"

	"github.com/forbearing/gstore/logger"
	gorml "gorm.io/gorm/logger"
)

// GormLogger adapts a logger.Logger to gorm's logger.Interface, so
// adapter/sqlstore's *gorm.DB logs through the same named-logger
// machinery as the rest of this module instead of gorm's own default
// stdout logger.
type GormLogger struct {
	l             logger.Logger
	slowThreshold time.Duration
}

var _ gorml.Interface = (*GormLogger)(nil)

// NewGormLogger wraps l for use as a *gorm.DB's logger.Interface.
// Queries slower than slowThreshold are logged at Warn instead of Debug.
func NewGormLogger(l logger.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{l: l, slowThreshold: slowThreshold}
}

func (g *GormLogger) LogMode(gorml.LogLevel) gorml.Interface           { return g }
func (g *GormLogger) Info(_ context.Context, str string, args ...any)  { g.l.Infow(str, "args", args) }
func (g *GormLogger) Warn(_ context.Context, str string, args ...any)  { g.l.Warnw(str, "args", args) }
func (g *GormLogger) Error(_ context.Context, str string, args ...any) { g.l.Errorw(str, "args", args) }

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil:
		g.l.Errorw("sql failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		g.l.Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed, "threshold", g.slowThreshold)
	default:
		g.l.Debugw("sql executed", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
