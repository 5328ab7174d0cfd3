package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	applogger "github.com/wonny/stockspider/internal/pkg/logger"
)

// slowQueryThreshold queries slower than this log at Warn
const slowQueryThreshold = 100 * time.Millisecond

// PgxZerologAdapter adapts zerolog.Logger to pgx's tracelog.Logger interface
type PgxZerologAdapter struct {
	logger zerolog.Logger
}

// NewPgxZerologAdapter creates a new adapter
func NewPgxZerologAdapter(logger zerolog.Logger) *PgxZerologAdapter {
	return &PgxZerologAdapter{logger: logger}
}

// Log implements tracelog.Logger
func (l *PgxZerologAdapter) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	if d, ok := data["time"].(time.Duration); ok && d > slowQueryThreshold && level < tracelog.LogLevelWarn {
		level = tracelog.LogLevelWarn
		msg = "Slow query: " + msg
	}

	var event *zerolog.Event
	switch level {
	case tracelog.LogLevelTrace:
		event = l.logger.Trace()
	case tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case tracelog.LogLevelInfo:
		event = l.logger.Info()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info()
	}

	if rid := applogger.RequestID(ctx); rid != "" {
		event = event.Str("request_id", rid)
	}

	for key, value := range data {
		event = event.Interface(key, value)
	}

	event.Msg(msg)
}
