package outbox

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger type accepted by Facade. It is the
// logiface facade (see github.com/joeycumines/logiface) bound to stumpy's
// lightweight event type, which keeps the core's logging surface a single
// generic instantiation instead of threading a type parameter through every
// exported type.
//
// Design decision: logging is attached once, at Facade construction, rather
// than configured per call. The queue is a single long-lived object for the
// life of the process; there is no case where different operations on the
// same Facade should log to different destinations.
type Logger = logiface.Logger[*stumpy.Event]

// NewDefaultLogger returns a Logger that writes newline-delimited JSON to
// os.Stderr via stumpy, at or above the given level. Passing a nil level
// threshold is not supported; use logiface.LevelInformational unless a
// quieter default is wanted.
func NewDefaultLogger(level logiface.Level) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(),
		logiface.WithLevel[*stumpy.Event](level),
	)
}

// noopLogger discards everything; used when Facade is constructed with a
// nil Logger option. A Logger with no configured writer never allocates an
// event (see logiface.Logger.canWrite), so this is cheap to call on every
// hygiene path.
func noopLogger() *Logger {
	return logiface.New[*stumpy.Event]()
}

func logWarn(l *Logger, category, msg string, fields map[string]any) {
	if l == nil {
		return
	}
	b := l.Warning()
	logFields(b, fields)
	b.Log(category + `: ` + msg)
}

func logInfo(l *Logger, category, msg string, fields map[string]any) {
	if l == nil {
		return
	}
	b := l.Info()
	logFields(b, fields)
	b.Log(category + `: ` + msg)
}

func logErr(l *Logger, category, msg string, err error) {
	if l == nil {
		return
	}
	l.Err().Str(`category`, category).Err(err).Log(msg)
}

func logFields(b *logiface.Builder[*stumpy.Event], fields map[string]any) {
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			b.Str(k, val)
		case int:
			b.Int(k, val)
		case int64:
			b.Int64(k, val)
		case bool:
			b.Bool(k, val)
		default:
			b.Any(k, val)
		}
	}
}
