package zerologger

import (
	"io"

	"github.com/rs/zerolog"

	logcomm "github.com/TopiaNetwork/flowlink/log/common"
)

// ZeroLogger adapts a zerolog.Logger; children share the writer of their parent.
type ZeroLogger struct {
	log *zerolog.Logger
}

func NewLogger(level zerolog.Level, w io.Writer) *ZeroLogger {
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return wrap(zl)
}

func wrap(zl zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{&zl}
}

func (zl *ZeroLogger) msg(level zerolog.Level, msg string) {
	zl.log.WithLevel(level).Msg(msg)
}

func (zl *ZeroLogger) msgf(level zerolog.Level, format string, args []interface{}) {
	zl.log.WithLevel(level).Msgf(format, args...)
}

func (zl *ZeroLogger) Trace(msg string) { zl.msg(zerolog.TraceLevel, msg) }

func (zl *ZeroLogger) Tracef(format string, args ...interface{}) {
	zl.msgf(zerolog.TraceLevel, format, args)
}

func (zl *ZeroLogger) Debug(msg string) { zl.msg(zerolog.DebugLevel, msg) }

func (zl *ZeroLogger) Debugf(format string, args ...interface{}) {
	zl.msgf(zerolog.DebugLevel, format, args)
}

func (zl *ZeroLogger) Info(msg string) { zl.msg(zerolog.InfoLevel, msg) }

func (zl *ZeroLogger) Infof(format string, args ...interface{}) {
	zl.msgf(zerolog.InfoLevel, format, args)
}

func (zl *ZeroLogger) Warn(msg string) { zl.msg(zerolog.WarnLevel, msg) }

func (zl *ZeroLogger) Warnf(format string, args ...interface{}) {
	zl.msgf(zerolog.WarnLevel, format, args)
}

func (zl *ZeroLogger) Error(msg string) { zl.msg(zerolog.ErrorLevel, msg) }

func (zl *ZeroLogger) Errorf(format string, args ...interface{}) {
	zl.msgf(zerolog.ErrorLevel, format, args)
}

// Fatal and Panic go through the dedicated zerolog events, WithLevel neither exits nor panics.
func (zl *ZeroLogger) Fatal(msg string) {
	zl.log.Fatal().Msg(msg)
}

func (zl *ZeroLogger) Fatalf(format string, args ...interface{}) {
	zl.log.Fatal().Msgf(format, args...)
}

func (zl *ZeroLogger) Panic(msg string) {
	zl.log.Panic().Msg(msg)
}

func (zl *ZeroLogger) Panicf(format string, args ...interface{}) {
	zl.log.Panic().Msgf(format, args...)
}

func (zl *ZeroLogger) UpdateLoggerLevel(level logcomm.LogLevel) {
	zxNew := zl.log.Level(logcomm.ToZerologLevel(level))
	zl.log = &zxNew
}

func (zl *ZeroLogger) CreateModuleLogger(level zerolog.Level, module string) *ZeroLogger {
	return wrap(zl.log.With().Str("module", module).Logger().Level(level))
}

// WithField tags every entry with key, topics and request ids mostly.
func (zl *ZeroLogger) WithField(key string, value interface{}) *ZeroLogger {
	return wrap(zl.log.With().Interface(key, value).Logger())
}
