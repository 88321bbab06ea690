package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	logcomm "github.com/TopiaNetwork/flowlink/log/common"
	"github.com/TopiaNetwork/flowlink/log/zerologger"
)

type LogFormat uint8

const (
	TextFormat LogFormat = iota
	JSONFormat
)
const DefaultLogFormat = TextFormat

type LogOutput uint8

const (
	StdErrOutput LogOutput = iota
	FileLogOutput
	StdOutOutput
	// TeeOutput writes to stderr and to the file.
	TeeOutput
)
const DefaultLogOutput = StdErrOutput

// Logger is the leveled logger every component receives, scoped by CreateModuleLogger.
type Logger interface {
	Trace(msg string)
	Tracef(string, ...interface{})
	Debug(msg string)
	Debugf(string, ...interface{})
	Info(msg string)
	Infof(string, ...interface{})
	Warn(msg string)
	Warnf(string, ...interface{})
	Error(msg string)
	Errorf(string, ...interface{})
	Fatal(msg string)
	Fatalf(string, ...interface{})
	Panic(msg string)
	Panicf(string, ...interface{})

	UpdateLoggerLevel(level logcomm.LogLevel)
}

const TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

func (l LogFormat) String() string {
	switch l {
	case TextFormat:
		return "text"
	case JSONFormat:
		return "json"
	}
	return fmt.Sprintf("LogFormat(%d)", uint8(l))
}

func ParseLogFormat(s string) (LogFormat, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return TextFormat, nil
	case "json":
		return JSONFormat, nil
	}
	return TextFormat, errors.New("unknown log format " + s)
}

func (o LogOutput) String() string {
	switch o {
	case StdErrOutput:
		return "stderr"
	case FileLogOutput:
		return "filelog"
	case StdOutOutput:
		return "stdout"
	case TeeOutput:
		return "tee"
	}
	return fmt.Sprintf("LogOutput(%d)", uint8(o))
}

func ParseLogOutput(s string) (LogOutput, error) {
	switch strings.ToLower(s) {
	case "", "stderr":
		return StdErrOutput, nil
	case "file", "filelog":
		return FileLogOutput, nil
	case "stdout":
		return StdOutOutput, nil
	case "tee":
		return TeeOutput, nil
	}
	return StdErrOutput, errors.New("unknown log output " + s)
}

var cwd string

func init() {
	var err error
	cwd, err = os.Getwd()
	if err != nil {
		cwd = ""
		fmt.Println("couldn't get current working directory: ", err.Error())
	}
}

func defaultPartsOrder() []string {
	return []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		"module",
		zerolog.MessageFieldName,
		zerolog.CallerFieldName,
	}
}

func formatCaller() zerolog.Formatter {
	return func(i interface{}) string {
		var c string
		if cc, ok := i.(string); ok {
			c = cc
		}
		if len(c) > 0 {
			if len(cwd) > 0 {
				c = strings.TrimPrefix(c, cwd)
				c = strings.TrimPrefix(c, "/")
			}
			c = "file=" + c
		}
		return c
	}
}

func newDefaultTextOutput(out io.Writer) io.Writer {
	return &zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      true,
		TimeFormat:   TimestampFormat,
		PartsOrder:   defaultPartsOrder(),
		FormatCaller: formatCaller(),
	}
}

func selectFormatOutput(format LogFormat, output io.Writer) (io.Writer, error) {
	switch format {
	case TextFormat:
		return newDefaultTextOutput(output), nil
	case JSONFormat:
		return output, nil
	default:
		return nil, errors.New("unknown formatter " + format.String())
	}
}

func openLogFile(path string) (io.Writer, error) {
	if path == "" {
		return nil, errors.New("log file path blank")
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

func generateOutput(output LogOutput, param string) (io.Writer, error) {
	switch output {
	case StdErrOutput:
		return os.Stderr, nil
	case StdOutOutput:
		return os.Stdout, nil
	case FileLogOutput:
		return openLogFile(param)
	case TeeOutput:
		f, err := openLogFile(param)
		if err != nil {
			return nil, err
		}
		return zerolog.MultiLevelWriter(os.Stderr, f), nil
	default:
		return nil, errors.New("unknown output type " + output.String())
	}
}

func CreateMainLogger(level logcomm.LogLevel, format LogFormat, output LogOutput, param string) (Logger, error) {
	outputW, err := generateOutput(output, param)
	if err != nil {
		return nil, err
	}

	return CreateWriterLogger(level, format, outputW)
}

// CreateWriterLogger builds a main logger over an arbitrary writer, tests use it to capture output.
func CreateWriterLogger(level logcomm.LogLevel, format LogFormat, w io.Writer) (Logger, error) {
	wr, err := selectFormatOutput(format, w)
	if err != nil {
		return nil, err
	}

	return zerologger.NewLogger(logcomm.ToZerologLevel(level), wr), nil
}

func SetGlobalLevel(level logcomm.LogLevel) {
	zerolog.SetGlobalLevel(logcomm.ToZerologLevel(level))
}

func CreateModuleLogger(level logcomm.LogLevel, module string, l Logger) Logger {
	if zl, ok := l.(*zerologger.ZeroLogger); ok {
		return zl.CreateModuleLogger(logcomm.ToZerologLevel(level), module)
	}

	return l
}

func WithField(l Logger, key string, value interface{}) Logger {
	if zl, ok := l.(*zerologger.ZeroLogger); ok {
		return zl.WithField(key, value)
	}

	return l
}

// CreateNopLogger discards everything.
func CreateNopLogger() Logger {
	return zerologger.NewLogger(zerolog.Disabled, io.Discard)
}
