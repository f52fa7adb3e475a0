package logging

import (
	"io"
	"os"
	"time"

	"github.com/anas-shakeel/go-png/internal/config"
	"github.com/anas-shakeel/go-png/internal/oops"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
	// Levels are set per logger
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = zerolog.New(NewConsoleWriter(os.Stderr)).
		With().Timestamp().Logger().
		Level(config.Config.LogLevel)
}

// NewConsoleWriter formats events for humans; colour only when out is a terminal
func NewConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.Kitchen,
	}
}

// Applies a new level to the global logger, e.g. after flags have been parsed
func SetLevel(level zerolog.Level) {
	config.Config.LogLevel = level
	log.Logger = log.Logger.Level(level)
}

func GlobalLogger() *zerolog.Logger {
	return &log.Logger
}

func Trace() *zerolog.Event {
	return log.Trace()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error().Stack()
}

func Fatal() *zerolog.Event {
	return log.Fatal().Stack()
}

func LogPanics(logger *zerolog.Logger) {
	if r := recover(); r != nil {
		LogPanicValue(logger, r, "recovered from panic")
	}
}

func LogPanicValue(logger *zerolog.Logger, val interface{}, msg string) {
	if logger == nil {
		logger = GlobalLogger()
	}

	if err, ok := val.(error); ok {
		l := logger.Error().Err(err)
		if _, ok := err.(*oops.Error); !ok {
			l = l.Interface(zerolog.ErrorStackFieldName, oops.Trace())
		}
		l.Msg(msg)
	} else {
		logger.Error().
			Interface("recovered", val).
			Interface(zerolog.ErrorStackFieldName, oops.Trace()).
			Msg(msg)
	}
}
