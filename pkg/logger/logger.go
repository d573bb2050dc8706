package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env   string    // development -> consola legible; production -> JSON
	Level string    // trace, debug, info, warn, error
	Out   io.Writer // por defecto os.Stdout
}

// Logger wrapper sobre zerolog para inyección y consistencia.
// Un *Logger nil se comporta como Nop.
type Logger struct {
	zl zerolog.Logger
}

// New crea un logger estructurado. En development usa salida legible; en production JSON.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Out != nil {
		w = cfg.Out
	}
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w}
	}

	level := parseLevel(cfg.Level)
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()

	// Redirigir el logger global de zerolog para librerías que lo usen
	log.Logger = zl

	return &Logger{zl: zl}
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) z() *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return &l.zl
}

// Trace, Debug, Info, Warn, Error delegados a zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.z().Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.z().Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.z().Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.z().Warn() }
func (l *Logger) Error() *zerolog.Event { return l.z().Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.z().Fatal() }

// Lote devuelve un sublogger que etiqueta cada evento con el código de lote.
func (l *Logger) Lote(codigo string) *Logger {
	return &Logger{zl: l.z().With().Str("lote", codigo).Logger()}
}

// Zerolog devuelve el logger interno por si se necesita la API directa (asynq, fiber).
func (l *Logger) Zerolog() zerolog.Logger {
	return *l.z()
}

// Nop devuelve un logger deshabilitado (tests y dependencias opcionales).
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}
