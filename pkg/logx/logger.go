package logx

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"path"
	"time"
)

var logger zerolog.Logger
var pid = os.Getpid()

// DefaultLevel is used when no level is configured. The profiler core is
// embedded into host processes, so it must come up with sane logging even
// when the host never calls Initialize.
const DefaultLevel = "info"

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	// Level is the log level to use (e.g., "info", "debug").
	Level string
	// ConsoleLogging enables logging to the console.
	ConsoleLogging bool
	// FileLogging enables logging to a file.
	FileLogging bool
	// Directory specifies the directory for log files (used if FileLogging is enabled).
	Directory string
	// Filename is the name of the log file.
	Filename string
	// MaxSize is the maximum size (in MB) of a log file before it is rolled.
	MaxSize int
	// MaxBackups is the maximum number of rolled log files to keep.
	MaxBackups int
	// MaxAge is the maximum age (in days) to keep a log file.
	MaxAge int
	// Compress enables compression of rolled log files.
	Compress bool
}

func init() {
	// A host that never configures logging still gets a usable logger.
	logger = zerolog.New(os.Stderr).With().Timestamp().Int("pid", pid).Logger().Level(zerolog.InfoLevel)
}

func Initialize(c *LoggingConfig) error {
	return InitializeWithOptions(c)
}

func newRollingFile(cfg *LoggingConfig) (io.Writer, error) {
	return &lumberjack.Logger{
		Filename:   path.Join(cfg.Directory, cfg.Filename),
		MaxBackups: cfg.MaxBackups, // files
		MaxSize:    cfg.MaxSize,    // megabytes
		MaxAge:     cfg.MaxAge,     // days
		Compress:   cfg.Compress,
	}, nil
}

func InitializeWithOptions(cfg *LoggingConfig) error {
	level := cfg.Level
	if level == "" {
		level = DefaultLevel
	}

	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	var writers []io.Writer
	if cfg.FileLogging {
		logFile, err := newRollingFile(cfg)
		if err != nil {
			return err
		}

		fileWriter := zerolog.New(logFile).With().Timestamp().Logger()
		writers = append(writers, console, fileWriter)
	} else {
		writers = append(writers, console)
	}

	mw := zerolog.MultiLevelWriter(writers...)
	logger = zerolog.New(mw).With().
		Timestamp().
		Int("pid", pid).
		Logger()

	return nil
}

func As() *zerolog.Logger {
	return &logger
}

// For returns a child logger tagged with the given component name.
// Samplers, timers and the profiler use it so every line carries its origin.
func For(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

func GetPid() int {
	return pid
}
