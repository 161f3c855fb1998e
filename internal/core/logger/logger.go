package logger

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/build"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/consts"
)

type LogMod string

const (
	DevelopmentMod LogMod = "development"
	ProductionMod  LogMod = "production"
)

const (
	LogModEnvKey        consts.EnvKey = "LOG_MOD"
	LevelEnvKey         consts.EnvKey = "LOG_LEVEL"
	LogMappingEnvKey    consts.EnvKey = "LOG_MAPPING"
	LogSkipCallerEnvKey consts.EnvKey = "LOG_SKIP_CALLER"
)

type Config struct {
	LogMod     LogMod            `mapstructure:"mod" default:"production" validate:"oneof=production development"`
	LogLevel   string            `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	LogMapping map[string]LogMod `mapstructure:"mapping"`
	SkipCaller bool              `mapstructure:"skip_caller"`
}

// parseMapping reads "name=level,name2=level2" into per-logger levels.
func parseMapping(mappingStr string) map[string]LogMod {
	if mappingStr == "" {
		return nil
	}
	mapping := make(map[string]LogMod)
	for _, pair := range strings.Split(mappingStr, ",") {
		name, lvl, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" {
			continue
		}
		mapping[name] = LogMod(lvl)
	}
	return mapping
}

func configFromEnv() *Config {
	cfg := &Config{
		LogMod:     LogMod(os.Getenv(LogModEnvKey)),
		LogLevel:   os.Getenv(LevelEnvKey),
		LogMapping: parseMapping(os.Getenv(LogMappingEnvKey)),
		SkipCaller: os.Getenv(LogSkipCallerEnvKey) == "true",
	}
	if cfg.LogMod == "" {
		cfg.LogMod = ProductionMod
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = zapcore.InfoLevel.String()
	}
	return cfg
}

var (
	globalLogger  = newDefault()                   //nolint:gochecknoglobals // global logger needed for all app.
	globalMapping = make(map[string]zapcore.Level) //nolint:gochecknoglobals // per-name levels
)

// newDefault creates the logger used before NewFromConfig runs.
func newDefault(opts ...zap.Option) *zap.Logger {
	cfg := newZapCfg(DevelopmentMod, zapcore.DebugLevel)
	logger, _ := cfg.Build(opts...)

	return logger
}

func newZapCfg(mod LogMod, logLevel zapcore.Level) zap.Config {
	var cfg zap.Config

	switch mod {
	case ProductionMod:
		cfg = zap.NewProductionConfig()
		cfg.Level.SetLevel(logLevel)
	case DevelopmentMod:
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	return cfg
}

// NewFromConfig builds the process logger and installs it as the global one.
func NewFromConfig(cfg *Config, opts ...zap.Option) *zap.Logger {
	level, parseErr := zapcore.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		panic(parseErr)
	}

	logger, err := newZapCfg(cfg.LogMod, level).Build(opts...)
	if err != nil {
		panic(err)
	}

	globalLogger = logger.With(
		zap.String("service", build.ServiceName),
		zap.String("version", build.Version),
		zap.String("instance", build.GlobalInstanceId),
	)

	for name, lvl := range cfg.LogMapping {
		globalMapping[name], err = zapcore.ParseLevel(string(lvl))
		if err != nil {
			panic(err)
		}
	}

	if cfg.SkipCaller {
		globalLogger = globalLogger.WithOptions(zap.WithCaller(false))
	}

	return globalLogger
}

func NewFromEnv(opts ...zap.Option) *zap.Logger {
	return NewFromConfig(configFromEnv(), opts...)
}

func namedLevel(name string) zapcore.Level {
	if level, ok := globalMapping[name]; ok {
		return level
	}
	return Global().Level()
}

// Global returns the global logger.
func Global() *zap.Logger {
	return globalLogger
}

func Named(name string) *zap.Logger {
	return globalLogger.Named(name).WithOptions(zap.IncreaseLevel(namedLevel(name)))
}

func Slog() *slog.Logger {
	return slog.New(zapslog.NewHandler(Global().Core()))
}

func StdLog() *log.Logger {
	stdOutLogger, err := zap.NewStdLogAt(Global(), Global().Level())
	if err != nil {
		panic(err)
	}
	return stdOutLogger
}

// Zerolog adapts the global logger for the hatchet client, which only accepts zerolog.
func Zerolog() *zerolog.Logger {
	var zeroLvl zerolog.Level
	switch Global().Level() {
	case zapcore.DebugLevel:
		zeroLvl = zerolog.DebugLevel
	case zapcore.InfoLevel:
		zeroLvl = zerolog.InfoLevel
	case zapcore.WarnLevel:
		zeroLvl = zerolog.WarnLevel
	case zapcore.ErrorLevel:
		zeroLvl = zerolog.ErrorLevel
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		zeroLvl = zerolog.PanicLevel
	case zapcore.FatalLevel:
		zeroLvl = zerolog.FatalLevel
	default:
		zeroLvl = zerolog.InfoLevel
	}
	logger := zerolog.New(StdLog().Writer()).Level(zeroLvl).With().Fields(
		map[string]any{
			"service":  build.ServiceName,
			"version":  build.Version,
			"instance": build.GlobalInstanceId,
		},
	).Logger()
	return &logger
}
