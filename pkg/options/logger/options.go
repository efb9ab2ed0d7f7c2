// Package logger provides logger configuration options.
//
// The service logs through the zap globals (zap.S() / zap.L()); Init
// builds the configured logger and installs it process-wide.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// RotationOptions configures log file rotation.
type RotationOptions struct {
	// MaxSize is the maximum size in MB of a log file before rotation.
	MaxSize int `json:"max-size" mapstructure:"max-size"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `json:"max-age" mapstructure:"max-age"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `json:"max-backups" mapstructure:"max-backups"`

	// Compress enables gzip compression of rotated files.
	Compress bool `json:"compress" mapstructure:"compress"`
}

// Options contains logger configuration.
type Options struct {
	// Level is the minimum log level (debug|info|warn|error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log output format (json|console).
	Format string `json:"format" mapstructure:"format"`

	// OutputPaths are the log destinations; "stdout" and "stderr" are
	// recognized, anything else is treated as a rotated file path.
	OutputPaths []string `json:"output-paths" mapstructure:"output-paths"`

	// Development enables development mode (DPanic panics, caller on).
	Development bool `json:"development" mapstructure:"development"`

	// DisableCaller disables caller annotation.
	DisableCaller bool `json:"disable-caller" mapstructure:"disable-caller"`

	// DisableStacktrace disables stacktrace capture on error logs.
	DisableStacktrace bool `json:"disable-stacktrace" mapstructure:"disable-stacktrace"`

	// Rotation configures file rotation for file output paths.
	Rotation *RotationOptions `json:"rotation" mapstructure:"rotation"`

	initialFields map[string]any
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stdout"},
		Rotation: &RotationOptions{
			MaxSize:    100,
			MaxAge:     15,
			MaxBackups: 30,
			Compress:   true,
		},
	}
}

// AddFlags adds logger flags to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Log level (debug|info|warn|error)")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log format (json|console)")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "Output paths for logs")
	fs.BoolVar(&o.Development, "log.development", o.Development, "Enable development mode")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Disable caller detection")
	fs.BoolVar(&o.DisableStacktrace, "log.disable-stacktrace", o.DisableStacktrace, "Disable stacktrace capture")
	fs.IntVar(&o.Rotation.MaxSize, "log.rotation.max-size", o.Rotation.MaxSize, "Maximum size in MB of the log file before rotation")
	fs.IntVar(&o.Rotation.MaxAge, "log.rotation.max-age", o.Rotation.MaxAge, "Maximum number of days to retain old log files")
	fs.IntVar(&o.Rotation.MaxBackups, "log.rotation.max-backups", o.Rotation.MaxBackups, "Maximum number of old log files to retain")
	fs.BoolVar(&o.Rotation.Compress, "log.rotation.compress", o.Rotation.Compress, "Compress rotated log files using gzip")
}

// AddInitialField attaches a field to every log entry (service name etc).
func (o *Options) AddInitialField(key string, value any) {
	if o.initialFields == nil {
		o.initialFields = make(map[string]any)
	}
	o.initialFields[key] = value
}

// Validate validates the logger options.
func (o *Options) Validate() error {
	if _, err := zapcore.ParseLevel(strings.ToLower(o.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", o.Level, err)
	}
	switch o.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (expected json or console)", o.Format)
	}
	if len(o.OutputPaths) == 0 {
		return fmt.Errorf("at least one log output path is required")
	}
	return nil
}

// Build constructs a zap logger from the options.
func (o *Options) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(o.Level))
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if o.Format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	var encoder zapcore.Encoder
	if o.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	syncer, err := o.buildWriteSyncer()
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, syncer, level)

	zapOpts := []zap.Option{}
	if !o.DisableCaller {
		zapOpts = append(zapOpts, zap.AddCaller())
	}
	if !o.DisableStacktrace {
		zapOpts = append(zapOpts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if o.Development {
		zapOpts = append(zapOpts, zap.Development())
	}
	if len(o.initialFields) > 0 {
		fields := make([]zap.Field, 0, len(o.initialFields))
		for k, v := range o.initialFields {
			fields = append(fields, zap.Any(k, v))
		}
		zapOpts = append(zapOpts, zap.Fields(fields...))
	}

	return zap.New(core, zapOpts...), nil
}

// Init builds the logger and installs it as the zap global.
func (o *Options) Init() error {
	log, err := o.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)
	return nil
}

func (o *Options) buildWriteSyncer() (zapcore.WriteSyncer, error) {
	syncers := make([]zapcore.WriteSyncer, 0, len(o.OutputPaths))
	for _, path := range o.OutputPaths {
		switch path {
		case "stdout":
			syncers = append(syncers, zapcore.AddSync(os.Stdout))
		case "stderr":
			syncers = append(syncers, zapcore.AddSync(os.Stderr))
		default:
			syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
				Filename:   path,
				MaxSize:    o.Rotation.MaxSize,
				MaxAge:     o.Rotation.MaxAge,
				MaxBackups: o.Rotation.MaxBackups,
				Compress:   o.Rotation.Compress,
			}))
		}
	}
	return zapcore.NewMultiWriteSyncer(syncers...), nil
}
