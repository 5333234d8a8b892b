package conf

import (
	"errors"
	"fmt"
	"strings"
)

type Mode int32

const (
	MODE_DEV  Mode = 0
	MODE_PROD Mode = 1
)

// Bootstrap is the `log` section of the service config.
type Bootstrap struct {
	Log *Log `json:"log"`
}

type Log struct {
	Logger *Logger `json:"logger"`
}

type Logger struct {
	Mode       Mode     `json:"mode"`
	AppName    string   `json:"app_name"`
	Level      string   `json:"level"`
	Directory  string   `json:"directory"`
	FormatJson bool     `json:"format_json"`
	ErrorFile  bool     `json:"error_file"`
	Sensitive  []string `json:"sensitive"`
	Rotate     *Rotate  `json:"rotate"`
}

type Rotate struct {
	MaxSizeMB  int32 `json:"max_size_mb"`
	MaxBackups int32 `json:"max_backups"`
	MaxAgeDays int32 `json:"max_age_days"`
	Compress   bool  `json:"compress"`
	LocalTime  bool  `json:"local_time"`
}

func DefaultConfig(opts ...Option) *Bootstrap {
	c := &Log{
		Logger: &Logger{
			Mode:       MODE_DEV,
			AppName:    "app",
			Level:      "debug",
			Directory:  "./logs",
			FormatJson: false,
			ErrorFile:  false,
			Sensitive:  []string{},
			Rotate: &Rotate{
				MaxSizeMB:  100,
				MaxBackups: 7,
				MaxAgeDays: 7,
				Compress:   true,
				LocalTime:  true,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return &Bootstrap{
		Log: c,
	}
}

type Option func(*Log)

func WithAppName(appName string) Option {
	return func(c *Log) { c.Logger.AppName = appName }
}

func WithProduction() Option {
	return func(c *Log) {
		c.Logger.Mode = MODE_PROD
		c.Logger.Level = "info"
	}
}

func WithLevel(level string) Option {
	return func(c *Log) { c.Logger.Level = level }
}

func WithDirectory(dir string) Option {
	return func(c *Log) { c.Logger.Directory = dir }
}

func WithFormatJson(enabled bool) Option {
	return func(c *Log) { c.Logger.FormatJson = enabled }
}

func WithErrorFile(enabled bool) Option {
	return func(c *Log) { c.Logger.ErrorFile = enabled }
}

func WithSensitive(keys []string) Option {
	return func(c *Log) { c.Logger.Sensitive = keys }
}

// ValidateAll checks the whole log section. A missing section is valid and means defaults.
func (b *Bootstrap) ValidateAll() error {
	if b == nil || b.Log == nil || b.Log.Logger == nil {
		return nil
	}
	return b.Log.Logger.ValidateAll()
}

func (l *Logger) ValidateAll() error {
	if l == nil {
		return nil
	}
	if l.Mode != MODE_DEV && l.Mode != MODE_PROD {
		return fmt.Errorf("log.logger.mode: unknown mode %d", l.Mode)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("log.logger.level: unknown level %q", l.Level)
	}
	if r := l.Rotate; r != nil && (r.MaxSizeMB < 0 || r.MaxBackups < 0 || r.MaxAgeDays < 0) {
		return errors.New("log.logger.rotate: negative limits")
	}
	return nil
}
