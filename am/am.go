package am

import (
	"net"
	"strconv"
	"time"
)

// Config represents the docwatcher configuration
type Config struct {
	Watch         WatchConfig         `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
	Consume       ConsumeConfig       `mapstructure:"consume" toml:"consume" json:"consume" yaml:"consume"`
	Log           LogConfig           `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
	Server        ServerConfig        `mapstructure:"server" toml:"server" json:"server" yaml:"server"`
	Sidecar       SidecarConfig       `mapstructure:"sidecar" toml:"sidecar" json:"sidecar" yaml:"sidecar"`
	Stabilization StabilizationConfig `mapstructure:"stabilization" toml:"stabilization" json:"stabilization" yaml:"stabilization"`
}

// WatchConfig configures the shared folder that receives new documents
type WatchConfig struct {
	Folder string `mapstructure:"folder" toml:"folder" json:"folder" yaml:"folder" validate:"required"` // WATCH_FOLDER
}

// ConsumeConfig configures the folder polled by Paperless NGX
type ConsumeConfig struct {
	Folder string `mapstructure:"folder" toml:"folder" json:"folder" yaml:"folder" validate:"required"` // PAPERLESS_CONSUME_FOLDER
}

// LogConfig configures logging output
type LogConfig struct {
	Level      string `mapstructure:"level" toml:"level" json:"level" yaml:"level"`                                          // LOG_LEVEL (default: INFO)
	File       string `mapstructure:"file" toml:"file" json:"file" yaml:"file"`                                              // Rotating log file, empty = stdout only
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"` // Rotation threshold (default: 10)
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" json:"max_backups" yaml:"max_backups" validate:"gte=0"` // Rotated files kept (default: 5)
	JSON       bool   `mapstructure:"json" toml:"json" json:"json" yaml:"json"`                                              // JSON console output
}

// ServerConfig configures the status/control HTTP server
type ServerConfig struct {
	Host                  string `mapstructure:"host" toml:"host" json:"host" yaml:"host"`
	Port                  int    `mapstructure:"port" toml:"port" json:"port" yaml:"port" validate:"min=1,max=65535"`
	ForceProcessPerMinute int    `mapstructure:"force_process_per_minute" toml:"force_process_per_minute" json:"force_process_per_minute" yaml:"force_process_per_minute" validate:"gte=0"` // 0 = unlimited
}

// SidecarConfig configures the advisory metadata file written next to each copy
type SidecarConfig struct {
	Enabled bool     `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	Source  string   `mapstructure:"source" toml:"source" json:"source" yaml:"source"`
	Tags    []string `mapstructure:"tags" toml:"tags" json:"tags" yaml:"tags"`
}

// StabilizationConfig configures how long a new file must settle before it is copied.
// Checks = 0 keeps the plain fixed delay; Checks > 0 additionally polls size and
// modification time every Interval until two observations agree.
type StabilizationConfig struct {
	Settle   time.Duration `mapstructure:"settle" toml:"settle" json:"settle" yaml:"settle" validate:"gte=0"`
	Checks   int           `mapstructure:"checks" toml:"checks" json:"checks" yaml:"checks" validate:"gte=0"`
	Interval time.Duration `mapstructure:"interval" toml:"interval" json:"interval" yaml:"interval" validate:"gte=0"`
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = DefaultServerHost
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// Server constants
const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	ServiceName       = "document-watcher"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
