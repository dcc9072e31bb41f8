package am

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults matching the container layout the service ships in
const (
	DefaultWatchFolder   = "/shared"
	DefaultConsumeFolder = "/paperless-consume"
	DefaultLogLevel      = "INFO"
	DefaultLogFile       = "/app/logs/watcher.log"
	DefaultSettle        = 2 * time.Second
	DefaultSidecarSource = "Nextcloud Auto-Import"
)

// DefaultSidecarTags returns the tags written into every sidecar
func DefaultSidecarTags() []string {
	return []string{"auto-imported", "nautical-parts"}
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("watch.folder", DefaultWatchFolder)
	v.SetDefault("consume.folder", DefaultConsumeFolder)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("log.max_size_mb", 10) // rotate at 10 MB
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.json", false)

	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.force_process_per_minute", 0)

	v.SetDefault("sidecar.enabled", true)
	v.SetDefault("sidecar.source", DefaultSidecarSource)
	v.SetDefault("sidecar.tags", DefaultSidecarTags())

	v.SetDefault("stabilization.settle", DefaultSettle)
	v.SetDefault("stabilization.checks", 0)
	v.SetDefault("stabilization.interval", 500*time.Millisecond)
}

// BindLegacyEnvVars binds the unprefixed variable names the service has always
// been deployed with. Prefixed DOCWATCHER_* names still work via AutomaticEnv.
func BindLegacyEnvVars(v *viper.Viper) {
	v.BindEnv("watch.folder", "WATCH_FOLDER", "DOCWATCHER_WATCH_FOLDER")
	v.BindEnv("consume.folder", "PAPERLESS_CONSUME_FOLDER", "DOCWATCHER_CONSUME_FOLDER")
	v.BindEnv("log.level", "LOG_LEVEL", "DOCWATCHER_LOG_LEVEL")
}

// EnvVarNames lists every environment variable that can override a setting
func EnvVarNames() []string {
	names := []string{"WATCH_FOLDER", "PAPERLESS_CONSUME_FOLDER", "LOG_LEVEL"}
	for _, key := range NewViper().AllKeys() {
		names = append(names, "DOCWATCHER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	sort.Strings(names)
	return names
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Watch: %s, Consume: %s, Log: {Level: %s}, Server: %s}",
		c.Watch.Folder, c.Consume.Folder, c.Log.Level, c.Server.Addr())
}
