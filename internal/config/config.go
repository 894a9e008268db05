// Package config provides configuration management for tsrelay using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerHost = "0.0.0.0"
	defaultServerPort = 8080

	defaultMaxPrograms         = 100
	defaultMaxStreamsPerEntry  = 100
	defaultIdleTimeout         = 10 * time.Second
	defaultIdlePollInterval    = 100 * time.Millisecond
	defaultClientPollInterval  = 1 * time.Second
	defaultUDPReceiveTimeout   = 1 * time.Second
	defaultUDPPacketSize       = 188 * 7 // 7 TS packets per spec
	defaultShutdownGracePeriod = 5 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Relay   RelayConfig   `mapstructure:"relay"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RelayConfig holds the UDP-to-HTTP fan-out engine configuration.
type RelayConfig struct {
	// MaxPrograms bounds the number of concurrently tracked UDP sources.
	MaxPrograms int `mapstructure:"max_programs"`
	// MaxStreamsPerProgram bounds the number of HTTP clients per source.
	MaxStreamsPerProgram int `mapstructure:"max_streams_per_program"`
	// IdleTimeout is how long a program entry may sit with no streams and
	// no users before its worker reaps it.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// IdlePollInterval is how often the worker rechecks idle state.
	IdlePollInterval time.Duration `mapstructure:"idle_poll_interval"`
	// ClientPollInterval is how often a blocked stream handler checks
	// whether its slot has left RUNNING.
	ClientPollInterval time.Duration `mapstructure:"client_poll_interval"`
	// UDPReceiveTimeout bounds a single UDP read.
	UDPReceiveTimeout time.Duration `mapstructure:"udp_receive_timeout"`
	// UDPPacketSize is the maximum datagram size read per call (7 TS
	// packets of 188 bytes, per spec).
	UDPPacketSize int `mapstructure:"udp_packet_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            defaultServerHost,
			Port:            defaultServerPort,
			ShutdownTimeout: defaultShutdownGracePeriod,
		},
		Relay: RelayConfig{
			MaxPrograms:          defaultMaxPrograms,
			MaxStreamsPerProgram: defaultMaxStreamsPerEntry,
			IdleTimeout:          defaultIdleTimeout,
			IdlePollInterval:     defaultIdlePollInterval,
			ClientPollInterval:   defaultClientPollInterval,
			UDPReceiveTimeout:    defaultUDPReceiveTimeout,
			UDPPacketSize:        defaultUDPPacketSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from an optional file, environment variables
// (prefixed TSRELAY_), and falls back to Default() for anything unset.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	def := Default()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("relay.max_programs", def.Relay.MaxPrograms)
	v.SetDefault("relay.max_streams_per_program", def.Relay.MaxStreamsPerProgram)
	v.SetDefault("relay.idle_timeout", def.Relay.IdleTimeout)
	v.SetDefault("relay.idle_poll_interval", def.Relay.IdlePollInterval)
	v.SetDefault("relay.client_poll_interval", def.Relay.ClientPollInterval)
	v.SetDefault("relay.udp_receive_timeout", def.Relay.UDPReceiveTimeout)
	v.SetDefault("relay.udp_packet_size", def.Relay.UDPPacketSize)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetEnvPrefix("tsrelay")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}
