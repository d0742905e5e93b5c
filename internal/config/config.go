// Package config reads the backend's settings through viper.
package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DefaultPort            = 4567
	DefaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Host            string
	Port            int
	H2c             bool
	ShutdownTimeout time.Duration
	LogJSON         bool
	LogLevel        log.Level
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Setup registers defaults, config file locations and environment bindings
// on v. A missing config file is not an error.
func Setup(v *viper.Viper) error {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/query-backend/")
	v.AddConfigPath("$HOME/.query-backend")
	v.AddConfigPath(".")

	v.SetDefault("host", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("h2c", false)
	v.SetDefault("shutdown-timeout", DefaultShutdownTimeout)
	v.SetDefault("log-json", false)
	v.SetDefault("log-level", "INFO")

	for key, env := range map[string]string{
		"host":             "HOST",
		"port":             "PORT",
		"h2c":              "H2C",
		"shutdown-timeout": "SHUTDOWN_TIMEOUT",
		"log-json":         "LOG_JSON",
		"log-level":        "LOG_LEVEL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing log-level: %w", err)
	}

	port := v.GetInt("port")
	if port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", port)
	}

	return Config{
		Host:            v.GetString("host"),
		Port:            port,
		H2c:             v.GetBool("h2c"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogJSON:         v.GetBool("log-json"),
		LogLevel:        level,
	}, nil
}
