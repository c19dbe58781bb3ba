// Package config holds the server settings. Every flag can also be set from
// an IMPOSTOR_* environment variable.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "IMPOSTOR"

type Config struct {
	Bind           string
	Port           int
	DatabaseURL    string
	MinPlayers     int
	MaxPlayers     int
	CodeLength     int
	ReconnectGrace time.Duration
	IdleTimeout    time.Duration
	SweepInterval  time.Duration
	LogLevel       string
	LogJSON        bool
	AllowedOrigins []string
	PublicURL      string
}

// Flags registers every setting on fs with its default.
func (c *Config) Flags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: IMPOSTOR_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 8080, "port to listen on (env: IMPOSTOR_PORT)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL word bank, empty for the built-in list (env: IMPOSTOR_DATABASE_URL)")
	fs.IntVar(&c.MinPlayers, "min-players", 3, "players needed to start a game (env: IMPOSTOR_MIN_PLAYERS)")
	fs.IntVar(&c.MaxPlayers, "max-players", 10, "room capacity, spectators included (env: IMPOSTOR_MAX_PLAYERS)")
	fs.IntVar(&c.CodeLength, "code-length", 4, "room code length, 4 to 6 (env: IMPOSTOR_CODE_LENGTH)")
	fs.DurationVar(&c.ReconnectGrace, "reconnect-grace", 2*time.Minute, "how long a room survives with nobody connected (env: IMPOSTOR_RECONNECT_GRACE)")
	fs.DurationVar(&c.IdleTimeout, "idle-timeout", time.Hour, "time before rooms without any action are closed (env: IMPOSTOR_IDLE_TIMEOUT)")
	fs.DurationVar(&c.SweepInterval, "sweep-interval", time.Minute, "how often stale rooms are looked for (env: IMPOSTOR_SWEEP_INTERVAL)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "trace, debug, info, warn or error (env: IMPOSTOR_LOG_LEVEL)")
	fs.BoolVar(&c.LogJSON, "log-json", false, "log as JSON (env: IMPOSTOR_LOG_JSON)")
	fs.StringSliceVar(&c.AllowedOrigins, "allowed-origins", nil, "extra websocket origin patterns (env: IMPOSTOR_ALLOWED_ORIGINS)")
	fs.StringVar(&c.PublicURL, "public-url", "", "base URL used in join QR codes, empty to derive from the request (env: IMPOSTOR_PUBLIC_URL)")
}

// BindEnv fills every flag the user did not set from its environment
// variable.
func BindEnv(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		val := v.GetString(f.Name)
		if f.Value.Type() == "stringSlice" {
			val = strings.Join(strings.Fields(strings.ReplaceAll(val, ",", " ")), ",")
		}
		if err := fs.Set(f.Name, val); err != nil {
			errs = append(errs, fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err))
		}
	})
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.CodeLength < 4 || c.CodeLength > 6 {
		return fmt.Errorf("invalid code length (must be between 4-6 inclusive): %d", c.CodeLength)
	}
	if c.MinPlayers < 3 {
		return fmt.Errorf("invalid min players (must be at least 3): %d", c.MinPlayers)
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("max players (%d) must not be below min players (%d)", c.MaxPlayers, c.MinPlayers)
	}
	if c.ReconnectGrace <= 0 || c.IdleTimeout <= 0 || c.SweepInterval <= 0 {
		return errors.New("reconnect grace, idle timeout and sweep interval must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}
