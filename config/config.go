// Package config loads application configuration from an ini-backed
// file merged with environment variables via spf13/viper, with struct
// defaults via creasty/defaults, read into a single process-wide
// Config. Only the sections this module actually wires a component to
// are kept: Server, Facade, Sqlite, Postgres, Redis, and Logger (see DESIGN.md
// for the disposition of every other candidate section).
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-viper/encoding/ini"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	App = new(Config)

	configPaths = []string{}
	configFile  = ""
	configName  = "config"
	configType  = "ini"

	tempdir string
	mu      sync.RWMutex
	cv      *viper.Viper
)

// Config is the process-wide configuration root. Each embedded section
// is reachable as a field on App once Init has run.
type Config struct {
	Server   `json:"server" mapstructure:"server" ini:"server" yaml:"server"`
	Facade   `json:"facade" mapstructure:"facade" ini:"facade" yaml:"facade"`
	Sqlite   `json:"sqlite" mapstructure:"sqlite" ini:"sqlite" yaml:"sqlite"`
	Postgres `json:"postgres" mapstructure:"postgres" ini:"postgres" yaml:"postgres"`
	Redis    `json:"redis" mapstructure:"redis" ini:"redis" yaml:"redis"`
	Logger   `json:"logger" mapstructure:"logger" ini:"logger" yaml:"logger"`
}

// Server carries the example HTTP server's own listen address, kept
// separate from Facade since it has nothing to do with the storage
// layer.
type Server struct {
	Listen string `json:"listen" mapstructure:"listen" default:"0.0.0.0"`
	Port   int    `json:"port" mapstructure:"port" default:"8080"`
}

// Facade carries the Adapter Facade's own tunables (spec §6), loaded
// from the [facade] section of the config file.
type Facade struct {
	CreatedAt                 bool   `json:"created_at" mapstructure:"created_at" default:"true"`
	UpdatedAt                 bool   `json:"updated_at" mapstructure:"updated_at" default:"true"`
	TransactionWarningTimerMS int    `json:"transaction_warning_timer_ms" mapstructure:"transaction_warning_timer_ms" default:"30000"`
	TransactionCollection     string `json:"transaction_collection" mapstructure:"transaction_collection" default:"gstore_transaction"`
	Adapter                   string `json:"adapter" mapstructure:"adapter" default:"sqlite"` // sqlite | postgres | redis
}

type Sqlite struct {
	Enable bool   `json:"enable" mapstructure:"enable" default:"true"`
	Path   string `json:"path" mapstructure:"path" default:"./gstore.db"`
}

type Postgres struct {
	Enable   bool   `json:"enable" mapstructure:"enable"`
	Host     string `json:"host" mapstructure:"host" default:"127.0.0.1"`
	Port     int    `json:"port" mapstructure:"port" default:"5432"`
	Database string `json:"database" mapstructure:"database" default:"gstore"`
	Username string `json:"username" mapstructure:"username" default:"postgres"`
	Password string `json:"password" mapstructure:"password"`
	SSLMode  string `json:"ssl_mode" mapstructure:"ssl_mode" default:"disable"`
}

type Redis struct {
	Enable     bool          `json:"enable" mapstructure:"enable"`
	Addr       string        `json:"addr" mapstructure:"addr" default:"127.0.0.1:6379"`
	Password   string        `json:"password" mapstructure:"password"`
	DB         int           `json:"db" mapstructure:"db"`
	Prefix     string        `json:"prefix" mapstructure:"prefix" default:"gstore"`
	Expiration time.Duration `json:"expiration" mapstructure:"expiration" default:"0s"`
}

type Logger struct {
	Level      string `json:"level" mapstructure:"level" default:"info"`
	Dir        string `json:"dir" mapstructure:"dir" default:"./logs"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb" default:"100"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups" default:"5"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days" default:"30"`
	Compress   bool   `json:"compress" mapstructure:"compress" default:"true"`
	Stdout     bool   `json:"stdout" mapstructure:"stdout" default:"true"`
}

func (c *Config) setDefault() {
	_ = defaults.Set(&c.Server)
	_ = defaults.Set(&c.Facade)
	_ = defaults.Set(&c.Sqlite)
	_ = defaults.Set(&c.Postgres)
	_ = defaults.Set(&c.Redis)
	_ = defaults.Set(&c.Logger)
}

// Init initializes the application configuration.
//
// Configuration priority (from highest to lowest):
// 1. Environment variables
// 2. Configuration file
// 3. Default values
func Init() (err error) {
	if flag.Lookup("test.v") == nil {
		if tempdir, err = os.MkdirTemp("", "gstore_"); err != nil {
			return errors.Wrap(err, "failed to create temp dir")
		}
		fmt.Fprintf(os.Stdout, "create temp dir: %s\n", tempdir)
	}

	codecRegistry := viper.NewCodecRegistry()
	if err = codecRegistry.RegisterCodec("ini", ini.Codec{}); err != nil {
		return err
	}
	cv = viper.NewWithOptions(viper.WithCodecRegistry(codecRegistry))
	cv.AutomaticEnv()
	cv.AllowEmptyEnv(true)
	cv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	App = new(Config)
	App.setDefault()

	if len(configFile) > 0 {
		cv.SetConfigFile(configFile)
	} else {
		cv.SetConfigName(configName)
		cv.SetConfigType(configType)
	}
	cv.AddConfigPath(".")
	cv.AddConfigPath("/etc/")
	for _, path := range configPaths {
		cv.AddConfigPath(path)
	}

	if err = cv.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			if flag.Lookup("test.v") == nil {
				if err = os.WriteFile(filepath.Join(tempdir, fmt.Sprintf("%s.%s", configName, configType)), nil, 0o600); err != nil {
					return errors.Wrap(err, "failed to create config file")
				}
			}
		} else {
			return errors.Wrap(err, "failed to read config file")
		}
	}
	if err = cv.Unmarshal(App); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}

	return nil
}

func Clean() {
	if err := os.RemoveAll(tempdir); err != nil {
		zap.S().Errorw("failed to remove temp dir", "error", err, "dir", tempdir)
	} else {
		zap.S().Infow("successfully removed temp dir", "dir", tempdir)
	}
}

func Tempdir() string { return tempdir }

func SetConfigFile(file string) {
	mu.Lock()
	defer mu.Unlock()
	configFile = file
}

func SetConfigName(name string) {
	mu.Lock()
	defer mu.Unlock()
	configName = name
}

func SetConfigType(typ string) {
	mu.Lock()
	defer mu.Unlock()
	configType = typ
}

// AddPath adds a custom config search path. Default: ./, /etc/.
func AddPath(paths ...string) {
	mu.Lock()
	defer mu.Unlock()
	configPaths = append(configPaths, paths...)
}

// Save writes the current in-memory config back out, e.g. to
// regenerate a config file with the resolved defaults filled in.
func Save(out io.Writer) error {
	return cv.WriteConfigTo(out)
}
