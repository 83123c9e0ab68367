// Package config loads the installer configuration file.
package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// General holds host-wide settings.
type General struct {
	Hostname string
}

// Database points at the database server the instance will use.
type Database struct {
	Engine        string
	Host          string
	Port          int
	AdminUser     string
	AdminPassword string
}

// Modoboa configures the application instance itself.
type Modoboa struct {
	User         string
	HomeDir      string
	VenvPath     string
	InstancePath string
	Timezone     string
	Version      string
	Extensions   []string
	DevMode      bool
	DBName       string
	DBUser       string
	DBPassword   string
}

// Amavis configures the optional content-filter feature.
type Amavis struct {
	Enabled    bool
	DBName     string
	DBUser     string
	DBPassword string
}

// Config is the full installer configuration.
type Config struct {
	General  General
	Database Database
	Modoboa  Modoboa
	Amavis   Amavis
}

// SetDefaults registers the defaults an installer.cfg may omit.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("modoboa.user", "modoboa")
	v.SetDefault("modoboa.home_dir", "/srv/modoboa")
	v.SetDefault("modoboa.timezone", "UTC")
	v.SetDefault("modoboa.version", "latest")
	v.SetDefault("modoboa.dbname", "modoboa")
	v.SetDefault("modoboa.dbuser", "modoboa")
	v.SetDefault("amavis.dbname", "amavis")
	v.SetDefault("amavis.dbuser", "amavis")
}

// Load builds a Config from the given viper instance and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		General: General{
			Hostname: v.GetString("general.hostname"),
		},
		Database: Database{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			AdminUser:     v.GetString("database.admin_user"),
			AdminPassword: v.GetString("database.admin_password"),
		},
		Modoboa: Modoboa{
			User:         v.GetString("modoboa.user"),
			HomeDir:      v.GetString("modoboa.home_dir"),
			VenvPath:     v.GetString("modoboa.venv_path"),
			InstancePath: v.GetString("modoboa.instance_path"),
			Timezone:     v.GetString("modoboa.timezone"),
			Version:      v.GetString("modoboa.version"),
			Extensions:   splitList(v.GetString("modoboa.extensions")),
			DevMode:      v.GetBool("modoboa.devmode"),
			DBName:       v.GetString("modoboa.dbname"),
			DBUser:       v.GetString("modoboa.dbuser"),
			DBPassword:   v.GetString("modoboa.dbpassword"),
		},
		Amavis: Amavis{
			Enabled:    v.GetBool("amavis.enabled"),
			DBName:     v.GetString("amavis.dbname"),
			DBUser:     v.GetString("amavis.dbuser"),
			DBPassword: v.GetString("amavis.dbpassword"),
		},
	}

	// The port default depends on the engine, it cannot be a plain
	// viper default.
	if cfg.Database.Port == 0 {
		switch cfg.Database.Engine {
		case "mysql":
			cfg.Database.Port = 3306
		default:
			cfg.Database.Port = 5432
		}
	}

	if cfg.Modoboa.VenvPath == "" {
		cfg.Modoboa.VenvPath = filepath.Join(cfg.Modoboa.HomeDir, "env")
	}
	if cfg.Modoboa.InstancePath == "" {
		cfg.Modoboa.InstancePath = filepath.Join(cfg.Modoboa.HomeDir, "instance")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList splits a whitespace-separated config value.
func splitList(s string) []string {
	return strings.Fields(s)
}

// validate rejects misconfiguration before any install step runs.
func (c *Config) validate() error {
	switch c.Database.Engine {
	case "postgres", "mysql":
	default:
		return errors.Errorf("unknown database engine %q", c.Database.Engine)
	}
	if c.General.Hostname == "" {
		return errors.New("general.hostname is required")
	}
	return nil
}
