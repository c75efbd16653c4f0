// Package config loads the overlaysmith configuration file and keeps the
// per-overlay state.
//
// The configuration is a TOML file, by default
// $XDG_CONFIG_HOME/overlaysmith/config.toml:
//
//	overlay = "/var/db/repos/pypi"
//	package_manager = "portage"
//
//	[digest]
//	workers = 4
//
//	[repositories.pypi]
//	db_uri = "https://example.org/pypi-db.tar.gz"
//	masters = ["gentoo"]
//	packages = ["requests", "flask"]
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// AppName names the configuration, cache and state directories.
const AppName = "overlaysmith"

// FileName is the configuration file name inside the config directory.
const FileName = "config.toml"

// PackageManagers lists the supported values of package_manager.
var PackageManagers = []string{"portage"}

// Config is the decoded configuration file.
type Config struct {
	Overlay        string                `toml:"overlay"`
	PackageManager string                `toml:"package_manager"`
	ReposConf      string                `toml:"repos_conf"`
	Digest         Digest                `toml:"digest"`
	Repositories   map[string]Repository `toml:"repositories"`
}

// Digest configures manifest generation.
type Digest struct {
	// Command replaces the external manifest command. The placeholder
	// {descriptor} is replaced by the build descriptor file name.
	Command []string `toml:"command"`
	Env     []string `toml:"env"`
	Workers int      `toml:"workers"`
}

// Repository configures one package database.
type Repository struct {
	DBURI    string   `toml:"db_uri"`
	Masters  []string `toml:"masters"`
	CleanDB  bool     `toml:"clean_db"`
	Packages []string `toml:"packages"`
}

// DefaultPath is where the configuration is written by default.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, FileName)
}

// CacheDir is the user cache directory of the application.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Load reads the configuration at path. With an empty path the XDG config
// directories are searched, and an absent file yields an empty
// configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := xdg.SearchConfigFile(filepath.Join(AppName, FileName))
		if err != nil {
			return &Config{}, nil
		}
		path = found
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return &cfg, nil
}

// Validate checks values that decode but cannot be used.
func (c *Config) Validate() error {
	if c.PackageManager != "" && !slices.Contains(PackageManagers, c.PackageManager) {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported package manager %q", c.PackageManager)
	}
	if c.Digest.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "digest workers must not be negative")
	}
	for name := range c.Repositories {
		if err := errors.ValidatePackageName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "repository %q", name)
		}
	}
	return nil
}

// Repository returns the settings of one repository. A repository missing
// from the file has zero settings.
func (c *Config) Repository(name string) Repository {
	return c.Repositories[name]
}

// Save writes c to path as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
