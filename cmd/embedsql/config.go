package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/embedsql/embedsql"
)

// settings holds the fully resolved CLI configuration. Empty strings mean
// "use the library default".
type settings struct {
	BaseDir        string
	DataDir        string
	Port           int
	DistDir        string
	DistVersion    string
	ServerBinary   string
	InstallBinary  string
	ReadyLine      string
	StartTimeout   time.Duration
	InstallTimeout time.Duration
	StopTimeout    time.Duration
}

func defaultSettings() settings {
	return settings{
		Port:           embedsql.DefaultPort,
		StartTimeout:   embedsql.DefaultStartTimeout,
		InstallTimeout: embedsql.DefaultInstallTimeout,
		StopTimeout:    embedsql.DefaultStopTimeout,
	}
}

// options translates the settings into library options, leaving library
// defaults in place for anything unset.
func (s settings) options() []embedsql.Option {
	opts := []embedsql.Option{
		embedsql.WithPort(s.Port),
		embedsql.WithStartTimeout(s.StartTimeout),
		embedsql.WithInstallTimeout(s.InstallTimeout),
		embedsql.WithStopTimeout(s.StopTimeout),
	}
	if s.BaseDir != "" {
		opts = append(opts, embedsql.WithBaseDir(s.BaseDir))
	}
	if s.DataDir != "" {
		opts = append(opts, embedsql.WithDataDir(s.DataDir))
	}
	if s.DistDir != "" {
		opts = append(opts, embedsql.WithDistribution(s.DistDir, s.DistVersion))
	}
	if s.ServerBinary != "" {
		opts = append(opts, embedsql.WithServerBinary(s.ServerBinary))
	}
	if s.InstallBinary != "" {
		opts = append(opts, embedsql.WithInstallBinary(s.InstallBinary))
	}
	if s.ReadyLine != "" {
		opts = append(opts, embedsql.WithReadyLine(s.ReadyLine))
	}
	return opts
}

// fileConfig mirrors settings but uses strings for durations to stay TOML
// friendly.
type fileConfig struct {
	BaseDir        string `toml:"base_dir"`
	DataDir        string `toml:"data_dir"`
	Port           int    `toml:"port"`
	DistDir        string `toml:"dist_dir"`
	DistVersion    string `toml:"dist_version"`
	ServerBinary   string `toml:"server_binary"`
	InstallBinary  string `toml:"install_binary"`
	ReadyLine      string `toml:"ready_line"`
	StartTimeout   string `toml:"start_timeout"`
	InstallTimeout string `toml:"install_timeout"`
	StopTimeout    string `toml:"stop_timeout"`
}

// loadFileConfig reads and parses a TOML config file from the given path.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// defaultConfigPath returns ~/.embedsql/config.toml if the user home
// directory is accessible.
func defaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".embedsql", "config.toml")
	}
	return ""
}

// applyFileConfig applies file values to the settings, skipping any field
// whose flag was explicitly set on the command line.
func applyFileConfig(s *settings, fc fileConfig, changed map[string]bool) error {
	setString := func(flag, v string, dst *string) {
		if v != "" && !changed[flag] {
			*dst = v
		}
	}
	setDuration := func(flag, v string, dst *time.Duration) error {
		if v == "" || changed[flag] {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config field %s: %w", flag, err)
		}
		*dst = d
		return nil
	}

	setString("base-dir", fc.BaseDir, &s.BaseDir)
	setString("data-dir", fc.DataDir, &s.DataDir)
	setString("dist-dir", fc.DistDir, &s.DistDir)
	setString("dist-version", fc.DistVersion, &s.DistVersion)
	setString("server-binary", fc.ServerBinary, &s.ServerBinary)
	setString("install-binary", fc.InstallBinary, &s.InstallBinary)
	setString("ready-line", fc.ReadyLine, &s.ReadyLine)

	if fc.Port != 0 && !changed["port"] {
		s.Port = fc.Port
	}

	if err := setDuration("start-timeout", fc.StartTimeout, &s.StartTimeout); err != nil {
		return err
	}
	if err := setDuration("install-timeout", fc.InstallTimeout, &s.InstallTimeout); err != nil {
		return err
	}
	return setDuration("stop-timeout", fc.StopTimeout, &s.StopTimeout)
}

// fileExists checks if a file exists at the given path.
func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
