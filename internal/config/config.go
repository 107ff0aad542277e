/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultVersion           = "1.0"
	DefaultTitle             = "Devops for Cloud Assignment"
	DefaultHostname          = "unknown-pod"
	DefaultListenAddr        = "0.0.0.0:8000"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
)

var (
	ErrInvalidListenAddr      = errors.New("invalid listen address")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidHeaderTimeout   = errors.New("read header timeout must not be negative")
)

// Config is the configuration for the appinfo service.
type Config struct {
	// App holds the metadata reported by /get_info.
	App AppConfig `json:"app,omitempty" yaml:"app,omitempty" mapstructure:"app"`
	// Server holds the HTTP listener settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty" mapstructure:"server"`
}

// AppConfig is the application metadata. It is read once at startup and never
// mutated afterwards.
type AppConfig struct {
	// Version is reported as APP_VERSION.
	Version string `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	// Title is reported as APP_TITLE.
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	// Hostname identifies the serving instance in logs only.
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty" mapstructure:"hostname"`
}

type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listenAddr,omitempty" mapstructure:"listenAddr"`
	// ShutdownTimeout bounds the graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" yaml:"shutdownTimeout,omitempty" mapstructure:"shutdownTimeout"`
	// ReadHeaderTimeout is passed to http.Server. Zero disables it.
	ReadHeaderTimeout time.Duration `json:"read_header_timeout,omitempty" yaml:"readHeaderTimeout,omitempty" mapstructure:"readHeaderTimeout"`
}

// New returns a Config populated with defaults.
func New() Config {
	var c Config
	c.Default()
	return c
}

func (c *Config) Default() {
	c.App.Version = DefaultVersion
	c.App.Title = DefaultTitle
	c.App.Hostname = DefaultHostname
	c.Server.ListenAddr = DefaultListenAddr
	c.Server.ShutdownTimeout = DefaultShutdownTimeout
	c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
}

func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.ListenAddr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidListenAddr, c.Server.ListenAddr, err)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}
	if c.Server.ReadHeaderTimeout < 0 {
		return ErrInvalidHeaderTimeout
	}
	return nil
}

// FromFile decodes YAML or JSON, chosen by the file extension, on top of the
// current values.
func (c *Config) FromFile(name string, reader io.Reader) error {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return yaml.NewDecoder(reader).Decode(c)
	}
	return json.NewDecoder(reader).Decode(c)
}

// ReadFile opens name and decodes it with FromFile.
func (c *Config) ReadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()
	if err := c.FromFile(name, f); err != nil {
		return fmt.Errorf("decoding config file %s: %w", name, err)
	}
	return nil
}

// WithDefaults returns a copy where every empty app field is replaced by its
// documented default.
func (a AppConfig) WithDefaults() AppConfig {
	if a.Version == "" {
		a.Version = DefaultVersion
	}
	if a.Title == "" {
		a.Title = DefaultTitle
	}
	if a.Hostname == "" {
		a.Hostname = DefaultHostname
	}
	return a
}
