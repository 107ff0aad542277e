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
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables derived from config keys,
// e.g. APPINFO_SERVER_LISTENADDR.
const EnvPrefix = "APPINFO"

const (
	KeyVersion           = "app.version"
	KeyTitle             = "app.title"
	KeyHostname          = "app.hostname"
	KeyListenAddr        = "server.listenAddr"
	KeyShutdownTimeout   = "server.shutdownTimeout"
	KeyReadHeaderTimeout = "server.readHeaderTimeout"
)

// envBindings maps config keys to the unprefixed variables the service has
// always honoured.
var envBindings = map[string]string{
	KeyVersion:  "APP_VERSION",
	KeyTitle:    "APP_TITLE",
	KeyHostname: "HOSTNAME",
}

// BindEnv registers the environment lookups on v.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s to %s: %w", key, env, err)
		}
	}
	return nil
}

// Load overlays environment variables and flags known to v on top of base,
// then validates the result. Values in base act as viper defaults so that
// file and built-in values keep the lowest precedence.
func Load(v *viper.Viper, base Config) (Config, error) {
	v.SetDefault(KeyVersion, base.App.Version)
	v.SetDefault(KeyTitle, base.App.Title)
	v.SetDefault(KeyHostname, base.App.Hostname)
	v.SetDefault(KeyListenAddr, base.Server.ListenAddr)
	v.SetDefault(KeyShutdownTimeout, base.Server.ShutdownTimeout)
	v.SetDefault(KeyReadHeaderTimeout, base.Server.ReadHeaderTimeout)

	cfg := base
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.App = cfg.App.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
