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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/beamlit/appinfo/internal/config"
	"github.com/beamlit/appinfo/internal/info"
	"github.com/beamlit/appinfo/internal/metrics"
	"github.com/beamlit/appinfo/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /get_info and /metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			setupLog.Error(err, "invalid configuration")
			return err
		}

		logger := log.Log.WithName("appinfo")
		registry, err := metrics.NewRegistry(metrics.WithLogger(logger.WithName("metrics")))
		if err != nil {
			setupLog.Error(err, "unable to create metrics registry")
			return err
		}

		srv := server.New(
			cfg.Server,
			info.NewHandler(cfg.App, registry.RequestCounter()),
			registry.Handler(),
			logger,
		)

		setupLog.Info("starting server", "version", cfg.App.Version, "title", cfg.App.Title, "addr", cfg.Server.ListenAddr)
		if err := srv.Run(signals.SetupSignalHandler()); err != nil {
			setupLog.Error(err, "HTTP server error")
			return err
		}
		return nil
	},
}

func registerFlags() {
	serveCmd.Flags().String(
		"listen-addr", config.DefaultListenAddr, "listen address is the address to listen on for HTTP requests",
	)
	serveCmd.Flags().Duration(
		"shutdown-timeout", config.DefaultShutdownTimeout, "shutdown timeout bounds the graceful shutdown of in-flight requests",
	)
	serveCmd.Flags().Duration(
		"read-header-timeout", config.DefaultReadHeaderTimeout, "read header timeout is the time allowed to read request headers",
	)
	mustBindPFlag(config.KeyListenAddr, "listen-addr")
	mustBindPFlag(config.KeyShutdownTimeout, "shutdown-timeout")
	mustBindPFlag(config.KeyReadHeaderTimeout, "read-header-timeout")
}

func mustBindPFlag(key, name string) {
	if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", name, err))
	}
}
