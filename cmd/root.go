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
	"flag"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/beamlit/appinfo/internal/config"
)

const defaultConfigName = "appinfo.yaml"

var (
	cfgFile string

	zapOpts = zap.Options{
		Development: true,
	}

	rootCmd = &cobra.Command{
		Use:          "appinfo",
		Short:        "Serve application metadata and a request counter for Prometheus",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))
		},
	}

	setupLog = log.Log.WithName("setup")
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $PWD/"+defaultConfigName+")")

	zapFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	zapOpts.BindFlags(zapFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(zapFlags)

	registerFlags()

	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	cobra.CheckErr(config.BindEnv(viper.GetViper()))
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig() (config.Config, error) {
	cfg := config.New()

	path := cfgFile
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return config.Config{}, err
		}
		candidate := filepath.Join(cwd, defaultConfigName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return config.Config{}, err
		}
		setupLog.Info("Using config file", "path", path)
	}

	return config.Load(viper.GetViper(), cfg)
}
