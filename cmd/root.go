/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gotvd",
	Short: "Flux limited advective transport residuals and jacobians",
	Long: `
Computes FEM-TVD limited advective fluxes on a partitioned mesh, along with
their exact derivatives with respect to every solution variable,

gotvd run -I input.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		switch mode := viper.GetString("profile"); mode {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		default:
			err = fmt.Errorf("unknown profile mode %q, use cpu or mem", mode)
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gotvd.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the working directory")
	rootCmd.PersistentFlags().String("logLevel", "info", "log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("perfCounters", false, "count CPU instructions with hardware counters (linux)")
	for _, name := range []string{"profile", "logLevel", "perfCounters"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".gotvd" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gotvd")
	}

	viper.SetEnvPrefix("GOTVD")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "gotvd",
		Level: hclog.LevelFromString(viper.GetString("logLevel")),
	})
}
