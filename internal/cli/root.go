package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zeusync/laneracer/internal/config"
)

const envPrefix = "LANERACER"

type rootOptions struct {
	cfgFile string
	viper   *viper.Viper
}

// NewRootCmd builds the laneracer command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{viper: viper.New()}
	cmd := &cobra.Command{
		Use:           "laneracer",
		Short:         "Headless lane racing simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initConfig(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"config file (default is ./laneracer.yaml when present)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newLevelsCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initConfig reads ENV variables into the flags of cmd.
func (o *rootOptions) initConfig(cmd *cobra.Command) error {
	o.viper.SetEnvPrefix(envPrefix)
	o.viper.AutomaticEnv()
	bindFlags(cmd, o.viper)
	return nil
}

const defaultConfigFile = "laneracer.yaml"

// source names the config file in use, or "defaults".
func (o *rootOptions) source() string {
	if o.cfgFile != "" {
		return o.cfgFile
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return "defaults"
}

// load returns the configuration from the config file, or the defaults.
func (o *rootOptions) load() (config.Config, error) {
	path := o.source()
	if path == "defaults" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// Bind each cobra flag to its associated viper configuration
// (environment variable).
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --tick-rate to LANERACER_TICK_RATE
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
			fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v\n", f.Name, err)
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}
