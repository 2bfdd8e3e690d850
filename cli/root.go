package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/logger"
)

const envPrefix = "MDCONVERT"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdconvert",
	Short: "Inspect and relocate embedded image metadata",
	Long: `mdconvert reads the EXIF, XMP and IPTC metadata embedded in JPEG, PNG, TIFF and GIF
files and shows how it would be laid out in another container format.

Settings can also come from MDCONVERT_* environment variables or an mdconvert.yaml
config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if config, err = newConfig(); err != nil {
			return err
		}
		log, err = logger.Get(config.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

var (
	config *CLIConfig
	log    = zap.NewNop()
)

// used to patch over calls to os.Exit() during test
var osExit = os.Exit

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		core.PrintError(err.Error())
		osExit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String(flagLogLevel, logger.LevelNone, "log level: none, info or debug")
	rootCmd.PersistentFlags().Bool(flagJSON, false, "print JSON instead of text")
	_ = viper.BindPFlag(flagLogLevel, rootCmd.PersistentFlags().Lookup(flagLogLevel))
	_ = viper.BindPFlag(flagJSON, rootCmd.PersistentFlags().Lookup(flagJSON))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault(flagLogLevel, logger.LevelNone)
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.mdconvert")
		viper.SetConfigName("mdconvert")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
