package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys
const (
	CfgKeyTMDBAPIKey   = "tmdb.apikey"
	CfgKeyTMDBToken    = "tmdb.token"
	CfgKeyOMDBAPIKey   = "omdb.apikey"
	CfgKeyLanguage     = "language"
	CfgKeyProbeTool    = "probe.preferred"
	CfgKeyReleaseGroup = "release.group"
)

var (
	cfgFile string
	verbose bool

	// RootCmd represents the base command when called without any
	// subcommands. Exported for use in tests.
	RootCmd = &cobra.Command{
		Use:   "nfogen",
		Short: "Generate a release-style NFO report from a video file.",
		Long: `nfogen probes a video file with mediainfo or ffprobe, optionally
matches it against the TMDB catalog, and renders a fixed-column NFO
report following scene conventions.`,
	}
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nfogen/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initConfig reads in the config file and NFOGEN_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".nfogen"))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NFOGEN")
	viper.AutomaticEnv()

	viper.SetDefault(CfgKeyLanguage, "")
	viper.SetDefault(CfgKeyProbeTool, "mediainfo")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading config file (%s): %v\n", viper.ConfigFileUsed(), err)
		}
	}
}

// newLogger builds the shared logger for a command run.
func newLogger() *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{})
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.InfoLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
