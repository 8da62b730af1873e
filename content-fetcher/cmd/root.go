// Package cmd implements the content-fetcher command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oe/sunrain-sub002/content-fetcher/internal/config"
)

// Version is set at build time.
var Version = "dev"

var (
	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "content-fetcher",
		Short: "Fetch books, movies, music and quotes for the Sunrain resource library",
		Long: `content-fetcher queries TMDB, Spotify, Google Books and a quotes API,
deduplicates the results and writes one JSON file per content type.
Providers without credentials fall back to a fixed dataset.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command until SIGINT or SIGTERM.
func Execute() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.OnInitialize(func() {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./config.yml if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flags.String("output", "", "output directory for content files")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(
		newFetchCommand(),
		newQuotesCommand(),
		newScheduleCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "content-fetcher version %s\n", Version)
			},
		},
	)
}

// initConfig reads the config file and environment into the global viper.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./content-fetcher")
	}

	config.SetDefaults(viper.GetViper())
	if err := config.BindEnv(viper.GetViper()); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	flags := rootCmd.PersistentFlags()
	if err := viper.BindPFlag("output_dir", flags.Lookup("output")); err != nil {
		return fmt.Errorf("bind output flag: %w", err)
	}
	if err := viper.BindPFlag("metrics_addr", flags.Lookup("metrics-addr")); err != nil {
		return fmt.Errorf("bind metrics-addr flag: %w", err)
	}
	if verbose {
		viper.Set("logging.level", "debug")
	}
	return nil
}

