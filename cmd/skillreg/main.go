package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/jingkaihe/skillreg/pkg/presenter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var tracingShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:   "skillreg",
	Short: "Load, validate and serve a directory of skill documents",
	Long: `skillreg loads a directory of skill documents (markdown files with an optional
"---" delimited header of key: value pairs) into a registry, validates that every
skill has a unique name and a well formed header, and serves the result to people,
HTTP clients and MCP-capable agents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if err := config.InitViper(viper.GetViper(), configFile); err != nil {
			return err
		}
		if err := logger.Configure(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}

		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			logger.G(cmd.Context()).WithError(err).Warn("failed to initialize tracing")
			return nil
		}
		tracingShutdown = shutdown
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.skillreg/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().StringP("dir", "d", "./skills", "Directory to load skills from")
	rootCmd.PersistentFlags().StringSlice("allow", nil, "Only load skills whose names match these glob patterns")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "Skip entries whose relative path matches these patterns")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("skills.dir", rootCmd.PersistentFlags().Lookup("dir"))
	viper.BindPFlag("skills.allowed", rootCmd.PersistentFlags().Lookup("allow"))
	viper.BindPFlag("skills.exclude", rootCmd.PersistentFlags().Lookup("exclude"))

	rootCmd.AddCommand(withTracing(listCmd))
	rootCmd.AddCommand(withTracing(getCmd))
	rootCmd.AddCommand(withTracing(validateCmd))
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the merged flag, environment and file configuration
func loadConfig() (config.Config, error) {
	return config.GetConfigFromViper(viper.GetViper())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	shutdownTracing(ctx)
	if err != nil {
		presenter.Error(err, "")
		cancel()
		os.Exit(1)
	}
}
