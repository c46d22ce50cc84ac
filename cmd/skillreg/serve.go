package main

import (
	"context"

	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/jingkaihe/skillreg/pkg/presenter"
	"github.com/jingkaihe/skillreg/pkg/server"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Watch bool
}

// NewServeConfig creates a new ServeConfig with default values
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Watch: false,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skills directory over an HTTP JSON API",
	Long: `Load the skills directory and serve it over HTTP:

  GET  /api/skills          list skills
  GET  /api/skills/{name}   get a skill (?format=html|markdown)
  POST /api/reload          reload the skills directory
  GET  /api/status          registry status
  GET  /api/schema          JSON Schema of the skill header

The server is available at http://localhost:8080 by default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		serveConfig := getServeConfigFromFlags(cmd)
		return errors.Wrap(runServeCommand(cmd.Context(), cfg, serveConfig), "server failed")
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", "localhost", "Host to bind the server to")
	serveCmd.Flags().Int("port", 8080, "Port to bind the server to")
	serveCmd.Flags().Bool("watch", defaults.Watch, "Reload skills automatically when the directory changes")

	viper.BindPFlag("serve.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("serve.port", serveCmd.Flags().Lookup("port"))
}

// getServeConfigFromFlags extracts serve configuration from command flags
func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		config.Watch = watch
	}

	return config
}

// runServeCommand serves the registry until ctx is cancelled
func runServeCommand(ctx context.Context, cfg config.Config, serveConfig *ServeConfig) error {
	if cfg.Serve.Port < 1024 {
		logger.G(ctx).WithField("port", cfg.Serve.Port).Warn("using privileged port (< 1024) may require elevated permissions")
	}

	registry, err := skills.Initialize(ctx, cfg.Skills)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(registry, cfg.Serve)
	if err != nil {
		return err
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"host":  cfg.Serve.Host,
		"port":  cfg.Serve.Port,
		"watch": serveConfig.Watch,
	}).Info("Starting skills server")

	g, ctx := errgroup.WithContext(ctx)

	if serveConfig.Watch {
		watcher := skills.NewWatcher(registry, cfg.Skills.Dir,
			skills.WithDebounce(watchDebounce(cfg)),
			skills.OnReload(func(ctx context.Context, changes skills.Changes, _, after *skills.Snapshot) {
				logger.G(ctx).WithFields(map[string]interface{}{
					"changes":    changes.String(),
					"generation": after.ID(),
				}).Info("Skills reloaded")
			}),
		)
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	g.Go(func() error {
		return srv.Start(ctx)
	})

	presenter.Info("Press Ctrl+C to stop the server")

	if err := g.Wait(); err != nil {
		return err
	}

	presenter.Info("Server stopped")
	return nil
}
