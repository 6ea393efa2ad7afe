package main

import (
	"context"
	"os"

	"github.com/Abraxas-365/fittsee/pkg/config"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/migrations"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "fittsee",
	Short:         "Fittsee virtual try-on backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.Name())

		var err error
		cfg, err = config.Load()
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logx.Info("🚀 Starting Fittsee API Server...")

		container := NewContainer(cfg)
		defer container.Cleanup()

		if autoMigrate, _ := cmd.Flags().GetBool("migrate"); autoMigrate {
			if err := applyMigrations(cmd.Context(), container); err != nil {
				return err
			}
		}
		return runServer(container)
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the render worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyWorkerFlags(cmd.Flags(), &cfg.Jobx)

		logx.Info("🚀 Starting Fittsee render worker...")

		container := NewContainer(cfg)
		defer container.Cleanup()

		return runWorker(cmd.Context(), container)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := migrations.Up(cmd.Context(), db)
		if err != nil {
			return err
		}
		logx.Infof("✅ %d migration(s) applied", n)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user and the demo catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		container := NewContainer(cfg)
		defer container.Cleanup()

		return runSeed(cmd.Context(), container)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "apply pending migrations before serving")

	workerCmd.Flags().Int("concurrency", 0, "consumers per queue (overrides JOBX_CONCURRENCY)")
	workerCmd.Flags().String("consumer", "", "consumer name (overrides JOBX_CONSUMER)")

	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logx.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// setupLogging configures the default logger from LOG_* and tags lines with the component
func setupLogging(component string) {
	logCfg := logx.LoadFromEnv()
	if logCfg.Component == "" {
		logCfg.Component = component
	}
	logx.SetDefaultLogger(logx.NewLogger(logCfg))
}

func applyWorkerFlags(flags *pflag.FlagSet, jobs *config.JobxConfig) {
	if n, err := flags.GetInt("concurrency"); err == nil && n > 0 {
		jobs.Concurrency = n
	}
	if name, err := flags.GetString("consumer"); err == nil && name != "" {
		jobs.ConsumerName = name
	}
}

func applyMigrations(ctx context.Context, container *Container) error {
	n, err := migrations.Up(ctx, container.DB)
	if err != nil {
		return err
	}
	logx.Infof("  ✅ %d migration(s) applied", n)
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
