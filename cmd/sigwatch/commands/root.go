package commands

import (
	"context"
	"fmt"
	"time"

	"sigwatch/internal/components/chrono"
	"sigwatch/internal/components/random"
	"sigwatch/internal/components/serviceutil"
	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/config"
	"sigwatch/internal/plugins"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

// loaded holds what the persistent pre run set up for the subcommand.
var loaded struct {
	config    config.Config
	tel       telemetry.API
	providers telemetry.Providers
	stopPerf  context.CancelFunc
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The configuration file to read, a missing file means defaults.")
	verbose = rootCmd.PersistentFlags().Bool("verbose", false, "Log debug output.")
}

var rootCmd = &cobra.Command{
	Use:           "sigwatch",
	Short:         "sigwatch watches the Agency window of a running game client for signature changes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		loaded.config = cfg
		loaded.tel = telemetry.SlogAPI{}

		loaded.providers, err = telemetry.Setup(cmd.Context(), "sigwatch", cfg.Telemetry.Config)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		if loaded.providers.MeterProvider != nil {
			ctx, cancel := context.WithCancel(cmd.Context())
			loaded.stopPerf = cancel
			telemetry.InstrumentPerfStats(ctx, loaded.tel, cfg.Telemetry.PerfStatsInterval())
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if loaded.stopPerf != nil {
			loaded.stopPerf()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return loaded.providers.Shutdown(ctx)
	},
}

func pluginDeps(cmd *cobra.Command) plugins.Deps {
	return plugins.Deps{
		Config: loaded.config,
		Tel:    loaded.tel,
		Time:   chrono.NewStandardImpl(),
		Random: random.StandardImpl{},
		Out:    cmd.OutOrStdout(),
	}
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("sigwatch", err)
	}
}
