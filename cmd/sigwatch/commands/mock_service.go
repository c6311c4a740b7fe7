package commands

import (
	"fmt"
	"log/slog"
	"time"

	"sigwatch/internal/mockservice"

	"github.com/spf13/cobra"
)

var mockPort *int

func init() {
	mockPort = mockServiceCmd.Flags().Int("port", 0, "The port to serve on, defaults to mock_service.port of the config.")
	rootCmd.AddCommand(mockServiceCmd)
}

var mockServiceCmd = &cobra.Command{
	Use:   "mock-service [--port <port>]",
	Short: "Serves a fake memory reading service for trying sigwatch without a game client.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loaded.config.MockService
		port := cfg.Port
		if *mockPort != 0 {
			port = *mockPort
		}

		service := mockservice.New(mockservice.Options{
			SetupSteps:  cfg.SetupSteps,
			SearchSteps: cfg.SearchSteps,
			ClosedEvery: cfg.ClosedEvery,
			Seed:        time.Now().UnixNano(),
		}, loaded.tel)

		slog.Info("serving mock memory reading service", "url", fmt.Sprintf("http://localhost:%d/api/", port))
		return service.Listen(cmd.Context(), port)
	},
}
