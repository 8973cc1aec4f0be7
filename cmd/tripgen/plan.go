package main

import (
	"time"

	"github.com/spf13/cobra"

	"tripgen/internal/ai"
	"tripgen/internal/config"
	"tripgen/internal/logging"
	"tripgen/internal/service"
)

func newPlanCmd() *cobra.Command {
	var (
		req     requestFlags
		output  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an itinerary",
		Example: "  tripgen plan -d Tokyo --start 2025-06-01 --end 2025-06-03 --interests food,history\n" +
			"  tripgen plan -f trip.yaml -o yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			tripReq, err := req.request(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level, _ := cmd.Flags().GetString("log-level")
			logger := logging.New(level, cfg.Log.Format)

			ctx := cmd.Context()
			gateway, closeGateway, err := ai.Open(ctx, cfg.Gemini.Transport, ai.GeminiOptions{
				APIKey:  cfg.Gemini.APIKey,
				BaseURL: cfg.Gemini.BaseURL,
				Model:   cfg.Gemini.Model,
				Timeout: timeout,
			})
			if err != nil {
				return err
			}
			defer closeGateway()

			planner := service.NewTripPlanner(gateway, logger)
			it, err := planner.Generate(ctx, tripReq)
			if err != nil {
				return err
			}
			return writeItinerary(cmd.OutOrStdout(), output, tripReq, it)
		},
	}
	req.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", formatMarkdown, "output format: json, yaml or markdown")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "model call timeout")
	return cmd
}
