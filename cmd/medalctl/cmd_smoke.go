package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/medalcast/internal/client"
)

func newSmokeCommand(g *globals) *cobra.Command {
	var cfg client.SmokeConfig
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Send the example requests concurrently and check the responses",
		Long: `Check server health, then send the example athlete and country requests
--rounds times each with at most --workers requests in flight. Each response
is checked against the documented output ranges.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := g.client().Smoke(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			report.Print(cmd.OutOrStdout())
			if report.Failed > 0 {
				return &smokeFailure{failed: report.Failed}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", 4, "Concurrent requests")
	cmd.Flags().IntVarP(&cfg.Rounds, "rounds", "n", 10, "Times each example request is sent")

	return cmd
}
