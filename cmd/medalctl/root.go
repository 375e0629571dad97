package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/medalcast/internal/client"
)

var version = "dev"

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	url     string
	timeout time.Duration
}

func (g *globals) client() *client.Client {
	return client.New(g.url, client.WithTimeout(g.timeout))
}

func newRootCommand() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:   "medalctl",
		Short: "medalctl - client for the Olympic medal prediction service",
		Long: `medalctl sends prediction requests to a running medal prediction server,
runs smoke checks against it, and validates model bundles offline.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.url, "url", "http://localhost:8080", "Base URL of the prediction server")
	cmd.PersistentFlags().DurationVar(&g.timeout, "timeout", client.DefaultTimeout, "Per-request timeout")

	cmd.AddCommand(newPredictCommand(g))
	cmd.AddCommand(newSmokeCommand(g))
	cmd.AddCommand(newArtifactCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
