package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPredictCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Request a prediction",
		Long: `Request an athlete or country prediction.

The request is read from a YAML or JSON file (JSON is valid YAML), or from
stdin when --file is "-". Without --file the built-in example request is sent.`,
	}

	cmd.AddCommand(newPredictTargetCommand(g, "athlete"))
	cmd.AddCommand(newPredictTargetCommand(g, "country"))

	return cmd
}

func newPredictTargetCommand(g *globals, target string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   target,
		Short: fmt.Sprintf("Predict for one %s", target),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(cmd.InOrStdin(), file, target)
			if err != nil {
				return err
			}

			c := g.client()
			var resp any
			if target == "athlete" {
				resp, err = c.PredictAthlete(cmd.Context(), req)
			} else {
				resp, err = c.PredictCountry(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Request file (YAML or JSON, - for stdin)")

	return cmd
}

func readRequest(stdin io.Reader, file, target string) (map[string]any, error) {
	if file == "" {
		return exampleRequest(target), nil
	}

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading request: %w", err)
	}

	var req map[string]any
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing request %s: %w", file, err)
	}
	if req == nil {
		return nil, fmt.Errorf("parsing request %s: empty document", file)
	}
	return req, nil
}
