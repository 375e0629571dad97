package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/medalcast/internal/domain/artifact"
	"github.com/okian/medalcast/internal/domain/gbt"
	"github.com/okian/medalcast/internal/domain/prediction"
)

func newArtifactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Inspect model bundles",
	}

	cmd.AddCommand(newArtifactCheckCommand())

	return cmd
}

func newArtifactCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Load a bundle and print a summary",
		Long: `Load a model bundle the way the server does at startup, build the
predictor for its objective, and print a summary. Fails when the bundle is
malformed or its feature layout cannot be filled from a request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := artifact.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return checkBundle(cmd.OutOrStdout(), b)
		},
	}
}

func checkBundle(w io.Writer, b *artifact.Bundle) error {
	var (
		kind        string
		version     string
		unreachable []string
	)
	switch b.Model().Objective() {
	case gbt.BinaryLogistic:
		p, err := prediction.NewAthletePredictor(b)
		if err != nil {
			return err
		}
		kind, version, unreachable = prediction.ModelAthlete, p.Version(), p.Unreachable()
	default:
		p, err := prediction.NewCountryPredictor(b)
		if err != nil {
			return err
		}
		kind, version, unreachable = prediction.ModelCountry, p.Version(), p.Unreachable()
	}

	fmt.Fprintf(w, "source:       %s\n", b.Source())
	fmt.Fprintf(w, "model:        %s\n", kind)
	fmt.Fprintf(w, "version:      %s\n", version)
	fmt.Fprintf(w, "objective:    %s\n", b.Model().Objective())
	fmt.Fprintf(w, "trees:        %d\n", b.Model().NumTrees())
	fmt.Fprintf(w, "features:     %d\n", b.Model().NumFeatures())
	fmt.Fprintf(w, "numeric cols: %s\n", strings.Join(b.NumericCols(), ", "))
	if cats := b.Categories(); len(cats) > 0 {
		fmt.Fprintf(w, "categories:   %s\n", strings.Join(slices.Sorted(maps.Keys(cats)), ", "))
	}
	if len(unreachable) > 0 {
		fmt.Fprintf(w, "unreachable:  %s\n", strings.Join(unreachable, ", "))
	}
	return nil
}
