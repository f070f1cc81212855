package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

var (
	diffExpected string
	diffDoctrine string
)

var diffCmd = &cobra.Command{
	Use:   "diff ACTUAL",
	Short: "Compare a DNA fit with an expected fit or a doctrine fit",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffExpected, "expected", "", "Expected fit as DNA")
	diffCmd.Flags().StringVar(&diffDoctrine, "doctrine", "", "Name of the doctrine fit to compare against")
	diffCmd.MarkFlagsOneRequired("expected", "doctrine")
	diffCmd.MarkFlagsMutuallyExclusive("expected", "doctrine")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(_ *cobra.Command, args []string) error {
	logger, closeLog := setupLogging()
	defer func() { _ = closeLog() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	env, err := startEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.engine.CompareFit(ctx, fitting.CompareFitRequest{
		Expected: diffExpected,
		Doctrine: diffDoctrine,
		Actual:   args[0],
	})
	if err != nil {
		return err
	}

	if resp.Clean {
		fmt.Println(theme.good().Render("Fit matches"))
	} else {
		fmt.Println(theme.bad().Render("Fit differs"))
	}
	printDiff(&resp.Diff)
	return nil
}
