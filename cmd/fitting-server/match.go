package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

var (
	matchFormat string
	matchFile   string
)

var matchCmd = &cobra.Command{
	Use:   "match [FIT]",
	Short: "Find the doctrine fit closest to a fit",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchFormat, "format", "f", fitting.FormatDNA, "Fit format: dna or eft")
	matchCmd.Flags().StringVar(&matchFile, "file", "", "Read the fit from a file")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(_ *cobra.Command, args []string) error {
	text, err := readInput(args, matchFile)
	if err != nil {
		return err
	}

	logger, closeLog := setupLogging()
	defer func() { _ = closeLog() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	env, err := startEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.engine.MatchFit(ctx, fitting.MatchFitRequest{Format: matchFormat, Fit: text})
	if err != nil {
		return err
	}
	if !resp.Matched {
		fmt.Println(theme.bad().Render("No doctrine fit for this hull"))
		return nil
	}

	status := theme.good().Render("clean")
	if !resp.Clean {
		status = theme.bad().Render("differs")
	}
	fmt.Printf("%s  %s  %s\n", theme.title().Render(resp.Doctrine), status, theme.hint().Render(fmt.Sprintf("score %d", resp.Score)))
	printDiff(resp.Diff)
	return nil
}
