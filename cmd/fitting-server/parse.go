package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

var (
	parseFormat string
	parseFile   string
	parseJSON   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [FIT]",
	Short: "Decode and validate a fit",
	Long:  "Decodes a DNA or EFT fit given as an argument, a file or on stdin, and prints it with its canonical DNA.",
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", fitting.FormatDNA, "Fit format: dna or eft")
	parseCmd.Flags().StringVar(&parseFile, "file", "", "Read the fit from a file")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print JSON")

	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	text, err := readInput(args, parseFile)
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

	resp, err := env.engine.ParseFit(ctx, fitting.ParseFitRequest{Format: parseFormat, Text: text})
	if err != nil {
		return err
	}

	if parseJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, fit := range resp.Fits {
		fmt.Println(theme.title().Render(fit.Hull.Name))
		fmt.Println(theme.hint().Render(fit.DNA))
		printCounts("Modules", fit.Modules, theme.plain())
		printCounts("Cargo", fit.Cargo, theme.plain())
		fmt.Println()
	}
	return nil
}
