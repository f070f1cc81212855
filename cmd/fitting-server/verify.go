package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Load every game rule document and check the doctrine fits",
	Long:  "Builds the engine from the data directory, reporting every configuration problem, then checks that each doctrine fit is valid and matches itself.",
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) error {
	logger, closeLog := setupLogging()
	defer func() { _ = closeLog() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	env, err := startEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	mismatches, err := env.engine.VerifyDoctrine(ctx)
	if err != nil {
		return err
	}
	for _, m := range mismatches {
		matched := m.Matched
		if matched == "" {
			matched = "nothing"
		}
		fmt.Println(theme.bad().Render("MISMATCH"), fmt.Sprintf("%q matches %q (score %d)", m.Fit, matched, m.Score))
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%d doctrine fit(s) do not match themselves", len(mismatches))
	}

	fmt.Println(theme.good().Render("OK"), fmt.Sprintf("%d doctrine fits", env.engine.Doctrine().Len()))
	return nil
}
