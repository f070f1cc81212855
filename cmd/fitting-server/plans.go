package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var plansName string

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Print the configured skill plans",
	RunE:  runPlans,
}

func init() {
	plansCmd.Flags().StringVar(&plansName, "name", "", "Only print the named plan")

	rootCmd.AddCommand(plansCmd)
}

var romanLevels = []string{"0", "I", "II", "III", "IV", "V"}

func runPlans(_ *cobra.Command, _ []string) error {
	logger, closeLog := setupLogging()
	defer func() { _ = closeLog() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	env, err := startEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.engine.SkillPlans(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, plan := range resp.Plans {
		if plansName != "" && plan.Name != plansName {
			continue
		}
		found = true

		fmt.Println(theme.title().Render(plan.Name), theme.hint().Render(humanize.Comma(plan.TotalSP)+" SP"))
		if plan.Description != "" {
			fmt.Println(theme.hint().Render(plan.Description))
		}
		if len(plan.Ships) > 0 {
			ships := make([]string, 0, len(plan.Ships))
			for _, s := range plan.Ships {
				ships = append(ships, s.Name)
			}
			fmt.Println("Ships:", strings.Join(ships, ", "))
		}
		for i, l := range plan.Levels {
			fmt.Printf("%4s  %s %s\n", humanize.Ordinal(i+1), l.Skill.Name, romanLevels[l.Level])
		}
		fmt.Println()
	}
	if plansName != "" && !found {
		return fmt.Errorf("no skill plan named %q", plansName)
	}
	return nil
}
