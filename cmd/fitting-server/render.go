package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Theme holds the terminal colors.
type Theme struct {
	Title   lipgloss.Color
	Good    lipgloss.Color
	Bad     lipgloss.Color
	Upgrade lipgloss.Color
	Hint    lipgloss.Color
}

var theme = Theme{
	Title:   lipgloss.Color("#5FAFD7"),
	Good:    lipgloss.Color("#00D787"),
	Bad:     lipgloss.Color("#FF005F"),
	Upgrade: lipgloss.Color("#D7AF00"),
	Hint:    lipgloss.Color("#6C6C6C"),
}

func (t Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) good() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Good).Bold(true)
}

func (t Theme) bad() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Bad).Bold(true)
}

func (t Theme) upgrade() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Upgrade)
}

func (t Theme) hint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) plain() lipgloss.Style {
	return lipgloss.NewStyle()
}

var section = lipgloss.NewStyle().Bold(true).MarginTop(1)

func printCounts(heading string, items []fitting.ItemCount, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	fmt.Println(section.Render(heading))
	for _, it := range items {
		fmt.Println(style.Render(fmt.Sprintf("  %dx %s", it.Count, it.Name)))
	}
}

func printSubstitutions(heading string, subs []fitting.Substitution, style lipgloss.Style) {
	if len(subs) == 0 {
		return
	}
	fmt.Println(section.Render(heading))
	for _, s := range subs {
		fmt.Println(style.Render(fmt.Sprintf("  %dx %s -> %s", s.Count, s.From.Name, s.To.Name)))
	}
}

func printDiff(d *fitting.NamedDiff) {
	if d == nil {
		return
	}
	printCounts("Missing modules", d.ModuleMissing, theme.bad())
	printCounts("Extra modules", d.ModuleExtra, theme.bad())
	printSubstitutions("Downgraded", d.ModuleDowngraded, theme.bad())
	printSubstitutions("Upgraded", d.ModuleUpgraded, theme.upgrade())
	printCounts("Missing cargo", d.CargoMissing, theme.bad())
}
