package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names inside the data directory.
const (
	ModulesFile    = "modules.yaml"
	SkillsFile     = "skills.yaml"
	PlansFile      = "skillplan.yaml"
	CategoriesFile = "categories.yaml"
	FitsFile       = "fits.dat"
)

// Data is every static document the engine is built from.
type Data struct {
	Modules    *Modules
	Skills     *Skills
	Plans      *Plans
	Categories *Categories
	// Fits is the raw doctrine fit listing.
	Fits string
}

// LoadData reads and validates all documents in dir. Every unreadable or
// invalid document is reported in the returned error.
func LoadData(dir string) (*Data, error) {
	var (
		problems Problems
		data     Data
		err      error
	)

	if raw, ok := readFile(&problems, dir, ModulesFile); ok {
		data.Modules, err = ParseModules(raw)
		problems.Add(err)
	}
	if raw, ok := readFile(&problems, dir, SkillsFile); ok {
		data.Skills, err = ParseSkills(raw)
		problems.Add(err)
	}
	if raw, ok := readFile(&problems, dir, PlansFile); ok {
		data.Plans, err = ParsePlans(raw)
		problems.Add(err)
	}
	if raw, ok := readFile(&problems, dir, CategoriesFile); ok {
		data.Categories, err = ParseCategories(raw)
		problems.Add(err)
	}
	if raw, ok := readFile(&problems, dir, FitsFile); ok {
		data.Fits = string(raw)
	}

	if err := problems.Err(); err != nil {
		return nil, err
	}
	return &data, nil
}

func readFile(problems *Problems, dir, name string) ([]byte, bool) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		problems.Add(fmt.Errorf("reading %s: %w", name, err))
		return nil, false
	}
	return raw, true
}
