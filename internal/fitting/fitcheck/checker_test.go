package fitcheck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/codec"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/fitcheck"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/fittest"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/matcher"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/skillplan"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/variations"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

type trained = map[fitting.ItemID]fitting.SkillLevel

const (
	starterNightmare = "17736:3057;4:12076;1:11269;1:12816;100::"
	hqNightmare      = "17736:3057;4:19359;1:12058;1:18952;1:12816;123::"
	eliteNightmare   = "17736:3057;4:19359;1:12058;1:18952;1:1952;1:12816;123::"
	nestor           = "33472:11301;2:4383;1::"
)

func newChecker(t *testing.T) (*fitcheck.Checker, *codec.Codec) {
	t.Helper()
	ctx := context.Background()
	cat := fittest.Catalog(t)
	data := fittest.Data(t)
	c := codec.New(cat)

	graph, err := variations.Build(ctx, cat, data.Modules)
	require.NoError(t, err)
	doctrine, err := matcher.LoadDoctrine(ctx, c, data.Fits)
	require.NoError(t, err)
	skills, err := skillplan.LoadSkillData(ctx, cat, data.Skills)
	require.NoError(t, err)
	categories, err := fitcheck.NewCategorizer(ctx, cat, data.Categories)
	require.NoError(t, err)

	checker, err := fitcheck.NewChecker(ctx, cat, matcher.New(doctrine, graph), skills, categories)
	require.NoError(t, err)
	return checker, c
}

// withComps adds all four armor compensations at level to skills.
func withComps(skills trained, level fitting.SkillLevel) trained {
	out := make(trained, len(skills)+4)
	for k, v := range skills {
		out[k] = v
	}
	for _, id := range []fitting.ItemID{
		fittest.EMArmorComp, fittest.ExplosiveArmorComp, fittest.KineticArmorComp, fittest.ThermalArmorComp,
	} {
		out[id] = level
	}
	return out
}

var hqSkills = trained{
	fittest.AmarrBattleship:      5,
	fittest.LargeEnergyTurret:    5,
	fittest.HullUpgrades:         5,
	fittest.HighSpeedManeuvering: 1,
	fittest.AfterburnerSkill:     4,
	fittest.CapacitorManagement:  1,
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	checker, c := newChecker(t)

	eliteSkills := withComps(hqSkills, 4)
	eliteSkills[fittest.HullUpgrades] = 4

	tests := []struct {
		name     string
		dna      string
		skills   trained
		approved bool
		category string
		tags     []string
		errors   []string
		doctrine string
	}{
		{
			name:     "gold pilot in hq fit",
			dna:      hqNightmare,
			skills:   withComps(hqSkills, 4),
			approved: true,
			category: "dps",
			tags:     []string{fitcheck.TagGoldSkills},
			doctrine: "HQ NIGHTMARE",
		},
		{
			name:     "elite pilot in elite fit",
			dna:      eliteNightmare,
			skills:   eliteSkills,
			approved: true,
			category: "dps",
			tags:     []string{fitcheck.TagEliteFit, fitcheck.TagEliteSkills},
			doctrine: "HQ NIGHTMARE ELITE",
		},
		{
			name: "starter pilot in starter fit",
			dna:  starterNightmare,
			skills: withComps(trained{
				fittest.AmarrBattleship:      1,
				fittest.LargeEnergyTurret:    4,
				fittest.HighSpeedManeuvering: 1,
				fittest.HullUpgrades:         2,
			}, 2),
			approved: true,
			category: fitcheck.CategoryStarter,
			tags:     []string{fitcheck.TagStarterSkills},
			doctrine: "STARTER NIGHTMARE",
		},
		{
			name:     "untrained logi is refused",
			dna:      nestor,
			skills:   trained{},
			approved: false,
			category: "logi",
			tags:     []string{fitcheck.TagStarterSkills},
			errors: []string{
				"Missing skills to online/use 'Large Micro Jump Drive'",
				"Missing skills to online/use 'Multispectrum Energized Membrane II'",
				"Missing skills to online/use 'Nestor'",
				"Missing Armor Compensation skills: level 4 required",
			},
			doctrine: "NESTOR",
		},
		{
			name:     "hq fit missing a module",
			dna:      "17736:3057;4:12058;1:18952;1:12816;123::",
			skills:   withComps(hqSkills, 4),
			approved: false,
			category: "dps",
			tags:     []string{fitcheck.TagGoldSkills},
			doctrine: "HQ NIGHTMARE",
		},
		{
			name:     "hq fit with low compensations",
			dna:      hqNightmare,
			skills:   withComps(hqSkills, 3),
			approved: true,
			category: "dps",
			tags:     []string{fitcheck.TagGoldSkills},
			errors:   []string{"Missing Armor Compensation skills: level 4 required"},
			doctrine: "HQ NIGHTMARE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, err := c.ParseDNA(ctx, tt.dna)
			require.NoError(t, err)

			res, err := checker.Check(ctx, fit, tt.skills)
			require.NoError(t, err)
			assert.Equal(t, tt.approved, res.Approved)
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.tags, res.Tags)
			assert.ElementsMatch(t, tt.errors, res.Errors)
			require.NotNil(t, res.Match)
			assert.Equal(t, tt.doctrine, res.Match.Fit.Name)
		})
	}
}

func TestCheckBastionWithoutDoctrine(t *testing.T) {
	ctx := context.Background()
	checker, c := newChecker(t)

	fit, err := c.ParseDNA(ctx, "28661:33400;1::")
	require.NoError(t, err)

	res, err := checker.Check(ctx, fit, trained{})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Nil(t, res.Match)
	assert.Equal(t, fitcheck.CategoryStarter, res.Category)
	assert.Equal(t, []string{fitcheck.TagStarterSkills}, res.Tags)
	assert.ElementsMatch(t, []string{
		"Missing skills to online/use 'Kronos'",
		"Missing skills to online/use 'Bastion Module I'",
		"Missing Armor Compensation skills: level 4 required",
		"Missing tank skill: Hull Upgrades 5 required",
		"Missing tank skill: Mechanics 4 required",
	}, res.Errors)

	trainedBastion := withComps(trained{
		fittest.Marauders:    1,
		fittest.HullUpgrades: 5,
		fittest.Mechanics:    4,
	}, 4)
	res, err = checker.Check(ctx, fit, trainedBastion)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
}

func TestCategorizer(t *testing.T) {
	ctx := context.Background()
	cat := fittest.Catalog(t)

	categories, err := fitcheck.NewCategorizer(ctx, cat, fittest.Data(t).Categories)
	require.NoError(t, err)
	assert.Len(t, categories.Categories(), 3)

	got, ok := categories.Categorize(fitting.NewLoadout(fittest.Nestor))
	assert.True(t, ok)
	assert.Equal(t, "logi", got)

	_, ok = categories.Categorize(fitting.NewLoadout(fittest.Megathron))
	assert.False(t, ok)

	t.Run("module rules", func(t *testing.T) {
		byModule, err := fitcheck.NewCategorizer(ctx, cat, &config.Categories{
			Categories: []config.WaitlistCategory{{ID: "sniper", Name: "Sniper"}},
			Rules:      []config.CategoryRule{{Item: "Mega Pulse Laser II", Category: "sniper"}},
		})
		require.NoError(t, err)
		got, ok := byModule.Categorize(fittest.Loadout(fittest.Megathron, map[fitting.ItemID]int64{fittest.MegaPulseLaserII: 1}, nil))
		assert.True(t, ok)
		assert.Equal(t, "sniper", got)

		_, ok = byModule.Categorize(fittest.Loadout(fittest.Megathron, nil, map[fitting.ItemID]int64{fittest.MegaPulseLaserII: 1}))
		assert.False(t, ok)
	})

	t.Run("unknown items", func(t *testing.T) {
		_, err := fitcheck.NewCategorizer(ctx, cat, &config.Categories{
			Rules: []config.CategoryRule{{Item: "Nightmere", Category: "dps"}},
		})
		assert.ErrorIs(t, err, fitting.ErrConfiguration)
		assert.ErrorIs(t, err, fitting.ErrUnknownItem)
	})
}

func TestNewCheckerNeedsRuleItems(t *testing.T) {
	_, err := fitcheck.NewChecker(context.Background(), catalog.NewMemory(fittest.Records(t)[:1]), nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fitting.ErrConfiguration)
	assert.False(t, fitting.IsRejectedInput(err))
}
