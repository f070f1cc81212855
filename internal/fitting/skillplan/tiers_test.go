package skillplan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/fittest"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/skillplan"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

type trained = map[fitting.ItemID]fitting.SkillLevel

func loadSkills(t *testing.T) *skillplan.SkillData {
	t.Helper()
	data, err := skillplan.LoadSkillData(context.Background(), fittest.Catalog(t), fittest.Data(t).Skills)
	require.NoError(t, err)
	return data
}

func TestParseTier(t *testing.T) {
	for _, s := range []string{"min", "elite", "gold"} {
		tier, err := skillplan.ParseTier(s)
		require.NoError(t, err)
		assert.Equal(t, skillplan.Tier(s), tier)
	}

	for _, s := range []string{"", "Gold", "platinum"} {
		_, err := skillplan.ParseTier(s)
		assert.ErrorIs(t, err, fitting.ErrInvalidTier, s)
		assert.ErrorIs(t, err, fitting.ErrMalformedInput, s)
	}
}

func TestLoadSkillData(t *testing.T) {
	data := loadSkills(t)

	assert.Equal(t, 3, data.Len())
	assert.Equal(t, "Megathron", data.Default().Name)

	h, ok := data.Hull("Nightmare")
	require.True(t, ok)
	assert.Equal(t, fittest.Nightmare, h.ID)

	byID, ok := data.HullByID(fittest.Nightmare)
	require.True(t, ok)
	assert.Same(t, h, byID)

	_, ok = data.Hull("Kronos")
	assert.False(t, ok)

	t.Run("tier defaults", func(t *testing.T) {
		tests := []struct {
			skill fitting.ItemID
			tier  skillplan.Tier
			want  fitting.SkillLevel
		}{
			{fittest.AmarrBattleship, skillplan.TierMin, 4},
			{fittest.AmarrBattleship, skillplan.TierElite, 5},
			{fittest.AmarrBattleship, skillplan.TierGold, 5},
			{fittest.HullUpgrades, skillplan.TierMin, 4},
			{fittest.HullUpgrades, skillplan.TierElite, 4},
			{fittest.HullUpgrades, skillplan.TierGold, 5},
		}
		for _, tt := range tests {
			got, ok := h.Level(tt.skill, tt.tier)
			require.True(t, ok)
			assert.Equal(t, tt.want, got, "skill %d tier %s", tt.skill, tt.tier)
		}

		_, ok := h.Level(fittest.Mechanics, skillplan.TierMin)
		assert.False(t, ok)
	})

	t.Run("requirements", func(t *testing.T) {
		assert.Equal(t, []fitting.LevelPair{
			{Skill: fittest.LargeEnergyTurret, Level: 4},
			{Skill: fittest.AmarrBattleship, Level: 4},
			{Skill: fittest.HullUpgrades, Level: 4},
		}, h.Requirements(skillplan.TierMin))
		assert.Equal(t, []fitting.ItemID{
			fittest.LargeEnergyTurret, fittest.AmarrBattleship, fittest.HullUpgrades,
		}, h.Skills())
	})

	t.Run("priority", func(t *testing.T) {
		assert.Equal(t, 3.0, h.Priority(fittest.LargeEnergyTurret))
		assert.Equal(t, 1.0, h.Priority(fittest.AmarrBattleship))
		assert.Equal(t, 1.0, h.Priority(fittest.Navigation))
	})

	t.Run("categories", func(t *testing.T) {
		assert.Equal(t, []fitting.ItemID{fittest.Gunnery, fittest.LargeEnergyTurret}, data.Category("Gunnery"))
		assert.Len(t, data.Category("Armor"), 6)
		assert.Empty(t, data.Category("Drones"))
		assert.Equal(t, []string{"Armor", "Gunnery"}, data.CategoryNames())
	})
}

func TestMeets(t *testing.T) {
	h, ok := loadSkills(t).Hull("Nightmare")
	require.True(t, ok)

	tests := []struct {
		name    string
		trained trained
		min     bool
		elite   bool
		gold    bool
	}{
		{
			name:    "untrained",
			trained: trained{},
		},
		{
			name:    "minimum",
			trained: trained{fittest.AmarrBattleship: 4, fittest.LargeEnergyTurret: 4, fittest.HullUpgrades: 4},
			min:     true,
		},
		{
			name:    "elite",
			trained: trained{fittest.AmarrBattleship: 5, fittest.LargeEnergyTurret: 5, fittest.HullUpgrades: 4},
			min:     true,
			elite:   true,
		},
		{
			name:    "gold",
			trained: trained{fittest.AmarrBattleship: 5, fittest.LargeEnergyTurret: 5, fittest.HullUpgrades: 5},
			min:     true,
			elite:   true,
			gold:    true,
		},
		{
			name:    "one short",
			trained: trained{fittest.AmarrBattleship: 5, fittest.LargeEnergyTurret: 3, fittest.HullUpgrades: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.min, h.Meets(tt.trained, skillplan.TierMin))
			assert.Equal(t, tt.elite, h.Meets(tt.trained, skillplan.TierElite))
			assert.Equal(t, tt.gold, h.Meets(tt.trained, skillplan.TierGold))
		})
	}
}

func TestLoadSkillDataUnknownNames(t *testing.T) {
	level := fitting.SkillLevel(3)
	doc := &config.Skills{
		DefaultHull: "Megathron",
		Categories:  map[string][]string{"Armor": {"Armour Compensation"}},
		Requirements: map[string]map[string]config.SkillTiers{
			"Megathron": {"Gallente Battleship": {Min: &level}},
			"Megathorn": {"Gallente Battleship": {Min: &level}},
			"Nightmare": {"Amarr Battleshp": {Min: &level}},
		},
	}

	_, err := skillplan.LoadSkillData(context.Background(), fittest.Catalog(t), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, fitting.ErrConfiguration)
	assert.ErrorIs(t, err, fitting.ErrUnknownItem)
	for _, name := range []string{"Armour Compensation", "Megathorn", "Amarr Battleshp"} {
		assert.Contains(t, err.Error(), name)
	}
}
