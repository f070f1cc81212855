package engine_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/engine"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/fittest"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

const (
	hqNightmare    = "17736:3057;4:19359;1:12058;1:18952;1:12816;123::"
	eliteNightmare = "17736:3057;4:19359;1:12058;1:18952;1:1952;1:12816;123::"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, data *config.Data) *engine.Engine {
	t.Helper()
	e, err := engine.New(context.Background(), fittest.Catalog(t), data, quietLogger())
	require.NoError(t, err)
	return e
}

func ids(counts []fitting.ItemCount) map[fitting.ItemID]int64 {
	out := make(map[fitting.ItemID]int64, len(counts))
	for _, c := range counts {
		out[c.ID] = c.Count
	}
	return out
}

func TestNew(t *testing.T) {
	e, err := engine.New(context.Background(), fittest.Catalog(t), fittest.Data(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, e.Doctrine().Len())
	assert.Positive(t, e.Graph().Len())
	assert.NotNil(t, e.Codec())
}

func TestNewAggregatesConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("documents", func(t *testing.T) {
		data := fittest.Data(t)
		data.Modules.AcceptT1 = append(data.Modules.AcceptT1, "Warp Core Stabilizer II")
		data.Fits += `<a href="fitting:17736:123456;1::">BROKEN</a>`

		_, err := engine.New(ctx, fittest.Catalog(t), data, quietLogger())
		require.Error(t, err)
		assert.ErrorIs(t, err, fitting.ErrConfiguration)
		assert.False(t, fitting.IsRejectedInput(err))
		assert.Contains(t, err.Error(), "modules:")
		assert.Contains(t, err.Error(), `doctrine fit "BROKEN"`)
	})

	t.Run("plans", func(t *testing.T) {
		data := fittest.Data(t)
		data.Plans.Plans = append(data.Plans.Plans, config.Plan{
			Name:  "gold",
			Steps: []config.Step{{Type: config.StepSkills, From: "Nightmare", Tier: "platinum"}},
		})

		_, err := engine.New(ctx, fittest.Catalog(t), data, quietLogger())
		require.Error(t, err)
		assert.ErrorIs(t, err, fitting.ErrConfiguration)
		assert.Contains(t, err.Error(), "skill plans:")
		assert.Contains(t, err.Error(), `plan "gold"`)
	})
}

func TestParseFit(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fittest.Data(t))

	resp, err := e.ParseFit(ctx, fitting.ParseFitRequest{Format: fitting.FormatDNA, Text: "33472:11301;2:4383;1::"})
	require.NoError(t, err)
	require.Len(t, resp.Fits, 1)
	fit := resp.Fits[0]
	assert.Equal(t, fitting.ItemRef{ID: fittest.Nestor, Name: "Nestor"}, fit.Hull)
	assert.Equal(t, "33472:4383;1:11301;2::", fit.DNA)
	assert.Equal(t, map[fitting.ItemID]int64{fittest.LargeMJD: 1, fittest.Membrane2: 2}, ids(fit.Modules))
	assert.Empty(t, fit.Cargo)

	eft := "[Nestor, two fits]\nMultispectrum Energized Membrane II\n\n[Nightmare, second]\nMega Pulse Laser II\nConflagration L x10\n"
	resp, err = e.ParseFit(ctx, fitting.ParseFitRequest{Format: fitting.FormatEFT, Text: eft})
	require.NoError(t, err)
	require.Len(t, resp.Fits, 2)
	assert.Equal(t, "Nightmare", resp.Fits[1].Hull.Name)
	assert.Equal(t, []fitting.ItemCount{{ID: fittest.ConflagrationL, Name: "Conflagration L", Count: 10}}, resp.Fits[1].Cargo)

	_, err = e.ParseFit(ctx, fitting.ParseFitRequest{Format: "xml", Text: "<fit/>"})
	assert.ErrorIs(t, err, fitting.ErrMalformedInput)
}

func TestCompareFit(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fittest.Data(t))

	t.Run("expected dna", func(t *testing.T) {
		resp, err := e.CompareFit(ctx, fitting.CompareFitRequest{
			Expected: hqNightmare,
			Actual:   "17736:3057;4:47749;1:18983;1:1952;1::",
		})
		require.NoError(t, err)
		assert.False(t, resp.Clean)
		assert.Equal(t, []fitting.ItemCount{{ID: fittest.CoreXTypeMWD, Name: "Core X-Type 500MN Microwarpdrive", Count: 1}}, resp.Diff.ModuleMissing)
		assert.Equal(t, []fitting.ItemCount{{ID: fittest.SensorBooster2, Name: "Sensor Booster II", Count: 1}}, resp.Diff.ModuleExtra)
		require.Len(t, resp.Diff.ModuleDowngraded, 1)
		assert.Equal(t, fitting.Substitution{
			From:  fitting.ItemRef{ID: fittest.CentumMembrane, Name: "Centum A-Type Multispectrum Energized Membrane"},
			To:    fitting.ItemRef{ID: fittest.CentiiCoating, Name: "Centii A-Type Multispectrum Coating"},
			Count: 1,
		}, resp.Diff.ModuleDowngraded[0])
		require.Len(t, resp.Diff.ModuleUpgraded, 1)
		assert.Equal(t, fittest.AbyssalAB, resp.Diff.ModuleUpgraded[0].To.ID)
		assert.Equal(t, map[fitting.ItemID]int64{fittest.ConflagrationL: 123}, ids(resp.Diff.CargoMissing))
	})

	t.Run("doctrine name", func(t *testing.T) {
		resp, err := e.CompareFit(ctx, fitting.CompareFitRequest{Doctrine: "HQ NIGHTMARE", Actual: hqNightmare})
		require.NoError(t, err)
		assert.True(t, resp.Clean)
		assert.Empty(t, resp.Diff.ModuleMissing)
		assert.Empty(t, resp.Diff.ModuleUpgraded)
	})

	t.Run("bad requests", func(t *testing.T) {
		_, err := e.CompareFit(ctx, fitting.CompareFitRequest{Expected: hqNightmare, Doctrine: "HQ NIGHTMARE", Actual: hqNightmare})
		assert.ErrorIs(t, err, fitting.ErrMalformedInput)

		_, err = e.CompareFit(ctx, fitting.CompareFitRequest{Actual: hqNightmare})
		assert.ErrorIs(t, err, fitting.ErrMalformedInput)

		_, err = e.CompareFit(ctx, fitting.CompareFitRequest{Doctrine: "HQ MEGATHRON", Actual: hqNightmare})
		assert.ErrorIs(t, err, fitting.ErrFitNotFound)

		_, err = e.CompareFit(ctx, fitting.CompareFitRequest{Doctrine: "HQ NIGHTMARE", Actual: "17736:123456;1::"})
		assert.ErrorIs(t, err, fitting.ErrInvalidModule)
		assert.True(t, fitting.IsRejectedInput(err))
	})
}

func TestMatchFit(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fittest.Data(t))

	resp, err := e.MatchFit(ctx, fitting.MatchFitRequest{Fit: eliteNightmare})
	require.NoError(t, err)
	assert.True(t, resp.Matched)
	assert.Equal(t, "HQ NIGHTMARE ELITE", resp.Doctrine)
	assert.Zero(t, resp.Score)
	assert.True(t, resp.Clean)
	require.NotNil(t, resp.Diff)

	resp, err = e.MatchFit(ctx, fitting.MatchFitRequest{Format: fitting.FormatDNA, Fit: "641::"})
	require.NoError(t, err)
	assert.False(t, resp.Matched)
	assert.Nil(t, resp.Diff)

	_, err = e.MatchFit(ctx, fitting.MatchFitRequest{
		Format: fitting.FormatEFT,
		Fit:    "[Nightmare, a]\nMega Pulse Laser II\n\n[Nightmare, b]\nMega Pulse Laser II\n",
	})
	assert.ErrorIs(t, err, fitting.ErrInvalidFit)
}

func TestSkillPlans(t *testing.T) {
	e := newEngine(t, fittest.Data(t))

	resp, err := e.SkillPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Plans, 2)

	nightmare := resp.Plans[0]
	assert.Equal(t, "Nightmare", nightmare.Name)
	assert.Equal(t, []fitting.ItemRef{{ID: fittest.Nightmare, Name: "Nightmare"}}, nightmare.Ships)
	last := nightmare.Levels[len(nightmare.Levels)-1]
	assert.Equal(t, fitting.SkillLevelEntry{Skill: fitting.ItemRef{ID: fittest.Mechanics, Name: "Mechanics"}, Level: 4}, last)

	bastion := resp.Plans[1]
	assert.Equal(t, "Bastion tank", bastion.Name)
	assert.Empty(t, bastion.Ships)
	assert.Equal(t, int64(919295), bastion.TotalSP)
}

func TestCheckFit(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fittest.Data(t))

	resp, err := e.CheckFit(ctx, fitting.CheckFitRequest{Fit: hqNightmare})
	require.NoError(t, err)
	assert.Equal(t, "HQ NIGHTMARE", resp.Doctrine)
	assert.Equal(t, "starter", resp.Category)
	assert.Equal(t, "Starter", resp.CategoryName)
	require.NotNil(t, resp.Diff)
	assert.Empty(t, resp.Diff.ModuleMissing)
	assert.Contains(t, resp.Errors, "Missing skills to online/use 'Nightmare'")

	resp, err = e.CheckFit(ctx, fitting.CheckFitRequest{Fit: "28661::", Skills: map[fitting.ItemID]fitting.SkillLevel{fittest.Marauders: 1}})
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.Empty(t, resp.Doctrine)
	assert.Nil(t, resp.Diff)

	_, err = e.CheckFit(ctx, fitting.CheckFitRequest{Fit: "not dna"})
	assert.ErrorIs(t, err, fitting.ErrMalformedInput)
}

func TestHullSkills(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fittest.Data(t))

	resp, err := e.HullSkills(ctx, fitting.HullSkillsRequest{Hull: "Nightmare"})
	require.NoError(t, err)
	assert.Equal(t, fitting.ItemRef{ID: fittest.Nightmare, Name: "Nightmare"}, resp.Hull)

	want := []fitting.SkillCategoryEntry{
		{Name: "Armor", Skills: []fitting.HullSkillEntry{
			{Skill: fitting.ItemRef{ID: fittest.HullUpgrades, Name: "Hull Upgrades"}, Min: 4, Elite: 4, Gold: 5},
		}},
		{Name: "Gunnery", Skills: []fitting.HullSkillEntry{
			{Skill: fitting.ItemRef{ID: fittest.LargeEnergyTurret, Name: "Large Energy Turret"}, Min: 4, Elite: 5, Gold: 5},
		}},
		{Name: "Other", Skills: []fitting.HullSkillEntry{
			{Skill: fitting.ItemRef{ID: fittest.AmarrBattleship, Name: "Amarr Battleship"}, Min: 4, Elite: 5, Gold: 5},
		}},
	}
	assert.Equal(t, want, resp.Categories)

	_, err = e.HullSkills(ctx, fitting.HullSkillsRequest{Hull: "Venture"})
	assert.ErrorIs(t, err, fitting.ErrUnknownItem)
	assert.True(t, fitting.IsRejectedInput(err))
}

func TestItemVariations(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, fittest.Data(t))

	resp, err := e.ItemVariations(ctx, fitting.ItemVariationsRequest{Item: "Centum A-Type Multispectrum Energized Membrane"})
	require.NoError(t, err)
	assert.Equal(t, fittest.CentumMembrane, resp.Item.ID)
	require.NotEmpty(t, resp.Variations)
	require.Len(t, resp.Variations, 8)
	assert.Equal(t, fittest.CorpumMembrane, resp.Variations[0].Item.ID)
	assert.Equal(t, fittest.CentumMembrane, resp.Variations[1].Item.ID)
	assert.Zero(t, resp.Variations[1].TierDelta)
	for _, v := range resp.Variations {
		assert.NotEmpty(t, v.Item.Name)
	}

	resp, err = e.ItemVariations(ctx, fitting.ItemVariationsRequest{Item: "Sensor Booster II"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Variations)
	assert.Empty(t, resp.Variations)

	_, err = e.ItemVariations(ctx, fitting.ItemVariationsRequest{Item: "No Such Item"})
	assert.ErrorIs(t, err, fitting.ErrUnknownItem)
}

func TestFittings(t *testing.T) {
	e := newEngine(t, fittest.Data(t))

	resp, err := e.Fittings(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Hulls, 2)

	assert.Equal(t, fitting.ItemRef{ID: fittest.Nightmare, Name: "Nightmare"}, resp.Hulls[0].Hull)
	var names []string
	for _, f := range resp.Hulls[0].Fits {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"STARTER NIGHTMARE", "HQ NIGHTMARE", "HQ NIGHTMARE ELITE"}, names)
	assert.Equal(t, "17736:3057;4:11269;1:12076;1:12816;100::", resp.Hulls[0].Fits[0].DNA)

	assert.Equal(t, []fitting.DoctrineEntry{{Name: "NESTOR", DNA: "33472:4383;1:11301;2::"}}, resp.Hulls[1].Fits)
}

func TestVerifyDoctrine(t *testing.T) {
	ctx := context.Background()

	mismatches, err := newEngine(t, fittest.Data(t)).VerifyDoctrine(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	data := fittest.Data(t)
	data.Fits += `<a href="fitting:` + hqNightmare + `">HQ NIGHTMARE COPY</a>`
	mismatches, err = newEngine(t, data).VerifyDoctrine(ctx)
	require.NoError(t, err)
	assert.Equal(t, []engine.Mismatch{{
		Fit:     "HQ NIGHTMARE COPY",
		Hull:    fittest.Nightmare,
		Matched: "HQ NIGHTMARE",
	}}, mismatches)
}
