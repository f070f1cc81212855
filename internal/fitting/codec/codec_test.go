package codec_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/codec"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/fittest"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

func newCodec(t *testing.T) *codec.Codec {
	t.Helper()
	return codec.New(fittest.Catalog(t))
}

func TestParseDNA(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	tests := []struct {
		name    string
		dna     string
		modules map[fitting.ItemID]int64
		cargo   map[fitting.ItemID]int64
	}{
		{
			name: "empty hull",
			dna:  "670::",
		},
		{
			name:    "charges go to cargo",
			dna:     "17736:3057;4:12816;2:4383_;1::",
			modules: map[fitting.ItemID]int64{fittest.MegaPulseLaserII: 4},
			cargo:   map[fitting.ItemID]int64{fittest.ConflagrationL: 2, fittest.LargeMJD: 1},
		},
		{
			name:    "omitted count is one and repeats add up",
			dna:     "17736:3057:3057;2::",
			modules: map[fitting.ItemID]int64{fittest.MegaPulseLaserII: 3},
		},
		{
			name:  "forced cargo item is not looked up",
			dna:   "17736:123456_;1::",
			cargo: map[fitting.ItemID]int64{123456: 1},
		},
		{
			name:    "drones are fitted",
			dna:     "17736:2456;5::",
			modules: map[fitting.ItemID]int64{fittest.Hobgoblin2: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, err := c.ParseDNA(ctx, tt.dna)
			require.NoError(t, err)
			want := fittest.Loadout(fit.Hull, tt.modules, tt.cargo)
			assert.Equal(t, want, fit)
		})
	}
}

func TestParseDNAErrors(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	tooMany := "17736:" + strings.Repeat("3057;1:", codec.MaxDNAClauses+1) + ":"

	tests := []struct {
		name string
		dna  string
		want error
	}{
		{"empty", "", fitting.ErrInvalidFit},
		{"non numeric hull", "abc::", fitting.ErrInvalidFit},
		{"zero hull", "0::", fitting.ErrInvalidFit},
		{"non numeric item", "17736:xyz;1::", fitting.ErrInvalidFit},
		{"non numeric count", "17736:3057;q::", fitting.ErrInvalidFit},
		{"unknown item", "17736:123456;1::", fitting.ErrInvalidModule},
		{"too many clauses", tooMany, fitting.ErrInvalidFit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ParseDNA(ctx, tt.dna)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, fitting.IsRejectedInput(err))
		})
	}
}

func TestEncodeDNA(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	t.Run("canonical order", func(t *testing.T) {
		fit, err := c.ParseDNA(ctx, "17736:12816;2:4383_;1:3057;4::")
		require.NoError(t, err)

		dna, err := c.EncodeDNA(ctx, fit)
		require.NoError(t, err)
		assert.Equal(t, "17736:3057;4:4383_;1:12816;2::", dna)
	})

	t.Run("empty hull", func(t *testing.T) {
		dna, err := c.EncodeDNA(ctx, fitting.NewLoadout(fittest.Capsule))
		require.NoError(t, err)
		assert.Equal(t, "670::", dna)
	})

	t.Run("round trip", func(t *testing.T) {
		for _, dna := range []string{
			"17736:3057;4:12058;1:18952;1:19359;1:12816;123::",
			"33472:4383;1:11301;2::",
			"17736:2456;5:28199;2:1952_;1:15466;1:28668;50::",
		} {
			fit, err := c.ParseDNA(ctx, dna)
			require.NoError(t, err)
			encoded, err := c.EncodeDNA(ctx, fit)
			require.NoError(t, err)
			assert.Equal(t, dna, encoded)

			again, err := c.ParseDNA(ctx, encoded)
			require.NoError(t, err)
			assert.Equal(t, fit, again)
		}
	})

	t.Run("unknown cargo item", func(t *testing.T) {
		fit := fittest.Loadout(fittest.Nightmare, nil, map[fitting.ItemID]int64{123456: 1})
		_, err := c.EncodeDNA(ctx, fit)
		assert.ErrorIs(t, err, fitting.ErrInvalidModule)
	})
}

const hqNightmareEFT = `
[Nightmare, HQ Nightmare]
Mega Pulse Laser II
Mega Pulse Laser II
Mega Pulse Laser II
Mega Pulse Laser II

Core X-Type 500MN Microwarpdrive
10MN Afterburner II
Sensor Booster II x1

Centum A-Type Multispectrum Energized Membrane
[Empty Low slot]



Hobgoblin II x5


Conflagration L x123
Nanite Repair Paste x50
`

func TestParseEFT(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	t.Run("sections", func(t *testing.T) {
		fits, err := c.ParseEFT(ctx, hqNightmareEFT)
		require.NoError(t, err)
		require.Len(t, fits, 1)

		want := fittest.Loadout(fittest.Nightmare,
			map[fitting.ItemID]int64{
				fittest.MegaPulseLaserII: 4,
				fittest.CoreXTypeMWD:     1,
				fittest.Afterburner2:     1,
				fittest.CentumMembrane:   1,
				fittest.Hobgoblin2:       5,
			},
			map[fitting.ItemID]int64{
				fittest.SensorBooster2:    1,
				fittest.ConflagrationL:    123,
				fittest.NaniteRepairPaste: 50,
			})
		assert.Equal(t, want, fits[0])
	})

	t.Run("multiple fits", func(t *testing.T) {
		text := hqNightmareEFT + "\n[Venture, Mining]\nMega Pulse Laser I\n"
		fits, err := c.ParseEFT(ctx, text)
		require.NoError(t, err)
		require.Len(t, fits, 2)
		assert.Equal(t, fittest.Nightmare, fits[0].Hull)
		assert.Equal(t,
			fittest.Loadout(fittest.Venture, map[fitting.ItemID]int64{fittest.MegaPulseLaserI: 1}, nil),
			fits[1])
	})

	t.Run("no header", func(t *testing.T) {
		fits, err := c.ParseEFT(ctx, "\n\n")
		require.NoError(t, err)
		assert.Empty(t, fits)
	})

	t.Run("blank lines before the header", func(t *testing.T) {
		fits, err := c.ParseEFT(ctx, "\n  \n[Nightmare, X]\nMega Pulse Laser II\n")
		require.NoError(t, err)
		require.Len(t, fits, 1)
		assert.Equal(t, int64(1), fits[0].Modules[fittest.MegaPulseLaserII])
	})

	t.Run("crlf line endings", func(t *testing.T) {
		fits, err := c.ParseEFT(ctx, "[Nightmare, X]\r\nMega Pulse Laser II\r\n")
		require.NoError(t, err)
		require.Len(t, fits, 1)
		assert.Equal(t, int64(1), fits[0].Modules[fittest.MegaPulseLaserII])
	})
}

func TestParseEFTErrors(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	tests := []struct {
		name string
		text string
		want error
	}{
		{"content before header", "Mega Pulse Laser II\n[Nightmare, X]", fitting.ErrInvalidFit},
		{"header without label", "[Nightmare]\nMega Pulse Laser II", fitting.ErrInvalidFit},
		{"unknown hull", "[Unknown Hull, X]\n", fitting.ErrInvalidModule},
		{"unknown module", "[Nightmare, X]\nMega Pulse Laser IX\n", fitting.ErrInvalidModule},
		{"unpublished module", "[Nightmare, X]\nRetired Prototype Laser\n", fitting.ErrInvalidModule},
		{"huge count", "[Nightmare, X]\nConflagration L x99999999999999999999\n", fitting.ErrInvalidFit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ParseEFT(ctx, tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeEFT(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	fits, err := c.ParseEFT(ctx, hqNightmareEFT)
	require.NoError(t, err)
	require.Len(t, fits, 1)

	text, err := c.EncodeEFT(ctx, fits[0], "HQ Nightmare")
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Equal(t, "[Nightmare, HQ Nightmare]", lines[0])
	assert.Contains(t, text, "Hobgoblin II x5\n")
	assert.Contains(t, text, "Conflagration L x123\n")
	assert.Equal(t, 4, strings.Count(text, "Mega Pulse Laser II\n"))

	again, err := c.ParseEFT(ctx, text)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, fits[0], again[0])
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	tests := []struct {
		name string
		fit  fitting.Loadout
		want error
	}{
		{
			name: "valid",
			fit: fittest.Loadout(fittest.Nightmare,
				map[fitting.ItemID]int64{fittest.MegaPulseLaserII: 4},
				map[fitting.ItemID]int64{fittest.ConflagrationL: 100}),
		},
		{
			name: "capsule hull",
			fit:  fitting.NewLoadout(fittest.Capsule),
		},
		{
			name: "unpublished item by id",
			fit:  fittest.Loadout(fittest.Nightmare, map[fitting.ItemID]int64{fittest.UnpublishedLaser: 1}, nil),
		},
		{
			name: "zero module count",
			fit:  fittest.Loadout(fittest.Nightmare, map[fitting.ItemID]int64{fittest.MegaPulseLaserII: 0}, nil),
			want: fitting.ErrInvalidCount,
		},
		{
			name: "negative cargo count",
			fit:  fittest.Loadout(fittest.Nightmare, nil, map[fitting.ItemID]int64{fittest.ConflagrationL: -1}),
			want: fitting.ErrInvalidCount,
		},
		{
			name: "unknown item",
			fit:  fittest.Loadout(fittest.Nightmare, nil, map[fitting.ItemID]int64{123456: 1}),
			want: fitting.ErrInvalidModule,
		},
		{
			name: "unknown hull",
			fit:  fitting.NewLoadout(123456),
			want: fitting.ErrInvalidModule,
		},
		{
			name: "charge fitted",
			fit:  fittest.Loadout(fittest.Nightmare, map[fitting.ItemID]int64{fittest.ConflagrationL: 1}, nil),
			want: fitting.ErrCargoOnlyModule,
		},
		{
			name: "module as hull",
			fit:  fitting.NewLoadout(fittest.MegaPulseLaserII),
			want: fitting.ErrInvalidHull,
		},
		{
			name: "charge as hull",
			fit:  fitting.NewLoadout(fittest.ConflagrationL),
			want: fitting.ErrInvalidHull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Validate(ctx, tt.fit)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseValid(t *testing.T) {
	ctx := context.Background()
	c := newCodec(t)

	t.Run("dna default format", func(t *testing.T) {
		fits, err := c.ParseValid(ctx, "", "17736:3057;4::")
		require.NoError(t, err)
		require.Len(t, fits, 1)
	})

	t.Run("eft", func(t *testing.T) {
		fits, err := c.ParseValid(ctx, fitting.FormatEFT, hqNightmareEFT)
		require.NoError(t, err)
		require.Len(t, fits, 1)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := c.ParseValid(ctx, "xml", "17736::")
		assert.ErrorIs(t, err, fitting.ErrMalformedInput)
	})

	t.Run("no eft fit", func(t *testing.T) {
		_, err := c.ParseValid(ctx, fitting.FormatEFT, "")
		assert.ErrorIs(t, err, fitting.ErrInvalidFit)
	})

	t.Run("invalid fit in eft", func(t *testing.T) {
		_, err := c.ParseValid(ctx, fitting.FormatEFT, "[Nightmare, X]\n\n\n\n\n\n\nMega Pulse Laser II x1\n\n[Conflagration L, Y]\n")
		assert.ErrorIs(t, err, fitting.ErrInvalidHull)
	})
}
