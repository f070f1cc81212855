// Package fittest provides an in-memory item catalog and matching game-rule
// documents for tests.
package fittest

import (
	"embed"
	"encoding/json"
	"testing"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/db"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

//go:embed testdata
var testdata embed.FS

// Item ids present in the fixture catalog.
const (
	Capsule    fitting.ItemID = 670
	Nightmare  fitting.ItemID = 17736
	Megathron  fitting.ItemID = 641
	Nestor     fitting.ItemID = 33472
	Atron      fitting.ItemID = 608
	Venture    fitting.ItemID = 32880
	Kronos     fitting.ItemID = 28661
	SampleHull fitting.ItemID = 59630

	MegaPulseLaserII  fitting.ItemID = 3057
	MegaPulseLaserI   fitting.ItemID = 3025
	LargeMJD          fitting.ItemID = 4383
	MWD1              fitting.ItemID = 12076
	MWD2              fitting.ItemID = 12084
	CoreCTypeMWD      fitting.ItemID = 19337
	CoreXTypeMWD      fitting.ItemID = 19359
	GistXTypeMWD      fitting.ItemID = 19347
	Afterburner2      fitting.ItemID = 12058
	AbyssalAB         fitting.ItemID = 47749
	SensorBooster2    fitting.ItemID = 1952
	Membrane1         fitting.ItemID = 11269
	Membrane2         fitting.ItemID = 11301
	FedNavyMembrane   fitting.ItemID = 14950
	CorpumMembrane    fitting.ItemID = 18946
	CentumMembrane    fitting.ItemID = 18952
	Coating1          fitting.ItemID = 1306
	Coating2          fitting.ItemID = 1308
	CentiiCoating     fitting.ItemID = 18983
	SteelPlates2      fitting.ItemID = 20353
	BastionModule     fitting.ItemID = 33400
	ArmorBurst        fitting.ItemID = 23674
	InformationBurst  fitting.ItemID = 24550
	SkirmishBurst     fitting.ItemID = 24552
	ShieldBurst       fitting.ItemID = 24554
	Hobgoblin2        fitting.ItemID = 2456
	HullBot1          fitting.ItemID = 28197
	HullBot2          fitting.ItemID = 28199
	ConflagrationL    fitting.ItemID = 12816
	NaniteRepairPaste fitting.ItemID = 28668
	AgencyDB3         fitting.ItemID = 46002
	AgencyDB5         fitting.ItemID = 46003
	AgencyDB7         fitting.ItemID = 46004
	StrongExile       fitting.ItemID = 15466
	SynthExile        fitting.ItemID = 10156
	UnpublishedLaser  fitting.ItemID = 99999

	SpaceshipCommand     fitting.ItemID = 3327
	AmarrBattleship      fitting.ItemID = 3339
	GallenteBattleship   fitting.ItemID = 3336
	Marauders            fitting.ItemID = 28667
	Gunnery              fitting.ItemID = 3300
	LargeEnergyTurret    fitting.ItemID = 3309
	Mechanics            fitting.ItemID = 3392
	HullUpgrades         fitting.ItemID = 3394
	EMArmorComp          fitting.ItemID = 22806
	ExplosiveArmorComp   fitting.ItemID = 22807
	KineticArmorComp     fitting.ItemID = 22808
	ThermalArmorComp     fitting.ItemID = 22809
	Navigation           fitting.ItemID = 3449
	AfterburnerSkill     fitting.ItemID = 3450
	HighSpeedManeuvering fitting.ItemID = 3454
	CapacitorManagement  fitting.ItemID = 3426
)

// Records returns the fixture catalog in import form.
func Records(t testing.TB) []db.ItemRecord {
	t.Helper()
	raw := File(t, "items.json")
	var records []db.ItemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("decoding fixture items: %v", err)
	}
	return records
}

// Catalog returns an in-memory catalog holding the fixture items.
func Catalog(t testing.TB) *catalog.Memory {
	t.Helper()
	return catalog.NewMemory(Records(t))
}

// File returns a fixture file by name.
func File(t testing.TB, name string) []byte {
	t.Helper()
	raw, err := testdata.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return raw
}

// Data returns the parsed fixture documents.
func Data(t testing.TB) *config.Data {
	t.Helper()

	modules, err := config.ParseModules(File(t, config.ModulesFile))
	mustNot(t, err)
	skills, err := config.ParseSkills(File(t, config.SkillsFile))
	mustNot(t, err)
	plans, err := config.ParsePlans(File(t, config.PlansFile))
	mustNot(t, err)
	categories, err := config.ParseCategories(File(t, config.CategoriesFile))
	mustNot(t, err)

	return &config.Data{
		Modules:    modules,
		Skills:     skills,
		Plans:      plans,
		Categories: categories,
		Fits:       string(File(t, config.FitsFile)),
	}
}

// Loadout builds a loadout from id/count pairs.
func Loadout(hull fitting.ItemID, modules, cargo map[fitting.ItemID]int64) fitting.Loadout {
	l := fitting.NewLoadout(hull)
	for id, n := range modules {
		l.Modules[id] = n
	}
	for id, n := range cargo {
		l.Cargo[id] = n
	}
	return l
}

func mustNot(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("loading fixture documents: %v", err)
	}
}
