// Package fitting contains the core types for the waitlist fitting server.
package fitting

import (
	"sort"
)

// ============================================
// CATALOG TYPES
// ============================================

// ItemID identifies a catalog item (ship, module, charge, drone, implant, skill).
// Zero and negative values are never valid.
type ItemID int32

// SkillLevel is a trained skill level, 0 through 5.
type SkillLevel int

// MaxSkillLevel is the highest trainable level.
const MaxSkillLevel SkillLevel = 5

// Category is the item category id from the static data export.
type Category int32

const (
	CategoryOther   Category = 0
	CategoryShip    Category = 6
	CategoryModule  Category = 7
	CategoryCharge  Category = 8
	CategorySkill   Category = 16
	CategoryDrone   Category = 18
	CategoryImplant Category = 20
)

// CategoryFromID maps a raw category id to a known Category, or CategoryOther.
func CategoryFromID(id int32) Category {
	switch c := Category(id); c {
	case CategoryShip, CategoryModule, CategoryCharge, CategorySkill, CategoryDrone, CategoryImplant:
		return c
	default:
		return CategoryOther
	}
}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryShip:
		return "ship"
	case CategoryModule:
		return "module"
	case CategoryCharge:
		return "charge"
	case CategorySkill:
		return "skill"
	case CategoryDrone:
		return "drone"
	case CategoryImplant:
		return "implant"
	default:
		return "other"
	}
}

// AttributeID identifies a dogma attribute.
type AttributeID int32

const (
	AttributePrimarySkill           AttributeID = 182
	AttributeSecondarySkill         AttributeID = 183
	AttributeTertiarySkill          AttributeID = 184
	AttributeTrainingTimeMultiplier AttributeID = 275
	AttributePrimarySkillLevel      AttributeID = 277
	AttributeSecondarySkillLevel    AttributeID = 278
	AttributeTertiarySkillLevel     AttributeID = 279
	AttributeMetaLevel              AttributeID = 633
	AttributeEMResistanceBonus      AttributeID = 984
	AttributeExplosiveResistBonus   AttributeID = 985
	AttributeKineticResistBonus     AttributeID = 986
	AttributeThermalResistBonus     AttributeID = 987
	AttributeQuaternarySkill        AttributeID = 1285
	AttributeQuaternarySkillLevel   AttributeID = 1286
	AttributeQuinarySkillLevel      AttributeID = 1287
	AttributeSenarySkillLevel       AttributeID = 1288
	AttributeQuinarySkill           AttributeID = 1289
	AttributeSenarySkill            AttributeID = 1290
)

// skillAttributePairs lists (skill attribute, level attribute) pairs.
var skillAttributePairs = [][2]AttributeID{
	{AttributePrimarySkill, AttributePrimarySkillLevel},
	{AttributeSecondarySkill, AttributeSecondarySkillLevel},
	{AttributeTertiarySkill, AttributeTertiarySkillLevel},
	{AttributeQuaternarySkill, AttributeQuaternarySkillLevel},
	{AttributeQuinarySkill, AttributeQuinarySkillLevel},
	{AttributeSenarySkill, AttributeSenarySkillLevel},
}

// EffectID identifies a dogma effect.
type EffectID int32

const (
	EffectLowPower  EffectID = 11
	EffectHiPower   EffectID = 12
	EffectMedPower  EffectID = 13
	EffectRigSlot   EffectID = 2663
	EffectSubSystem EffectID = 3772
)

// Slot is the fitting slot an item occupies.
type Slot string

const (
	SlotNone      Slot = ""
	SlotHigh      Slot = "high"
	SlotMed       Slot = "med"
	SlotLow       Slot = "low"
	SlotRig       Slot = "rig"
	SlotSubsystem Slot = "subsystem"
	SlotDrone     Slot = "drone"
)

// Item is a resolved catalog entry.
type Item struct {
	ID                ItemID                  `json:"id"`
	Name              string                  `json:"name"`
	GroupID           int32                   `json:"group_id"`
	Category          Category                `json:"category"`
	Attributes        map[AttributeID]float64 `json:"attributes,omitempty"`
	Effects           map[EffectID]bool       `json:"effects,omitempty"`
	SkillRequirements map[ItemID]SkillLevel   `json:"skill_requirements,omitempty"`
}

// Attribute returns the value of attribute a, if present.
func (i *Item) Attribute(a AttributeID) (float64, bool) {
	v, ok := i.Attributes[a]
	return v, ok
}

// IsAlwaysCargo reports whether the item can only ever be carried, never fitted.
func (i *Item) IsAlwaysCargo() bool {
	return i.Category == CategoryCharge || i.Category == CategoryImplant
}

// Slot returns the slot the item is fitted to, or SlotNone.
func (i *Item) Slot() Slot {
	switch {
	case i.Category == CategoryDrone:
		return SlotDrone
	case i.Effects[EffectHiPower]:
		return SlotHigh
	case i.Effects[EffectMedPower]:
		return SlotMed
	case i.Effects[EffectLowPower]:
		return SlotLow
	case i.Effects[EffectRigSlot]:
		return SlotRig
	case i.Effects[EffectSubSystem]:
		return SlotSubsystem
	}
	return SlotNone
}

// SkillRequirementsFromAttributes extracts required skills from the paired
// skill/level attributes. Pairs with a missing half are ignored.
func SkillRequirementsFromAttributes(attrs map[AttributeID]float64) map[ItemID]SkillLevel {
	reqs := make(map[ItemID]SkillLevel)
	for _, pair := range skillAttributePairs {
		skill, ok := attrs[pair[0]]
		if !ok {
			continue
		}
		level, ok := attrs[pair[1]]
		if !ok {
			continue
		}
		id := ItemID(skill)
		if id <= 0 {
			continue
		}
		if SkillLevel(level) > reqs[id] {
			reqs[id] = SkillLevel(level)
		}
	}
	return reqs
}

// ============================================
// LOADOUT TYPES
// ============================================

// Loadout is a ship hull plus its fitted modules and carried cargo.
type Loadout struct {
	Hull    ItemID           `json:"hull"`
	Modules map[ItemID]int64 `json:"modules"`
	Cargo   map[ItemID]int64 `json:"cargo"`
}

// NewLoadout returns an empty loadout for hull.
func NewLoadout(hull ItemID) Loadout {
	return Loadout{
		Hull:    hull,
		Modules: make(map[ItemID]int64),
		Cargo:   make(map[ItemID]int64),
	}
}

// Clone returns a deep copy of the loadout.
func (l Loadout) Clone() Loadout {
	c := NewLoadout(l.Hull)
	for id, n := range l.Modules {
		c.Modules[id] = n
	}
	for id, n := range l.Cargo {
		c.Cargo[id] = n
	}
	return c
}

// ItemIDs returns the hull, module and cargo ids, unique and ascending.
func (l Loadout) ItemIDs() []ItemID {
	seen := map[ItemID]bool{l.Hull: true}
	for id := range l.Modules {
		seen[id] = true
	}
	for id := range l.Cargo {
		seen[id] = true
	}
	return SortedIDs(seen)
}

// SortedIDs returns the keys of m in ascending order.
func SortedIDs[V any](m map[ItemID]V) []ItemID {
	ids := make([]ItemID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Variation is a directed substitution edge. TierDelta is tier(To) - tier(From).
type Variation struct {
	From      ItemID `json:"from"`
	To        ItemID `json:"to"`
	TierDelta int64  `json:"tier_delta"`
}

// DiffResult reconciles an actual loadout against an expected one.
type DiffResult struct {
	ModuleMissing    map[ItemID]int64            `json:"module_missing"`
	ModuleExtra      map[ItemID]int64            `json:"module_extra"`
	ModuleUpgraded   map[ItemID]map[ItemID]int64 `json:"module_upgraded"`
	ModuleDowngraded map[ItemID]map[ItemID]int64 `json:"module_downgraded"`
	CargoMissing     map[ItemID]int64            `json:"cargo_missing"`
}

// IsClean reports whether nothing is missing, extra or downgraded.
// Upgrades are allowed.
func (d *DiffResult) IsClean() bool {
	return len(d.ModuleMissing) == 0 &&
		len(d.ModuleExtra) == 0 &&
		len(d.ModuleDowngraded) == 0 &&
		len(d.CargoMissing) == 0
}

// DoctrineFit is a named, pre-approved reference loadout.
type DoctrineFit struct {
	Name string  `json:"name"`
	Fit  Loadout `json:"fit"`
}

// LevelPair is a (skill, level) requirement.
type LevelPair struct {
	Skill ItemID     `json:"skill"`
	Level SkillLevel `json:"level"`
}

// ============================================
// REQUEST / RESPONSE TYPES
// ============================================

// Fit text formats.
const (
	FormatDNA = "dna"
	FormatEFT = "eft"
)

// ItemRef is an item id with its display name.
type ItemRef struct {
	ID   ItemID `json:"id"`
	Name string `json:"name"`
}

// ItemCount is a named item with a quantity.
type ItemCount struct {
	ID    ItemID `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Substitution records Count of From replaced by To.
type Substitution struct {
	From  ItemRef `json:"from"`
	To    ItemRef `json:"to"`
	Count int64   `json:"count"`
}

// NamedDiff is a DiffResult with names resolved, ordered by item id.
type NamedDiff struct {
	ModuleMissing    []ItemCount    `json:"module_missing"`
	ModuleExtra      []ItemCount    `json:"module_extra"`
	ModuleUpgraded   []Substitution `json:"module_upgraded"`
	ModuleDowngraded []Substitution `json:"module_downgraded"`
	CargoMissing     []ItemCount    `json:"cargo_missing"`
}

// ParseFitRequest asks for loadout text to be decoded and validated.
type ParseFitRequest struct {
	Format string `json:"format"`
	Text   string `json:"text"`
}

// ParsedFit is a validated loadout with display names.
type ParsedFit struct {
	Hull    ItemRef     `json:"hull"`
	DNA     string      `json:"dna"`
	Modules []ItemCount `json:"modules"`
	Cargo   []ItemCount `json:"cargo"`
}

// ParseFitResponse lists every loadout found in the input.
type ParseFitResponse struct {
	Fits []ParsedFit `json:"fits"`
}

// CompareFitRequest compares an actual loadout to an expected one. The
// expected side is either a DNA string or the name of a doctrine fit.
type CompareFitRequest struct {
	Expected string `json:"expected,omitempty"`
	Doctrine string `json:"doctrine,omitempty"`
	Actual   string `json:"actual"`
}

// CompareFitResponse is the outcome of a comparison.
type CompareFitResponse struct {
	Clean bool      `json:"clean"`
	Diff  NamedDiff `json:"diff"`
}

// MatchFitRequest asks which doctrine fit a loadout is closest to.
type MatchFitRequest struct {
	Format string `json:"format,omitempty"`
	Fit    string `json:"fit"`
}

// MatchFitResponse is the best doctrine fit, if any shares the hull.
type MatchFitResponse struct {
	Matched  bool       `json:"matched"`
	Doctrine string     `json:"doctrine,omitempty"`
	Score    int64      `json:"score"`
	Clean    bool       `json:"clean"`
	Diff     *NamedDiff `json:"diff,omitempty"`
}

// SkillLevelEntry is one step of a training order.
type SkillLevelEntry struct {
	Skill ItemRef    `json:"skill"`
	Level SkillLevel `json:"level"`
}

// SkillPlanResult is a built skill plan.
type SkillPlanResult struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Alpha       bool              `json:"alpha"`
	Levels      []SkillLevelEntry `json:"levels"`
	Ships       []ItemRef         `json:"ships"`
	TotalSP     int64             `json:"total_sp"`
}

// SkillPlansResponse lists every configured plan.
type SkillPlansResponse struct {
	Plans []SkillPlanResult `json:"plans"`
}

// CheckFitRequest evaluates a pilot's loadout and skills for the waitlist.
type CheckFitRequest struct {
	Fit    string                `json:"fit"`
	Skills map[ItemID]SkillLevel `json:"skills"`
}

// CheckFitResponse is the outcome of a fit check.
type CheckFitResponse struct {
	Approved     bool       `json:"approved"`
	Doctrine     string     `json:"doctrine,omitempty"`
	Category     string     `json:"category"`
	CategoryName string     `json:"category_name"`
	Tags         []string   `json:"tags"`
	Errors       []string   `json:"errors,omitempty"`
	Diff         *NamedDiff `json:"diff,omitempty"`
}

// HullSkillsRequest asks for the skill table of a hull.
type HullSkillsRequest struct {
	Hull string `json:"hull"`
}

// HullSkillEntry is one skill of a hull's table. A zero level means the tier
// does not ask for the skill.
type HullSkillEntry struct {
	Skill ItemRef    `json:"skill"`
	Min   SkillLevel `json:"min"`
	Elite SkillLevel `json:"elite"`
	Gold  SkillLevel `json:"gold"`
}

// SkillCategoryEntry groups the skills of a hull's table.
type SkillCategoryEntry struct {
	Name   string           `json:"name"`
	Skills []HullSkillEntry `json:"skills"`
}

// HullSkillsResponse is a hull's skill table by category.
type HullSkillsResponse struct {
	Hull       ItemRef              `json:"hull"`
	Categories []SkillCategoryEntry `json:"categories"`
}

// ItemVariationsRequest asks which items may stand in for an item.
type ItemVariationsRequest struct {
	Item string `json:"item"`
}

// VariationEntry is an accepted substitute and its tier difference.
type VariationEntry struct {
	Item      ItemRef `json:"item"`
	TierDelta int64   `json:"tier_delta"`
}

// ItemVariationsResponse lists the substitutes of an item, best matches
// first, the item itself included.
type ItemVariationsResponse struct {
	Item       ItemRef          `json:"item"`
	Variations []VariationEntry `json:"variations"`
}

// DoctrineEntry is a doctrine fit in canonical form.
type DoctrineEntry struct {
	Name string `json:"name"`
	DNA  string `json:"dna"`
}

// DoctrineHull groups doctrine fits sharing a hull.
type DoctrineHull struct {
	Hull ItemRef         `json:"hull"`
	Fits []DoctrineEntry `json:"fits"`
}

// FittingsResponse lists all doctrine fits.
type FittingsResponse struct {
	Hulls []DoctrineHull `json:"hulls"`
}
