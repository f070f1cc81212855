package variations

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// attributeEpsilon is the smallest attribute difference that separates tiers.
const attributeEpsilon = 1e-10

type builder struct {
	cat      catalog.Catalog
	ids      map[string]fitting.ItemID
	graph    *Graph
	owner    map[fitting.ItemID]string
	problems config.Problems
}

// Build constructs the graph from the modules document. Every unknown name,
// ambiguous group membership and missing attribute is reported together in
// one error wrapping fitting.ErrConfiguration.
func Build(ctx context.Context, cat catalog.Catalog, modules *config.Modules) (*Graph, error) {
	b := &builder{
		cat: cat,
		graph: &Graph{
			variations:     make(map[fitting.ItemID][]fitting.Variation),
			cargoIgnore:    make(map[fitting.ItemID]bool),
			identification: make(map[fitting.ItemID]bool),
		},
		owner: make(map[fitting.ItemID]string),
	}

	ids, err := cat.IDsOf(ctx, namesIn(modules))
	if err != nil {
		return nil, fmt.Errorf("resolving module names: %w", err)
	}
	b.ids = ids

	b.addAlternatives(modules.Alternatives)
	if err := b.addMeta(ctx, modules.FromMeta); err != nil {
		return nil, err
	}
	b.addT1(modules.AcceptT1)
	if err := b.addByAttribute(ctx, modules.FromAttribute); err != nil {
		return nil, err
	}
	b.addCargoIgnore(modules.CargoIgnore)
	b.addDrugs(modules.Drugs)
	b.addIdentification(modules.Identification)

	if err := b.problems.Err(); err != nil {
		return nil, err
	}
	return b.graph, nil
}

func (b *builder) id(name, source string) (fitting.ItemID, bool) {
	id, ok := b.ids[name]
	if !ok {
		b.problems.Add(fmt.Errorf("%s: %w: %q", source, fitting.ErrUnknownItem, name))
	}
	return id, ok
}

// merge adds a variation from every member of the group to every member,
// itself included. Members already claimed by another group make the whole
// group ambiguous.
func (b *builder) merge(source string, tiers map[fitting.ItemID]int) {
	ambiguous := false
	for _, id := range fitting.SortedIDs(tiers) {
		if other, ok := b.owner[id]; ok {
			b.problems.Addf("%s: item %d already declared by %s", source, id, other)
			ambiguous = true
		}
	}
	if ambiguous {
		return
	}

	for from, fromTier := range tiers {
		vars := make([]fitting.Variation, 0, len(tiers))
		for to, toTier := range tiers {
			vars = append(vars, fitting.Variation{
				From:      from,
				To:        to,
				TierDelta: int64(toTier - fromTier),
			})
		}
		sortVariations(vars)
		b.graph.variations[from] = vars
		b.owner[from] = source
	}
}

func (b *builder) addAlternatives(groups [][][]string) {
	for i, group := range groups {
		source := fmt.Sprintf("alternatives[%d]", i)
		tiers := make(map[fitting.ItemID]int)
		ok := true
		for tier, names := range group {
			for _, name := range names {
				id, found := b.id(name, source)
				if !found {
					ok = false
					continue
				}
				tiers[id] = tier + 1
			}
		}
		if ok {
			b.merge(source, tiers)
		}
	}
}

func (b *builder) addMeta(ctx context.Context, entries []config.FromMetaEntry) error {
	for i, entry := range entries {
		source := fmt.Sprintf("from_meta[%d] %q", i, entry.Base)

		base, ok := b.id(entry.Base, source)
		if !ok {
			continue
		}
		tiers, err := b.cat.MetaVariants(ctx, base)
		if err != nil {
			return fmt.Errorf("loading meta variants of %q: %w", entry.Base, err)
		}
		baseTier, ok := tiers[base]
		if !ok {
			b.problems.Addf("%s: base has no meta level", source)
			continue
		}

		ok = true
		for _, alias := range []string{entry.Abyssal, entry.Alternative} {
			if alias == "" {
				continue
			}
			id, found := b.id(alias, source)
			if !found {
				ok = false
				continue
			}
			tiers[id] = baseTier
		}
		if ok {
			b.merge(source, tiers)
		}
	}
	return nil
}

// addT1 pairs each listed tech 2 item with the tech 1 item whose name lacks
// the final character.
func (b *builder) addT1(entries []string) {
	for i, name := range entries {
		source := fmt.Sprintf("accept_t1[%d] %q", i, name)
		if len(name) < 2 {
			b.problems.Addf("%s: name too short", source)
			continue
		}
		t2, ok2 := b.id(name, source)
		t1, ok1 := b.id(name[:len(name)-1], source)
		if ok1 && ok2 {
			b.merge(source, map[fitting.ItemID]int{t2: 2, t1: 1})
		}
	}
}

type rankedItem struct {
	id    fitting.ItemID
	value float64
}

func (b *builder) addByAttribute(ctx context.Context, entries []config.FromAttributeEntry) error {
	for i, entry := range entries {
		source := fmt.Sprintf("from_attribute[%d]", i)

		members := make(map[fitting.ItemID]bool)
		for _, name := range entry.Base {
			base, ok := b.id(name, source)
			if !ok {
				continue
			}
			family, err := b.cat.MetaVariants(ctx, base)
			if err != nil {
				return fmt.Errorf("loading meta variants of %q: %w", name, err)
			}
			for id := range family {
				members[id] = true
			}
		}
		if len(members) == 0 {
			continue
		}

		ids := fitting.SortedIDs(members)
		items, err := b.cat.Items(ctx, ids)
		if err != nil {
			return fmt.Errorf("loading %s items: %w", source, err)
		}

		ranked := make([]rankedItem, 0, len(ids))
		complete := true
		for _, id := range ids {
			item, ok := items[id]
			if !ok {
				b.problems.Add(fmt.Errorf("%s: %w: id %d", source, fitting.ErrUnknownItem, id))
				complete = false
				continue
			}
			value, ok := item.Attribute(entry.Attribute)
			if !ok {
				b.problems.Addf("%s: %s has no attribute %d", source, item.Name, entry.Attribute)
				complete = false
				continue
			}
			ranked = append(ranked, rankedItem{id: id, value: value})
		}
		if !complete {
			continue
		}

		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].value < ranked[j].value })
		if entry.Reverse {
			for l, r := 0, len(ranked)-1; l < r; l, r = l+1, r-1 {
				ranked[l], ranked[r] = ranked[r], ranked[l]
			}
		}

		tiers := make(map[fitting.ItemID]int, len(ranked))
		tier := 1
		last := ranked[0].value
		for _, r := range ranked {
			if math.Abs(last-r.value) > attributeEpsilon {
				tier++
				last = r.value
			}
			tiers[r.id] = tier
		}
		b.merge(source, tiers)
	}
	return nil
}

func (b *builder) addCargoIgnore(names []string) {
	for _, name := range names {
		if id, ok := b.id(name, "cargo_ignore"); ok {
			b.graph.cargoIgnore[id] = true
		}
	}
}

func (b *builder) addDrugs(rules []config.DrugRule) {
	byDetector := make(map[fitting.ItemID]DrugRule)
	for i, rule := range rules {
		source := fmt.Sprintf("drugs_approve_override[%d]", i)
		detect, ok := b.id(rule.Detect, source)
		if !ok {
			continue
		}
		dr := DrugRule{
			Detect: detect,
			Remove: make(map[fitting.ItemID]bool),
			Add:    make(map[fitting.ItemID]int64),
		}
		for _, name := range rule.Remove {
			if id, ok := b.id(name, source); ok {
				dr.Remove[id] = true
			}
		}
		for _, add := range rule.Add {
			if id, ok := b.id(add.Name, source); ok {
				dr.Add[id] = add.Amount
			}
		}
		byDetector[detect] = dr
	}
	for _, id := range fitting.SortedIDs(byDetector) {
		b.graph.drugs = append(b.graph.drugs, byDetector[id])
	}
}

// addIdentification expands each listed item to every item it may be
// substituted by.
func (b *builder) addIdentification(names []string) {
	for _, name := range names {
		id, ok := b.id(name, "identification")
		if !ok {
			continue
		}
		for _, v := range b.graph.Of(id) {
			b.graph.identification[v.To] = true
		}
	}
}

func namesIn(m *config.Modules) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	for _, group := range m.Alternatives {
		for _, tier := range group {
			for _, n := range tier {
				add(n)
			}
		}
	}
	for _, e := range m.FromMeta {
		add(e.Base)
		add(e.Abyssal)
		add(e.Alternative)
	}
	for _, n := range m.AcceptT1 {
		add(n)
		if len(n) > 1 {
			add(n[:len(n)-1])
		}
	}
	for _, e := range m.FromAttribute {
		for _, n := range e.Base {
			add(n)
		}
	}
	for _, n := range m.CargoIgnore {
		add(n)
	}
	for _, r := range m.Drugs {
		add(r.Detect)
		for _, n := range r.Remove {
			add(n)
		}
		for _, a := range r.Add {
			add(a.Name)
		}
	}
	for _, n := range m.Identification {
		add(n)
	}
	return names
}
