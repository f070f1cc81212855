package catalog

import (
	"context"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/db"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Memory is a catalog held entirely in memory, built from import records.
type Memory struct {
	items    map[fitting.ItemID]*fitting.Item
	names    map[string]fitting.ItemID
	parents  map[fitting.ItemID]fitting.ItemID
	children map[fitting.ItemID][]db.ItemRecord
}

var _ Catalog = (*Memory)(nil)

// NewMemory creates an in-memory catalog. Later records replace earlier
// records with the same id.
func NewMemory(records []db.ItemRecord) *Memory {
	m := &Memory{
		items:    make(map[fitting.ItemID]*fitting.Item, len(records)),
		names:    make(map[string]fitting.ItemID, len(records)),
		parents:  make(map[fitting.ItemID]fitting.ItemID),
		children: make(map[fitting.ItemID][]db.ItemRecord),
	}
	for _, rec := range records {
		m.add(rec)
	}
	return m
}

func (m *Memory) add(rec db.ItemRecord) {
	item := &fitting.Item{
		ID:         rec.ID,
		Name:       rec.Name,
		GroupID:    rec.GroupID,
		Category:   fitting.CategoryFromID(rec.CategoryID),
		Attributes: make(map[fitting.AttributeID]float64, len(rec.Attributes)),
		Effects:    make(map[fitting.EffectID]bool, len(rec.Effects)),
	}
	for k, v := range rec.Attributes {
		item.Attributes[k] = v
	}
	for _, e := range rec.Effects {
		item.Effects[e] = true
	}
	item.SkillRequirements = fitting.SkillRequirementsFromAttributes(item.Attributes)

	m.items[rec.ID] = item
	if rec.Published {
		m.names[rec.Name] = rec.ID
	}
	if rec.ParentTypeID > 0 {
		m.parents[rec.ID] = rec.ParentTypeID
		m.children[rec.ParentTypeID] = append(m.children[rec.ParentTypeID], rec)
	}
}

func (m *Memory) Items(_ context.Context, ids []fitting.ItemID) (map[fitting.ItemID]*fitting.Item, error) {
	result := make(map[fitting.ItemID]*fitting.Item, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

func (m *Memory) IDsOf(_ context.Context, names []string) (map[string]fitting.ItemID, error) {
	result := make(map[string]fitting.ItemID, len(names))
	for _, name := range names {
		if id, ok := m.names[name]; ok {
			result[name] = id
		}
	}
	return result, nil
}

func (m *Memory) MetaVariants(_ context.Context, id fitting.ItemID) (map[fitting.ItemID]int, error) {
	parent := id
	if p, ok := m.parents[id]; ok {
		parent = p
	}

	variants := map[fitting.ItemID]int{parent: 0}
	for _, rec := range m.children[parent] {
		if level, ok := rec.Attributes[fitting.AttributeMetaLevel]; ok {
			variants[rec.ID] = int(level)
			continue
		}
		switch rec.MetaGroupID {
		case 1:
			variants[rec.ID] = 1
		case 2:
			variants[rec.ID] = 2
		}
	}
	return variants, nil
}

// Len returns the number of items.
func (m *Memory) Len() int {
	return len(m.items)
}
