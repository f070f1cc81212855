package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// maxBatch bounds the number of bound parameters in one IN (...) query.
const maxBatch = 500

// Meta group ids used when an item lacks an explicit meta level.
const (
	metaGroupTech1 = 1
	metaGroupTech2 = 2
)

// ItemRecord is a catalog item in import form.
type ItemRecord struct {
	ID           fitting.ItemID                  `json:"id"`
	Name         string                          `json:"name"`
	GroupID      int32                           `json:"group_id"`
	CategoryID   int32                           `json:"category_id"`
	Published    bool                            `json:"published"`
	Attributes   map[fitting.AttributeID]float64 `json:"attributes,omitempty"`
	Effects      []fitting.EffectID              `json:"effects,omitempty"`
	ParentTypeID fitting.ItemID                  `json:"parent_type_id,omitempty"`
	MetaGroupID  int32                           `json:"meta_group_id,omitempty"`
}

// ItemStore handles item catalog access.
type ItemStore struct {
	db *DB
}

// NewItemStore creates a new ItemStore.
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

// LoadItems resolves ids in batches. Unknown ids are absent from the result.
func (s *ItemStore) LoadItems(ctx context.Context, ids []fitting.ItemID) (map[fitting.ItemID]*fitting.Item, error) {
	result := make(map[fitting.ItemID]*fitting.Item, len(ids))

	for start := 0; start < len(ids); start += maxBatch {
		end := min(start+maxBatch, len(ids))
		if err := s.loadBatch(ctx, ids[start:end], result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *ItemStore) loadBatch(ctx context.Context, ids []fitting.ItemID, into map[fitting.ItemID]*fitting.Item) error {
	placeholders, args := inClause(ids)

	rows, err := s.db.QueryContext(ctx, `
		SELECT invTypes.typeID, typeName, invTypes.groupID, categoryID
		FROM invTypes JOIN invGroups ON invTypes.groupID = invGroups.groupID
		WHERE invTypes.typeID IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batch []*fitting.Item
	for rows.Next() {
		item := &fitting.Item{
			Attributes: make(map[fitting.AttributeID]float64),
			Effects:    make(map[fitting.EffectID]bool),
		}
		var categoryID int32
		if err := rows.Scan(&item.ID, &item.Name, &item.GroupID, &categoryID); err != nil {
			return fmt.Errorf("scanning item: %w", err)
		}
		item.Category = fitting.CategoryFromID(categoryID)
		into[item.ID] = item
		batch = append(batch, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	if err := s.loadAttributes(ctx, placeholders, args, into); err != nil {
		return err
	}
	if err := s.loadEffects(ctx, placeholders, args, into); err != nil {
		return err
	}

	for _, item := range batch {
		item.SkillRequirements = fitting.SkillRequirementsFromAttributes(item.Attributes)
	}

	return nil
}

func (s *ItemStore) loadAttributes(ctx context.Context, placeholders string, args []any, into map[fitting.ItemID]*fitting.Item) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT typeID, attributeID, COALESCE(valueFloat, valueInt)
		FROM dgmTypeAttributes
		WHERE typeID IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("querying attributes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id    fitting.ItemID
			attr  fitting.AttributeID
			value sql.NullFloat64
		)
		if err := rows.Scan(&id, &attr, &value); err != nil {
			return fmt.Errorf("scanning attribute: %w", err)
		}
		if item, ok := into[id]; ok && value.Valid {
			item.Attributes[attr] = value.Float64
		}
	}

	return rows.Err()
}

func (s *ItemStore) loadEffects(ctx context.Context, placeholders string, args []any, into map[fitting.ItemID]*fitting.Item) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT typeID, effectID FROM dgmTypeEffects
		WHERE typeID IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("querying effects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id     fitting.ItemID
			effect fitting.EffectID
		)
		if err := rows.Scan(&id, &effect); err != nil {
			return fmt.Errorf("scanning effect: %w", err)
		}
		if item, ok := into[id]; ok {
			item.Effects[effect] = true
		}
	}

	return rows.Err()
}

// IDsOf resolves item names to ids. Unknown names are absent from the result.
// Only published items are considered.
func (s *ItemStore) IDsOf(ctx context.Context, names []string) (map[string]fitting.ItemID, error) {
	result := make(map[string]fitting.ItemID, len(names))

	for start := 0; start < len(names); start += maxBatch {
		end := min(start+maxBatch, len(names))
		batch := names[start:end]

		args := make([]any, len(batch))
		for i, n := range batch {
			args[i] = n
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")

		rows, err := s.db.QueryContext(ctx, `
			SELECT typeName, typeID FROM invTypes
			WHERE published = 1 AND typeName IN (`+placeholders+`)
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("querying item names: %w", err)
		}

		for rows.Next() {
			var (
				name string
				id   fitting.ItemID
			)
			if err := rows.Scan(&name, &id); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("scanning item name: %w", err)
			}
			result[name] = id
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// MetaVariants returns the meta family of id with each member's tier.
// The family parent has tier 0; members without a meta level fall back to
// their meta group, and are left out if that is not tech 1 or tech 2.
func (s *ItemStore) MetaVariants(ctx context.Context, id fitting.ItemID) (map[fitting.ItemID]int, error) {
	parent := id
	var parentID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT parentTypeID FROM invMetaTypes WHERE typeID = ?`, id,
	).Scan(&parentID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("querying meta parent: %w", err)
	}
	if parentID.Valid {
		parent = fitting.ItemID(parentID.Int64)
	}

	variants := map[fitting.ItemID]int{parent: 0}

	rows, err := s.db.QueryContext(ctx, `
		SELECT invMetaTypes.typeID, COALESCE(valueInt, valueFloat), metaGroupID
		FROM invMetaTypes LEFT JOIN dgmTypeAttributes
			ON invMetaTypes.typeID = dgmTypeAttributes.typeID
			AND attributeID = ?
		WHERE parentTypeID = ?
	`, fitting.AttributeMetaLevel, parent)
	if err != nil {
		return nil, fmt.Errorf("querying meta variants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			variant   fitting.ItemID
			metaLevel sql.NullFloat64
			metaGroup int32
		)
		if err := rows.Scan(&variant, &metaLevel, &metaGroup); err != nil {
			return nil, fmt.Errorf("scanning meta variant: %w", err)
		}
		switch {
		case metaLevel.Valid:
			variants[variant] = int(metaLevel.Float64)
		case metaGroup == metaGroupTech1:
			variants[variant] = 1
		case metaGroup == metaGroupTech2:
			variants[variant] = 2
		}
	}

	return variants, rows.Err()
}

// MaxItemID returns the highest known item id, or 0 for an empty catalog.
func (s *ItemStore) MaxItemID(ctx context.Context) (fitting.ItemID, error) {
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(typeID) FROM invTypes`).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying max item id: %w", err)
	}
	return fitting.ItemID(id.Int64), nil
}

// CountItems returns the number of items in the catalog.
func (s *ItemStore) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invTypes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// BulkInsertItems replaces or inserts items in a single transaction.
func (s *ItemStore) BulkInsertItems(ctx context.Context, items []ItemRecord) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		groupStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO invGroups (groupID, categoryID) VALUES (?, ?)
			ON CONFLICT(groupID) DO UPDATE SET categoryID = excluded.categoryID
		`)
		if err != nil {
			return fmt.Errorf("preparing group insert: %w", err)
		}
		defer func() { _ = groupStmt.Close() }()

		typeStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO invTypes (typeID, groupID, typeName, published)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing item insert: %w", err)
		}
		defer func() { _ = typeStmt.Close() }()

		attrStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO dgmTypeAttributes (typeID, attributeID, valueFloat)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing attribute insert: %w", err)
		}
		defer func() { _ = attrStmt.Close() }()

		effectStmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO dgmTypeEffects (typeID, effectID) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing effect insert: %w", err)
		}
		defer func() { _ = effectStmt.Close() }()

		metaStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO invMetaTypes (typeID, parentTypeID, metaGroupID)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing meta insert: %w", err)
		}
		defer func() { _ = metaStmt.Close() }()

		for _, item := range items {
			if item.ID <= 0 {
				return fmt.Errorf("item %q: %w", item.Name, fitting.ErrUnknownItem)
			}
			if _, err := groupStmt.ExecContext(ctx, item.GroupID, item.CategoryID); err != nil {
				return fmt.Errorf("inserting group %d: %w", item.GroupID, err)
			}
			if _, err := typeStmt.ExecContext(ctx, item.ID, item.GroupID, item.Name, item.Published); err != nil {
				return fmt.Errorf("inserting item %d: %w", item.ID, err)
			}
			for attr, value := range item.Attributes {
				if _, err := attrStmt.ExecContext(ctx, item.ID, attr, value); err != nil {
					return fmt.Errorf("inserting attribute %d for %d: %w", attr, item.ID, err)
				}
			}
			for _, effect := range item.Effects {
				if _, err := effectStmt.ExecContext(ctx, item.ID, effect); err != nil {
					return fmt.Errorf("inserting effect %d for %d: %w", effect, item.ID, err)
				}
			}
			if item.ParentTypeID > 0 {
				if _, err := metaStmt.ExecContext(ctx, item.ID, item.ParentTypeID, item.MetaGroupID); err != nil {
					return fmt.Errorf("inserting meta type for %d: %w", item.ID, err)
				}
			}
		}

		return nil
	})
}

func inClause(ids []fitting.ItemID) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}
