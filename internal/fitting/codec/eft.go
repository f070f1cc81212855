package codec

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// EFT sections in order. Everything from eftCargoSection on is cargo.
const (
	eftHighSection = iota
	eftMedSection
	eftLowSection
	eftRigSection
	eftSubsystemSection
	eftDroneSection
	eftFighterSection
	eftCargoSection
)

type eftLine struct {
	fit     int
	section int
	name    string
	count   int64
	stacked bool
}

type eftHeader struct {
	hull  string
	label string
}

// ParseEFT decodes one or more EFT blocks. Each "[Hull, Label]" header starts
// a new loadout; blank lines advance the section.
func (c *Codec) ParseEFT(ctx context.Context, text string) ([]fitting.Loadout, error) {
	var (
		headers []eftHeader
		lines   []eftLine
		section int
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if header, ok := parseEFTHeader(line); ok {
			headers = append(headers, header)
			section = 0
			continue
		}
		if len(headers) == 0 {
			if line == "" {
				continue
			}
			return nil, fmt.Errorf("%w: content before header: %q", fitting.ErrInvalidFit, line)
		}
		if strings.HasPrefix(line, "[Empty ") {
			continue
		}
		if line == "" {
			section++
			continue
		}

		name, count, stacked, err := splitEFTCount(line)
		if err != nil {
			return nil, err
		}
		lines = append(lines, eftLine{
			fit:     len(headers) - 1,
			section: section,
			name:    name,
			count:   count,
			stacked: stacked,
		})
	}

	names := make([]string, 0, len(headers)+len(lines))
	for _, h := range headers {
		names = append(names, h.hull)
	}
	for _, l := range lines {
		names = append(names, l.name)
	}
	ids, err := c.catalog.IDsOf(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolving names: %w", err)
	}

	var lookup []fitting.ItemID
	for _, l := range lines {
		if id, ok := ids[l.name]; ok && l.section < eftCargoSection {
			lookup = append(lookup, id)
		}
	}
	items, err := c.catalog.Items(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("resolving items: %w", err)
	}

	fits := make([]fitting.Loadout, len(headers))
	for i, h := range headers {
		hull, ok := ids[h.hull]
		if !ok {
			return nil, fmt.Errorf("%w: hull %q", fitting.ErrInvalidModule, h.hull)
		}
		fits[i] = fitting.NewLoadout(hull)
	}

	for _, l := range lines {
		id, ok := ids[l.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", fitting.ErrInvalidModule, l.name)
		}

		toCargo := true
		if l.section < eftCargoSection {
			item, ok := items[id]
			if !ok {
				return nil, fmt.Errorf("%w: %q", fitting.ErrInvalidModule, l.name)
			}
			// Stacked non-drone items in a slot section are ammunition.
			toCargo = item.IsAlwaysCargo() || (l.stacked && item.Category != fitting.CategoryDrone)
		}

		if toCargo {
			fits[l.fit].Cargo[id] += l.count
		} else {
			fits[l.fit].Modules[id] += l.count
		}
	}

	return fits, nil
}

func parseEFTHeader(line string) (eftHeader, bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") || !strings.Contains(line, ",") {
		return eftHeader{}, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
	hull, label, _ := strings.Cut(inner, ",")
	return eftHeader{hull: strings.TrimSpace(hull), label: strings.TrimSpace(label)}, true
}

// splitEFTCount splits "Name xN". The quantity is taken from the last " x"
// only when what follows is a number, so names containing " x" survive.
func splitEFTCount(line string) (string, int64, bool, error) {
	i := strings.LastIndex(line, " x")
	if i < 0 {
		return line, 1, false, nil
	}
	suffix := line[i+2:]
	if suffix == "" || strings.TrimLeft(suffix, "-0123456789") != "" {
		return line, 1, false, nil
	}
	count, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return "", 0, false, fmt.Errorf("%w: count %q", fitting.ErrInvalidFit, line)
	}
	return line[:i], count, true, nil
}

// EncodeEFT writes a loadout in EFT form under the given label. Fitted items
// are grouped by slot, one line per module and one stacked line per drone;
// cargo follows the last slot section.
func (c *Codec) EncodeEFT(ctx context.Context, fit fitting.Loadout, label string) (string, error) {
	items, err := c.catalog.Items(ctx, fit.ItemIDs())
	if err != nil {
		return "", fmt.Errorf("resolving items: %w", err)
	}
	name := func(id fitting.ItemID) (string, error) {
		item, ok := items[id]
		if !ok {
			return "", fmt.Errorf("%w: id %d", fitting.ErrInvalidModule, id)
		}
		return item.Name, nil
	}

	hullName, err := name(fit.Hull)
	if err != nil {
		return "", err
	}

	sections := make([][]string, eftCargoSection+1)
	for _, id := range fitting.SortedIDs(fit.Modules) {
		n, err := name(id)
		if err != nil {
			return "", err
		}
		section := eftSectionOf(items[id].Slot())
		if section == eftDroneSection {
			sections[section] = append(sections[section], fmt.Sprintf("%s x%d", n, fit.Modules[id]))
			continue
		}
		for i := int64(0); i < fit.Modules[id]; i++ {
			sections[section] = append(sections[section], n)
		}
	}
	for _, id := range fitting.SortedIDs(fit.Cargo) {
		n, err := name(id)
		if err != nil {
			return "", err
		}
		sections[eftCargoSection] = append(sections[eftCargoSection], fmt.Sprintf("%s x%d", n, fit.Cargo[id]))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s, %s]\n", hullName, label)
	for i, lines := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

func eftSectionOf(slot fitting.Slot) int {
	switch slot {
	case fitting.SlotMed:
		return eftMedSection
	case fitting.SlotLow:
		return eftLowSection
	case fitting.SlotRig:
		return eftRigSection
	case fitting.SlotSubsystem:
		return eftSubsystemSection
	case fitting.SlotDrone:
		return eftDroneSection
	default:
		return eftHighSection
	}
}
