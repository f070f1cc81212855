// Package matcher loads the doctrine fit catalog and picks the doctrine fit an
// unidentified loadout is closest to.
package matcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/codec"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

const fittingScheme = "fitting:"

var dnaPattern = regexp.MustCompile(`^[0-9:;_]+$`)

// Doctrine is the read-only catalog of doctrine fits, grouped by hull in
// declaration order.
type Doctrine struct {
	byHull map[fitting.ItemID][]fitting.DoctrineFit
	byName map[string]fitting.DoctrineFit
}

// NewDoctrine builds a catalog from fits in declaration order. When two fits
// share a name the first one is found by name.
func NewDoctrine(fits []fitting.DoctrineFit) *Doctrine {
	d := &Doctrine{
		byHull: make(map[fitting.ItemID][]fitting.DoctrineFit),
		byName: make(map[string]fitting.DoctrineFit),
	}
	for _, f := range fits {
		d.byHull[f.Fit.Hull] = append(d.byHull[f.Fit.Hull], f)
		if _, ok := d.byName[f.Name]; !ok {
			d.byName[f.Name] = f
		}
	}
	return d
}

// LoadDoctrine reads doctrine fits from an HTML listing of
// <a href="fitting:DNA">Name</a> links. Other links are ignored; every
// undecodable fit is reported in the returned configuration error.
func LoadDoctrine(ctx context.Context, c *codec.Codec, listing string) (*Doctrine, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listing))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing doctrine listing: %w", fitting.ErrConfiguration, err)
	}

	var (
		fits     []fitting.DoctrineFit
		problems config.Problems
	)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		dna, ok := strings.CutPrefix(href, fittingScheme)
		if !ok || !dnaPattern.MatchString(dna) || s.Children().Length() > 0 {
			return
		}
		name := s.Text()
		if name == "" {
			return
		}

		fit, err := c.ParseDNA(ctx, dna)
		if err != nil {
			problems.Add(fmt.Errorf("doctrine fit %q: %w", name, err))
			return
		}
		fits = append(fits, fitting.DoctrineFit{Name: name, Fit: fit})
	})

	if err := problems.Err(); err != nil {
		return nil, err
	}
	return NewDoctrine(fits), nil
}

// ForHull returns the fits for hull in declaration order.
func (d *Doctrine) ForHull(hull fitting.ItemID) []fitting.DoctrineFit {
	return d.byHull[hull]
}

// ByName finds a fit by its exact name.
func (d *Doctrine) ByName(name string) (fitting.DoctrineFit, bool) {
	f, ok := d.byName[name]
	return f, ok
}

// Hulls returns every hull with doctrine fits, ascending.
func (d *Doctrine) Hulls() []fitting.ItemID {
	return fitting.SortedIDs(d.byHull)
}

// Len returns the number of fits.
func (d *Doctrine) Len() int {
	n := 0
	for _, fits := range d.byHull {
		n += len(fits)
	}
	return n
}

// ItemIDs returns every hull, module and cargo id used by any fit, ascending.
func (d *Doctrine) ItemIDs() []fitting.ItemID {
	seen := make(map[fitting.ItemID]bool)
	for _, fits := range d.byHull {
		for _, f := range fits {
			for _, id := range f.Fit.ItemIDs() {
				seen[id] = true
			}
		}
	}
	return fitting.SortedIDs(seen)
}
