package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Mismatch is a doctrine fit that is not matched to itself.
type Mismatch struct {
	Fit     string         `json:"fit"`
	Hull    fitting.ItemID `json:"hull"`
	Matched string         `json:"matched"`
	Score   int64          `json:"score"`
}

// VerifyDoctrine matches every doctrine fit against the catalog and reports
// those that resolve to a different fit, such as exact duplicates declared
// later. It also validates every fit.
func (e *Engine) VerifyDoctrine(ctx context.Context) ([]Mismatch, error) {
	var fits []fitting.DoctrineFit
	for _, h := range e.doctrine.Hulls() {
		fits = append(fits, e.doctrine.ForHull(h)...)
	}

	results := make([]*Mismatch, len(fits))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, f := range fits {
		i, f := i, f
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if err := e.codec.Validate(gCtx, f.Fit); err != nil {
				return err
			}
			m, ok := e.matcher.FindFit(f.Fit)
			if !ok || m.Fit.Name != f.Name {
				results[i] = &Mismatch{Fit: f.Name, Hull: f.Fit.Hull, Matched: m.Fit.Name, Score: m.Score}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for _, r := range results {
		if r != nil {
			mismatches = append(mismatches, *r)
		}
	}
	e.logger.Info("verified doctrine", "fits", len(fits), "mismatches", len(mismatches))
	return mismatches, nil
}
