package engine

import (
	"context"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// SkillPlans returns every configured plan. Plans are built at startup.
func (e *Engine) SkillPlans(_ context.Context) (*fitting.SkillPlansResponse, error) {
	return &fitting.SkillPlansResponse{Plans: e.plans}, nil
}
