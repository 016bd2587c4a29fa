// Package planner validates and manages memorization plans.
package planner

import (
	"context"
	"fmt"
	"strings"

	"quranstudy/internal/common"
	"quranstudy/internal/models"
)

// Saver is the slice of the session manager the planner needs.
type Saver interface {
	Snapshot() models.Collections
	SaveData(ctx context.Context, k models.Kind, value any) error
}

type Planner struct {
	saver Saver
}

func New(saver Saver) *Planner {
	return &Planner{saver: saver}
}

// AddPlan validates and appends a plan. The name is stored trimmed.
func (p *Planner) AddPlan(ctx context.Context, plan models.Plan) error {
	plan.Name = strings.TrimSpace(plan.Name)
	if plan.Name == "" {
		return fmt.Errorf("%w: plan name must not be empty", common.ErrValidation)
	}
	if plan.SurahNum < 1 || plan.SurahNum > 114 {
		return fmt.Errorf("%w: surah number must be between 1 and 114", common.ErrValidation)
	}
	if plan.Pace < 1 {
		return fmt.Errorf("%w: pace must be at least 1 ayah per day", common.ErrValidation)
	}

	plans := append(p.saver.Snapshot().Plans, plan)
	return p.saver.SaveData(ctx, models.KindPlans, plans)
}

// DeletePlan removes the plan at the given zero-based index.
func (p *Planner) DeletePlan(ctx context.Context, index int) error {
	plans := p.saver.Snapshot().Plans
	if index < 0 || index >= len(plans) {
		return fmt.Errorf("%w: no plan at index %d", common.ErrValidation, index)
	}
	plans = append(plans[:index], plans[index+1:]...)
	return p.saver.SaveData(ctx, models.KindPlans, plans)
}
