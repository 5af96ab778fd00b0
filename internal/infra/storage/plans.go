package storage

import (
	"context"
	"errors"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/google/uuid"
)

// PlanStore is the plan namespace keyed by organization id. Organizations
// without an entry are on the free plan.
type PlanStore struct {
	ns interfaces.Namespace
}

var _ interfaces.PlanSource = (*PlanStore)(nil)

func NewPlanStore(ns interfaces.Namespace) *PlanStore {
	return &PlanStore{ns: ns}
}

func (p *PlanStore) GetPlan(ctx context.Context, orgID uuid.UUID) (consts.Plan, error) {
	data, err := p.ns.Get(ctx, orgID.String())
	if errors.Is(err, errs.ErrKeyNotFound) {
		return consts.PlanFree, nil
	}
	if err != nil {
		return "", err
	}
	switch plan := consts.Plan(data); plan {
	case consts.PlanLaunch, consts.PlanOrbit:
		return plan, nil
	default:
		return consts.PlanFree, nil
	}
}

func (p *PlanStore) SetPlan(ctx context.Context, orgID uuid.UUID, plan consts.Plan) error {
	return p.ns.Put(ctx, orgID.String(), []byte(plan))
}

func (p *PlanStore) DeletePlan(ctx context.Context, orgID uuid.UUID) error {
	return p.ns.Delete(ctx, orgID.String())
}
