package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	drepo "GoldDesk/internal/domain/repository"
	"GoldDesk/internal/service/cache"
	"GoldDesk/internal/services/plan"
	"GoldDesk/pkg/logger"
)

// PlanUsecase serves entry plans computed from the daily snapshot table.
// Results are cached per parameter set; the table only changes on rebuild.
type PlanUsecase struct {
	store    drepo.SnapshotStore
	metrics  drepo.Metrics
	log      *logger.Logger
	cache    cache.BytesCache
	cacheTTL time.Duration
	defaults plan.Params
}

func NewPlanUsecase(
	store drepo.SnapshotStore,
	metrics drepo.Metrics,
	log *logger.Logger,
	c cache.BytesCache,
	cacheTTL time.Duration,
	defaults plan.Params,
) *PlanUsecase {
	defaults.Normalize()
	return &PlanUsecase{store: store, metrics: metrics, log: log, cache: c, cacheTTL: cacheTTL, defaults: defaults}
}

// Build computes the plan for one request, consulting the cache first.
func (u *PlanUsecase) Build(ctx context.Context, req *models.PlanRequest) (*models.EntryPlan, error) {
	key := fmt.Sprintf("plan:%.2f:%.2f:%.2f:%.2f:%.2f:%.2f:%.2f:%d",
		req.Reference, req.Step, req.Proximity, req.MinRR, req.Balance, req.RiskPercent, req.ContractSize, req.Days)
	if u.cache != nil {
		if b, ok, err := u.cache.GetBytes(key); err == nil && ok {
			var cached models.EntryPlan
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	toDate := time.Now().UTC().Format("2006-01-02")
	fromDate := time.Now().UTC().AddDate(0, 0, -req.Days).Format("2006-01-02")

	start := time.Now()
	history, err := u.store.Fetch(ctx, fromDate, toDate)
	if err != nil {
		u.metrics.RecordError("plan_fetch")
		return nil, fmt.Errorf("fetch snapshots: %w", err)
	}
	u.metrics.RecordLatency("plan_fetch", time.Since(start).Seconds())

	p := u.defaults
	p.Reference = req.Reference
	p.Step = req.Step
	p.Proximity = req.Proximity
	p.MinRR = req.MinRR
	p.Balance = req.Balance
	p.RiskPercent = req.RiskPercent
	p.ContractSize = req.ContractSize
	p.Normalize()

	result := plan.Build(history, p)

	if u.cache != nil {
		if b, err := json.Marshal(result); err == nil {
			_ = u.cache.SetBytes(key, b, u.cacheTTL)
		}
	}
	return &result, nil
}
