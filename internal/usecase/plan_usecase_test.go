package usecase

import (
	"context"
	"testing"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/service/cache"
	"GoldDesk/internal/services/plan"
)

func snapshotRow(date string, open, h1c float64) models.DailySnapshot {
	h1h := h1c + 5
	h1l := open - 5
	return models.DailySnapshot{
		TradeDate: date,
		Open:      open,
		H1High:    &h1h,
		H1Low:     &h1l,
		H1Close:   &h1c,
	}
}

func planRequest() *models.PlanRequest {
	return &models.PlanRequest{
		Reference: 2005, Step: 10, Proximity: 1.5, MinRR: 2, ContractSize: 100, Days: 365,
	}
}

func TestPlanBuildFromSnapshots(t *testing.T) {
	store := &fakeSnapshotStore{}
	for i := 0; i < 60; i++ {
		date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
		store.rows = append(store.rows, snapshotRow(date, 2000, 2004))
	}

	u := NewPlanUsecase(store, newFakeMetrics(), testLogger(), nil, time.Minute, plan.Params{})
	res, err := u.Build(context.Background(), planRequest())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.Entry <= 0 || res.Stop <= 0 {
		t.Fatalf("expected a priced plan, got %+v", res)
	}
	if res.RR+1e-9 < 2 {
		t.Fatalf("plan must honor the minimum RR, got %v", res.RR)
	}
}

func TestPlanEmptyHistoryIsNeutral(t *testing.T) {
	u := NewPlanUsecase(&fakeSnapshotStore{}, newFakeMetrics(), testLogger(), nil, time.Minute, plan.Params{})
	res, err := u.Build(context.Background(), planRequest())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.Direction != models.DirectionNeutral {
		t.Fatalf("expected NEUTRAL on empty history, got %s", res.Direction)
	}
	if len(res.Notes) == 0 {
		t.Fatal("expected an advisory note")
	}
}

func TestPlanCacheHit(t *testing.T) {
	store := &fakeSnapshotStore{}
	store.rows = append(store.rows, snapshotRow("2025-06-01", 2000, 2004))

	u := NewPlanUsecase(store, newFakeMetrics(), testLogger(), cache.NewTTLCache(), time.Minute, plan.Params{})
	first, err := u.Build(context.Background(), planRequest())
	if err != nil {
		t.Fatalf("first build: %v", err)
	}

	// mutate the store; a cache hit must still serve the original
	store.rows = nil
	second, err := u.Build(context.Background(), planRequest())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.Entry != first.Entry || second.Direction != first.Direction {
		t.Fatalf("expected cached plan, got %+v vs %+v", second, first)
	}
}
