package workers

import (
	"context"
	"testing"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos/testutil"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
)

func TestWorkerRepoListActiveByUnit(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	const org, unit = int64(501), int64(5001)
	a := testutil.SeedWorker(t, ctx, tx, org, unit, "A1", nil)
	b := testutil.SeedWorker(t, ctx, tx, org, unit, "", nil)
	inactive := testutil.SeedWorker(t, ctx, tx, org, unit, "Z9", nil)
	if err := tx.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	testutil.SeedWorker(t, ctx, tx, org, unit+1, "OTHER", nil)
	testutil.SeedWorker(t, ctx, tx, org+1, unit, "FOREIGN", nil)

	rows, err := NewWorkerRepo(db, testutil.Logger(t)).ListActiveByUnit(dbc, org, unit)
	if err != nil {
		t.Fatalf("ListActiveByUnit: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != a.ID || rows[1].ID != b.ID {
		t.Fatalf("unexpected workers: %+v", rows)
	}
}

func TestWorkerAvailabilityRepoRange(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	const org, unit = int64(502), int64(5002)
	w := testutil.SeedWorker(t, ctx, tx, org, unit, "A1", nil)
	testutil.SeedAvailability(t, ctx, tx, w.ID, unit, "2025-01-02", "D", scheduling.AvailabilityUnavailable)
	testutil.SeedAvailability(t, ctx, tx, w.ID, unit, "2025-01-01", "N", scheduling.AvailabilityPreferred)
	testutil.SeedAvailability(t, ctx, tx, w.ID, unit, "2025-01-09", "D", scheduling.AvailabilityUnavailable)

	rows, err := NewWorkerAvailabilityRepo(db, testutil.Logger(t)).ListInRange(
		dbc, unit, []int64{w.ID}, scheduling.MustDate("2025-01-01"), scheduling.MustDate("2025-01-05"),
	)
	if err != nil {
		t.Fatalf("ListInRange: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in range, got %d", len(rows))
	}
	if scheduling.FormatDate(rows[0].Date) != "2025-01-01" {
		t.Fatalf("ordering: want first=2025-01-01 got=%s", scheduling.FormatDate(rows[0].Date))
	}
}

func TestWorkerPreferenceRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	w := testutil.SeedWorker(t, ctx, tx, 503, 5003, "P1", nil)
	testutil.SeedPreference(t, ctx, tx, w.ID, testutil.PtrBool(true), nil, nil)

	rows, err := NewWorkerPreferenceRepo(db, testutil.Logger(t)).ListByWorkerIDs(dbc, []int64{w.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByWorkerIDs: len=%d err=%v", len(rows), err)
	}
	if rows[0].PrefersDayShifts == nil || !*rows[0].PrefersDayShifts {
		t.Fatalf("prefers day not stored: %+v", rows[0])
	}
}
