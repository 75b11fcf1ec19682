package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"opnamecore/internal/domain/models"
	"opnamecore/pkg/clients/inventory"
)

type fakeGateway struct {
	items       map[string]*inventory.Item
	catalogSize int
	failSetCode string
	failGetCode string
	setCalls    []string
}

func (f *fakeGateway) GetItem(_ context.Context, code string) (*inventory.Item, error) {
	if code == f.failGetCode {
		return nil, errors.New("backend unavailable")
	}
	item, ok := f.items[code]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeGateway) SetQuantity(_ context.Context, code string, qty int) error {
	if code == f.failSetCode {
		return errors.New("backend rejected update")
	}
	f.setCalls = append(f.setCalls, code)
	if item, ok := f.items[code]; ok {
		item.SystemQty = qty
	}
	return nil
}

func (f *fakeGateway) CountAll(context.Context) (int, error) {
	return f.catalogSize, nil
}

type fakeLedger struct {
	appended []models.SOHistoryRecord
}

func (f *fakeLedger) Append(_ context.Context, record models.SOHistoryRecord) (models.SOHistoryRecord, error) {
	record.ID = "rec-1"
	f.appended = append(f.appended, record)
	return record, nil
}

func (f *fakeLedger) ListAll(context.Context) ([]models.SOHistoryRecord, error) {
	out := make([]models.SOHistoryRecord, len(f.appended))
	copy(out, f.appended)
	return out, nil
}

func (f *fakeLedger) DeleteByIDs(_ context.Context, ids []string) error {
	keep := f.appended[:0]
	for _, record := range f.appended {
		remove := false
		for _, id := range ids {
			if record.ID == id {
				remove = true
			}
		}
		if !remove {
			keep = append(keep, record)
		}
	}
	f.appended = keep
	return nil
}

type fakeSessionStore struct {
	session *models.SOSession
}

func (f *fakeSessionStore) Put(_ context.Context, session models.SOSession) error {
	f.session = &session
	return nil
}

func (f *fakeSessionStore) Get(context.Context) (*models.SOSession, error) {
	if f.session == nil {
		return nil, nil
	}
	copied := *f.session
	return &copied, nil
}

func (f *fakeSessionStore) UpdateDraft(_ context.Context, items []models.SOWorkingItem, lastStep models.SOStep) (bool, error) {
	if f.session == nil {
		return false, nil
	}
	f.session.WorkingItems = items
	f.session.LastStep = lastStep
	return true, nil
}

func (f *fakeSessionStore) Delete(context.Context) error {
	f.session = nil
	return nil
}

func newTestEngine(gateway *fakeGateway, ledger *fakeLedger, sessions *fakeSessionStore) *Engine {
	engine := NewEngine(gateway, ledger, sessions, nil, nil)
	engine.now = func() time.Time { return time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC) }
	return engine
}

func TestDifferenceAndLineTotalSignsAgree(t *testing.T) {
	cases := []struct {
		name string
		item models.SOWorkingItem
		want int
	}{
		{"shortage", models.SOWorkingItem{SystemQty: 10, PhysicalQty: 7, Price: 1500}, -3},
		{"overage", models.SOWorkingItem{SystemQty: 4, PhysicalQty: 9, Price: 200}, 5},
		{"match", models.SOWorkingItem{SystemQty: 6, PhysicalQty: 6, Price: 990}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Difference(tc.item); got != tc.want {
				t.Fatalf("expected difference %d, got %d", tc.want, got)
			}
			total := LineTotal(tc.item)
			if want := float64(tc.want) * tc.item.Price; total != want {
				t.Fatalf("expected line total %v, got %v", want, total)
			}
			diff := Difference(tc.item)
			if (diff < 0 && total > 0) || (diff > 0 && total < 0) || (diff == 0 && total != 0) {
				t.Fatalf("line total sign %v disagrees with difference %d", total, diff)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(models.SOWorkingItem{SystemQty: 5, PhysicalQty: 3}); got != DiffMinus {
		t.Fatalf("expected minus, got %v", got)
	}
	if got := Classify(models.SOWorkingItem{SystemQty: 5, PhysicalQty: 8}); got != DiffPlus {
		t.Fatalf("expected plus, got %v", got)
	}
	if got := Classify(models.SOWorkingItem{SystemQty: 5, PhysicalQty: 5}); got != DiffMatch {
		t.Fatalf("expected match, got %v", got)
	}
}

func TestRefreshSystemQuantitiesPreservesPhysical(t *testing.T) {
	gateway := &fakeGateway{items: map[string]*inventory.Item{
		"A": {Code: "A", SystemQty: 12},
		"B": {Code: "B", SystemQty: 40},
	}}
	engine := newTestEngine(gateway, &fakeLedger{}, &fakeSessionStore{})

	items := []models.SOWorkingItem{
		{Code: "A", SystemQty: 10, PhysicalQty: 9},
		{Code: "B", SystemQty: 35, PhysicalQty: 41},
	}
	refreshed := engine.RefreshSystemQuantities(context.Background(), items)

	if refreshed[0].SystemQty != 12 || refreshed[1].SystemQty != 40 {
		t.Fatalf("system quantities not refreshed: %+v", refreshed)
	}
	if refreshed[0].PhysicalQty != 9 || refreshed[1].PhysicalQty != 41 {
		t.Fatalf("physical quantities must be preserved: %+v", refreshed)
	}
	// input slice untouched
	if items[0].SystemQty != 10 {
		t.Fatalf("refresh mutated its input slice")
	}
}

func TestRefreshKeepsStaleQuantityOnFetchFailure(t *testing.T) {
	gateway := &fakeGateway{
		items:       map[string]*inventory.Item{"A": {Code: "A", SystemQty: 12}},
		failGetCode: "B",
	}
	engine := newTestEngine(gateway, &fakeLedger{}, &fakeSessionStore{})

	items := []models.SOWorkingItem{
		{Code: "A", SystemQty: 10, PhysicalQty: 1},
		{Code: "B", SystemQty: 35, PhysicalQty: 2},
	}
	refreshed := engine.RefreshSystemQuantities(context.Background(), items)

	if refreshed[0].SystemQty != 12 {
		t.Fatalf("expected A refreshed to 12, got %d", refreshed[0].SystemQty)
	}
	if refreshed[1].SystemQty != 35 {
		t.Fatalf("expected B to keep stale quantity 35, got %d", refreshed[1].SystemQty)
	}
	if refreshed[1].PhysicalQty != 2 {
		t.Fatalf("physical quantity must survive a failed fetch")
	}
}

func TestFinalizeWritesRecordAndReleasesSession(t *testing.T) {
	gateway := &fakeGateway{items: map[string]*inventory.Item{
		"A": {Code: "A", SystemQty: 10},
		"B": {Code: "B", SystemQty: 5},
	}}
	ledger := &fakeLedger{}
	sessions := &fakeSessionStore{session: &models.SOSession{Type: models.SOTypePartial}}
	engine := newTestEngine(gateway, ledger, sessions)

	items := []models.SOWorkingItem{
		{Code: "A", Name: "Alpha", Price: 1000, SystemQty: 10, PhysicalQty: 8},
		{Code: "B", Name: "Beta", Price: 500, SystemQty: 5, PhysicalQty: 6},
	}
	meta := FinalizeMeta{
		UserID:    "u-1",
		UserName:  "Sari",
		StartTime: time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC),
	}

	record, err := engine.Finalize(context.Background(), items, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.ID != "rec-1" {
		t.Fatalf("expected assigned id, got %q", record.ID)
	}
	if record.TotalItems != 2 {
		t.Fatalf("expected 2 items, got %d", record.TotalItems)
	}
	if record.TotalQtyDifference != -1 {
		t.Fatalf("expected qty difference -1, got %d", record.TotalQtyDifference)
	}
	if record.TotalRpDifference != -1500 {
		t.Fatalf("expected rp difference -1500, got %v", record.TotalRpDifference)
	}
	if record.DurationSeconds != 1800 {
		t.Fatalf("expected duration 1800s, got %d", record.DurationSeconds)
	}
	if len(record.Items) != 2 || record.Items[0].Difference != -2 || record.Items[1].Total != 500 {
		t.Fatalf("unexpected item snapshots: %+v", record.Items)
	}

	if gateway.items["A"].SystemQty != 8 || gateway.items["B"].SystemQty != 6 {
		t.Fatalf("corrections not applied to inventory")
	}
	if len(ledger.appended) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(ledger.appended))
	}
	if sessions.session != nil {
		t.Fatalf("session must be released after finalize")
	}
}

func TestFinalizeFailFastKeepsSessionAndLedger(t *testing.T) {
	// Scenario: the 2nd of 3 items fails. The 1st is corrected, the 3rd is
	// never attempted, no record lands and the session stays active.
	gateway := &fakeGateway{
		items: map[string]*inventory.Item{
			"A": {Code: "A", SystemQty: 10},
			"B": {Code: "B", SystemQty: 5},
			"C": {Code: "C", SystemQty: 2},
		},
		failSetCode: "B",
	}
	ledger := &fakeLedger{}
	sessions := &fakeSessionStore{session: &models.SOSession{Type: models.SOTypeGrand}}
	engine := newTestEngine(gateway, ledger, sessions)

	items := []models.SOWorkingItem{
		{Code: "A", SystemQty: 10, PhysicalQty: 9},
		{Code: "B", SystemQty: 5, PhysicalQty: 4},
		{Code: "C", SystemQty: 2, PhysicalQty: 1},
	}

	if _, err := engine.Finalize(context.Background(), items, FinalizeMeta{StartTime: time.Now()}); err == nil {
		t.Fatalf("expected finalize to fail")
	}

	if len(gateway.setCalls) != 1 || gateway.setCalls[0] != "A" {
		t.Fatalf("expected only A updated before the failure, got %v", gateway.setCalls)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("ledger must not receive a record on failure")
	}
	if sessions.session == nil {
		t.Fatalf("session must remain active on failure")
	}
}

func TestFinalizeTotalsOrderIndependent(t *testing.T) {
	items := []models.SOWorkingItem{
		{Code: "A", Price: 100, SystemQty: 10, PhysicalQty: 7},
		{Code: "B", Price: 250, SystemQty: 3, PhysicalQty: 5},
		{Code: "C", Price: 75, SystemQty: 8, PhysicalQty: 8},
	}
	reversed := []models.SOWorkingItem{items[2], items[1], items[0]}

	run := func(input []models.SOWorkingItem) models.SOHistoryRecord {
		gateway := &fakeGateway{items: map[string]*inventory.Item{
			"A": {}, "B": {}, "C": {},
		}}
		engine := newTestEngine(gateway, &fakeLedger{}, &fakeSessionStore{session: &models.SOSession{}})
		record, err := engine.Finalize(context.Background(), input, FinalizeMeta{StartTime: time.Now()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return record
	}

	forward := run(items)
	backward := run(reversed)

	if forward.TotalQtyDifference != backward.TotalQtyDifference {
		t.Fatalf("qty totals differ by order: %d vs %d", forward.TotalQtyDifference, backward.TotalQtyDifference)
	}
	if forward.TotalRpDifference != backward.TotalRpDifference {
		t.Fatalf("rp totals differ by order: %v vs %v", forward.TotalRpDifference, backward.TotalRpDifference)
	}
}
