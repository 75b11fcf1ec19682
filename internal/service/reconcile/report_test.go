package reconcile

import (
	"context"
	"testing"

	"opnamecore/internal/domain/models"
	"opnamecore/pkg/clients/inventory"
)

func TestSummarizeAggregates(t *testing.T) {
	gateway := &fakeGateway{catalogSize: 40, items: map[string]*inventory.Item{}}
	engine := newTestEngine(gateway, &fakeLedger{}, &fakeSessionStore{})

	items := []models.SOWorkingItem{
		{Code: "A", Price: 100, SystemQty: 10, PhysicalQty: 7},  // -3
		{Code: "B", Price: 250, SystemQty: 3, PhysicalQty: 5},   // +2
		{Code: "C", Price: 400, SystemQty: 10, PhysicalQty: 10}, // 0
		{Code: "D", Price: 50, SystemQty: 9, PhysicalQty: 4},    // -5
	}

	summary, err := engine.Summarize(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalItems != 4 {
		t.Fatalf("expected 4 items, got %d", summary.TotalItems)
	}
	if summary.TotalQtyDifference != -6 {
		t.Fatalf("expected qty difference -6, got %d", summary.TotalQtyDifference)
	}
	if want := -3.0*100 + 2*250 - 5*50; summary.TotalRpDifference != want {
		t.Fatalf("expected rp difference %v, got %v", want, summary.TotalRpDifference)
	}
	if summary.LargestMinusItem == nil || summary.LargestMinusItem.Code != "D" {
		t.Fatalf("expected D as largest minus, got %+v", summary.LargestMinusItem)
	}
	if summary.LargestPlusItem == nil || summary.LargestPlusItem.Code != "B" {
		t.Fatalf("expected B as largest plus, got %+v", summary.LargestPlusItem)
	}
	if want := 4.0 / 40.0; summary.PercentageSO != want {
		t.Fatalf("expected percentage %v, got %v", want, summary.PercentageSO)
	}
}

func TestSummarizeLargestTieGoesToFirstOccurrence(t *testing.T) {
	gateway := &fakeGateway{catalogSize: 10, items: map[string]*inventory.Item{}}
	engine := newTestEngine(gateway, &fakeLedger{}, &fakeSessionStore{})

	items := []models.SOWorkingItem{
		{Code: "A", SystemQty: 5, PhysicalQty: 2}, // -3
		{Code: "B", SystemQty: 6, PhysicalQty: 3}, // -3, same magnitude
	}

	summary, err := engine.Summarize(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.LargestMinusItem.Code != "A" {
		t.Fatalf("tie must go to first occurrence, got %s", summary.LargestMinusItem.Code)
	}
}

func TestSortForDisplay(t *testing.T) {
	items := []models.SOWorkingItem{
		{Code: "1", Category: "Snacks", Name: "Keripik"},
		{Code: "2", Category: "Drinks", Name: "Teh Botol"},
		{Code: "3", Category: "Drinks", Name: "Air Mineral"},
		{Code: "4", Category: "Snacks", Name: "Biskuit"},
	}

	sorted := SortForDisplay(items)

	wantOrder := []string{"3", "2", "4", "1"}
	for i, want := range wantOrder {
		if sorted[i].Code != want {
			t.Fatalf("position %d: expected %s, got %s (full: %+v)", i, want, sorted[i].Code, sorted)
		}
	}
	if items[0].Code != "1" {
		t.Fatalf("sort must not mutate its input")
	}
}

func TestMismatchGroupsPartition(t *testing.T) {
	items := []models.SOWorkingItem{
		{Code: "P1", Category: "B", Name: "b", SystemQty: 1, PhysicalQty: 3},
		{Code: "M1", Category: "B", Name: "a", SystemQty: 5, PhysicalQty: 4},
		{Code: "E1", Category: "A", Name: "x", SystemQty: 2, PhysicalQty: 2},
		{Code: "M2", Category: "A", Name: "c", SystemQty: 9, PhysicalQty: 1},
		{Code: "P2", Category: "A", Name: "d", SystemQty: 0, PhysicalQty: 2},
	}

	grouped := MismatchGroups(items)

	wantOrder := []string{"M2", "M1", "P2", "P1"}
	if len(grouped) != len(wantOrder) {
		t.Fatalf("expected %d mismatches, got %d", len(wantOrder), len(grouped))
	}
	for i, want := range wantOrder {
		if grouped[i].Code != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, grouped[i].Code)
		}
	}
}
