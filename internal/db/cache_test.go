package db

import (
	"testing"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

func item(id, name, barcode string) models.CachedItem {
	return models.CachedItem{ID: id, Name: name, Barcode: barcode, Unit: "pcs", UpdatedAt: time.Now().UTC()}
}

func TestReplaceItems_WholesaleSwap(t *testing.T) {
	db := setupDB(t)

	if err := db.ReplaceItems([]models.CachedItem{item("i1", "Flour", "111"), item("i2", "Sugar", "222")}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := db.ReplaceItems([]models.CachedItem{item("i3", "Salt", "333")}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	items, err := db.ListItems()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "i3" {
		t.Fatalf("old snapshot leaked through: %+v", items)
	}
}

func TestReplaceItems_RollbackKeepsOldSnapshot(t *testing.T) {
	db := setupDB(t)

	if err := db.ReplaceItems([]models.CachedItem{item("i1", "Flour", "111")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before, err := db.LastRefreshedAt(CacheItems)
	if err != nil {
		t.Fatalf("marker: %v", err)
	}

	// duplicate primary key forces the insert step to fail after the clear
	bad := []models.CachedItem{item("i2", "Sugar", "222"), item("i2", "Sugar again", "223")}
	if err := db.ReplaceItems(bad); err == nil {
		t.Fatal("expected replace to fail on duplicate id")
	}

	items, err := db.ListItems()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "i1" {
		t.Fatalf("rollback lost the pre-refresh snapshot: %+v", items)
	}

	after, err := db.LastRefreshedAt(CacheItems)
	if err != nil {
		t.Fatalf("marker: %v", err)
	}
	if !after.Equal(*before) {
		t.Fatal("refresh marker moved despite rollback")
	}
}

func TestGetItemByBarcode(t *testing.T) {
	db := setupDB(t)

	db.ReplaceItems([]models.CachedItem{item("i1", "Flour", "111")})

	got, err := db.GetItemByBarcode("111")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil || got.ID != "i1" {
		t.Fatalf("got %+v, want i1", got)
	}

	missing, err := db.GetItemByBarcode("999")
	if err != nil {
		t.Fatalf("lookup missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown barcode resolved: %+v", missing)
	}
}

func TestDedupTargets_ExplicitSupersedesRecurring(t *testing.T) {
	now := time.Now().UTC()
	day := "2026-08-31" // a Monday
	targets := []models.CachedTarget{
		{ID: "t1", ItemID: "i1", Quantity: 50, Date: day, Weekday: -1, UpdatedAt: now},
		{ID: "t2", ItemID: "i1", Quantity: 30, Weekday: 1, UpdatedAt: now}, // superseded
		{ID: "t3", ItemID: "i2", Quantity: 20, Weekday: 1, UpdatedAt: now}, // no explicit rival
	}

	kept := DedupTargets(targets, day)
	if len(kept) != 2 {
		t.Fatalf("got %d targets, want 2: %+v", len(kept), kept)
	}
	ids := map[string]bool{}
	for _, k := range kept {
		ids[k.ID] = true
	}
	if !ids["t1"] || !ids["t3"] || ids["t2"] {
		t.Fatalf("wrong survivors: %+v", kept)
	}
}

func TestReplaceTargets_AppliesDedup(t *testing.T) {
	db := setupDB(t)

	now := time.Now().UTC()
	day := "2026-08-31"
	err := db.ReplaceTargets([]models.CachedTarget{
		{ID: "t1", ItemID: "i1", Quantity: 50, Date: day, Weekday: -1, UpdatedAt: now},
		{ID: "t2", ItemID: "i1", Quantity: 30, Weekday: 1, UpdatedAt: now},
	}, day)
	if err != nil {
		t.Fatalf("replace targets: %v", err)
	}

	targets, err := db.ListTargets()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(targets) != 1 || targets[0].ID != "t1" {
		t.Fatalf("recurring target survived alongside explicit: %+v", targets)
	}
}

func TestLastRefreshedAt_NeverRefreshed(t *testing.T) {
	db := setupDB(t)

	ts, err := db.LastRefreshedAt(CacheTargets)
	if err != nil {
		t.Fatalf("marker: %v", err)
	}
	if ts != nil {
		t.Fatalf("marker exists before any refresh: %v", ts)
	}
}

func TestReplaceRecentEvents(t *testing.T) {
	db := setupDB(t)

	now := time.Now().UTC()
	err := db.ReplaceRecentEvents([]models.CachedRecentEvent{
		{ID: "e1", ItemID: "i1", Quantity: 10, EventDate: "2026-08-31", UpdatedAt: now},
		{ID: "e2", ItemID: "i2", Quantity: 4, EventDate: "2026-08-30", UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("replace events: %v", err)
	}

	events, err := db.ListRecentEvents()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].EventDate != "2026-08-31" {
		t.Fatalf("expected newest first, got %+v", events[0])
	}
}
