package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ncaceres/cardbot/internal/domain"
	"github.com/ncaceres/cardbot/internal/store"
)

func newTestClient(t *testing.T) *store.BoltClient {
	t.Helper()
	c, err := store.NewBoltClient(store.Options{Path: filepath.Join(t.TempDir(), "records.db")})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { c.Close(context.Background()) })
	return c
}

func TestLoadMissingRecordReturnsZero(t *testing.T) {
	c := newTestClient(t)

	record, err := c.LoadRecord(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.UserID != "u1" {
		t.Fatalf("expected user id u1, got %q", record.UserID)
	}
	if record.CardsGenerated != 0 || record.BinLookups != 0 {
		t.Fatalf("expected zero counters, got %+v", record)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	c := newTestClient(t)

	saved := domain.UserRecord{
		UserID:         "u1",
		CardsGenerated: 30,
		BinLookups:     2,
		LastCommandAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := c.SaveRecord(context.Background(), saved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := c.LoadRecord(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.CardsGenerated != 30 || loaded.BinLookups != 2 {
		t.Fatalf("unexpected record: %+v", loaded)
	}
	if !loaded.LastCommandAt.Equal(saved.LastCommandAt) {
		t.Fatalf("timestamp mismatch: %v", loaded.LastCommandAt)
	}
}

func TestSaveRequiresUserID(t *testing.T) {
	c := newTestClient(t)

	if err := c.SaveRecord(context.Background(), domain.UserRecord{}); err == nil {
		t.Fatal("expected error for record without user id")
	}
}

func TestVerifyConnectivity(t *testing.T) {
	c := newTestClient(t)

	if err := c.VerifyConnectivity(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
