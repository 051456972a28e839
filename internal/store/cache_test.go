package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCacheRepository_SetGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Cache()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := repo.Set(ctx, "recipe:arrabiata", []byte(`{"name":"Spicy Arrabiata Penne"}`), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := repo.Get(ctx, "recipe:arrabiata")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"name":"Spicy Arrabiata Penne"}` {
		t.Errorf("Get = %s", got)
	}

	// Overwrite
	if err := repo.Set(ctx, "recipe:arrabiata", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	got, err = repo.Get(ctx, "recipe:arrabiata")
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("Get after overwrite = %s, want v2", got)
	}
}

func TestCacheRepository_Expiry(t *testing.T) {
	s := newTestStore(t)
	repo := s.Cache()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if err := repo.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, err := repo.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := repo.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestCacheRepository_Purge(t *testing.T) {
	s := newTestStore(t)
	repo := s.Cache()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if err := repo.Set(ctx, "short", []byte("1"), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(ctx, "long", []byte("2"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(time.Minute)
	n, err := repo.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Purge removed %d entries, want 1", n)
	}
	if _, err := repo.Get(ctx, "long"); err != nil {
		t.Errorf("long entry should survive purge: %v", err)
	}
}
