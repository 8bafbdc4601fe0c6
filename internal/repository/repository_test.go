package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/repository"
)

func TestMemoryRepository_SaveLoad(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	snap := &models.Snapshot{
		SessionID: "session-1",
		Users: []models.User{
			{ID: "user-1", Name: "User 1", Email: "user1@example.com"},
			{ID: "user-2", Name: "User 2", Email: "user2@example.com"},
		},
		UpdatedAt: time.Now(),
	}
	if err := repo.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Mutating the caller's slice must not leak into the repository
	snap.Users[0].Name = "changed"

	loaded, err := repo.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Snapshot should be found")
	}
	if len(loaded.Users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(loaded.Users))
	}
	if loaded.Users[0].Name != "User 1" {
		t.Errorf("Expected stored copy 'User 1', got %q", loaded.Users[0].Name)
	}
}

func TestMemoryRepository_LoadMissing(t *testing.T) {
	repo := repository.NewMemory()

	loaded, err := repo.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil snapshot for unknown session")
	}
}

func TestMemoryRepository_PurgeExpired(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	now := time.Now()

	repo.Save(ctx, &models.Snapshot{SessionID: "old", UpdatedAt: now.Add(-48 * time.Hour)})
	repo.Save(ctx, &models.Snapshot{SessionID: "fresh", UpdatedAt: now})

	purged, err := repo.PurgeExpired(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("Expected 1 purged, got %d", purged)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Expected 1 remaining, got %d", count)
	}
	if s, _ := repo.Load(ctx, "fresh"); s == nil {
		t.Error("Fresh snapshot should survive purge")
	}
}
