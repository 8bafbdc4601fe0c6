package directory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/user-directory-api/internal/models"
)

func sampleUsers(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{
			ID:    fmt.Sprintf("user-%d", i+1),
			Name:  fmt.Sprintf("User %d", i+1),
			Email: fmt.Sprintf("user%d@example.com", i+1),
		}
	}
	return users
}

func TestStore_ReplaceAllAndAppendKeepOrder(t *testing.T) {
	store := NewStore(nil)
	store.ReplaceAll(sampleUsers(3))
	store.Append(models.User{ID: "new", Name: "New"})

	users := store.Users()
	want := []string{"user-1", "user-2", "user-3", "new"}
	if len(users) != len(want) {
		t.Fatalf("Expected %d users, got %d", len(want), len(users))
	}
	for i, id := range want {
		if users[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, users[i].ID)
		}
	}
}

func TestStore_ReplaceAllCopiesInput(t *testing.T) {
	input := sampleUsers(2)
	store := NewStore(nil)
	store.ReplaceAll(input)

	input[0].Name = "mutated"
	if store.Users()[0].Name != "User 1" {
		t.Error("Store should not alias the caller's slice")
	}

	out := store.Users()
	out[1].Name = "mutated"
	if store.Users()[1].Name != "User 2" {
		t.Error("Users() should return a copy")
	}
}

func TestStore_ReplaceIfEmpty(t *testing.T) {
	store := NewStore(nil)
	notified := 0
	store.Subscribe(func(models.DirectoryState) { notified++ })

	if !store.ReplaceIfEmpty(sampleUsers(2)) {
		t.Fatal("Expected an empty store to be filled")
	}
	if store.ReplaceIfEmpty(sampleUsers(5)) {
		t.Error("Expected a non-empty store to be left alone")
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 users, got %d", store.Len())
	}
	if notified != 1 {
		t.Errorf("Expected 1 notification, got %d", notified)
	}
}

func TestStore_ReplaceIfEmptyRacingImport(t *testing.T) {
	imported := []models.User{{ID: "imported"}}

	for i := 0; i < 50; i++ {
		store := NewStore(nil)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.ReplaceIfEmpty(sampleUsers(10))
		}()
		go func() {
			defer wg.Done()
			store.ReplaceAll(imported)
		}()
		wg.Wait()

		// The seed either ran first and was replaced, or saw the import and did nothing
		users := store.Users()
		if len(users) != 1 || users[0].ID != "imported" {
			t.Fatalf("Seed overwrote an import: got %d users", len(users))
		}
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(sampleUsers(3))

	if !store.Update(models.User{ID: "user-2", Name: "Renamed", Email: "r@example.com"}) {
		t.Fatal("Update should report a match")
	}
	users := store.Users()
	if users[1].Name != "Renamed" || users[1].Email != "r@example.com" {
		t.Errorf("Expected replaced record, got %+v", users[1])
	}
	if users[0].Name != "User 1" || users[2].Name != "User 3" {
		t.Error("Other records should be untouched")
	}

	if store.Update(models.User{ID: "missing"}) {
		t.Error("Update of unknown id should report no match")
	}
	if store.Len() != 3 {
		t.Errorf("Unknown id update must not append, got %d users", store.Len())
	}
}

func TestStore_SetSelectedRoundTrip(t *testing.T) {
	store := NewStore(sampleUsers(3))
	before := store.Users()

	store.SetSelected("user-2", true)
	if !store.Users()[1].Selected {
		t.Fatal("Expected user-2 selected")
	}

	store.SetSelected("user-2", false)
	after := store.Users()
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("Record %d changed: before %+v, after %+v", i, before[i], after[i])
		}
	}

	if store.SetSelected("missing", true) {
		t.Error("SetSelected on unknown id should report no match")
	}
}

func TestStore_LoadingAndError(t *testing.T) {
	store := NewStore(nil)

	store.SetLoading(true)
	msg := "Error processing file"
	store.SetError(&msg)

	snap := store.Snapshot()
	if !snap.Loading {
		t.Error("Expected loading true")
	}
	if snap.Error == nil || *snap.Error != msg {
		t.Errorf("Expected error %q, got %v", msg, snap.Error)
	}

	// The store keeps its own copy of the message
	msg = "changed"
	if *store.Snapshot().Error != "Error processing file" {
		t.Error("SetError should copy the message")
	}

	store.SetError(nil)
	if store.Snapshot().Error != nil {
		t.Error("Expected error cleared")
	}
}

func TestStore_SubscribeAndUnsubscribe(t *testing.T) {
	store := NewStore(nil)

	var got []models.DirectoryState
	unsubscribe := store.Subscribe(func(s models.DirectoryState) {
		got = append(got, s)
	})

	store.Append(models.User{ID: "a"})
	store.SetSelected("a", true)
	store.SetSelected("missing", true) // no-op, no notification
	store.SetLoading(false)            // unchanged, no notification

	if len(got) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(got))
	}
	if !got[1].Users[0].Selected {
		t.Error("Second notification should carry the selection")
	}

	unsubscribe()
	unsubscribe()
	store.Append(models.User{ID: "b"})
	if len(got) != 2 {
		t.Errorf("Expected no notifications after unsubscribe, got %d", len(got))
	}
}

func TestStore_ListenerCanReadSnapshot(t *testing.T) {
	store := NewStore(nil)

	var seen int
	store.Subscribe(func(models.DirectoryState) {
		seen = store.Len()
	})
	store.ReplaceAll(sampleUsers(4))

	if seen != 4 {
		t.Errorf("Expected listener to read 4 users, got %d", seen)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append(models.User{ID: fmt.Sprintf("u-%d", i)})
		}(i)
	}
	wg.Wait()

	if store.Len() != 50 {
		t.Errorf("Expected 50 users, got %d", store.Len())
	}
}
