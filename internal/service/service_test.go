package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/directory"
	"github.com/user-directory-api/internal/mocks"
	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/spreadsheet"
	"github.com/user-directory-api/internal/validation"
)

const sessionID = "test-session"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestServices(t *testing.T, delay, timeout time.Duration) (*service.Services, *directory.Registry, *mocks.MockSnapshotRepository) {
	t.Helper()

	cfg := config.Default()
	cfg.Directory.CreateDelay = delay
	cfg.Directory.CreateTimeout = timeout
	cfg.Directory.SeedDemo = true

	repo := mocks.NewMockSnapshotRepository()
	registry := directory.NewRegistry(repo, time.Hour, zerolog.Nop())
	return service.NewServices(registry, cfg, zerolog.Nop()), registry, repo
}

func storeFor(t *testing.T, registry *directory.Registry) *directory.Store {
	t.Helper()
	store, err := registry.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Get store failed: %v", err)
	}
	return store
}

func validForm() *validation.UserForm {
	return &validation.UserForm{
		Name:  "Alice",
		Email: "alice@example.com",
		Photo: &validation.Photo{Filename: "alice.png", Data: pngBytes},
	}
}

func TestImportService_SingleRowCSV(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)

	n, err := svcs.Import.Import(context.Background(), sessionID, &service.Upload{
		Filename:    "users.csv",
		ContentType: "text/csv",
		Data:        []byte("Name,Email\nAlice,alice@example.com\n"),
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Expected 1 imported user, got %d", n)
	}

	users := storeFor(t, registry).Users()
	if len(users) != 1 {
		t.Fatalf("Expected 1 user in store, got %d", len(users))
	}
	u := users[0]
	if u.Name != "Alice" || u.Email != "alice@example.com" {
		t.Errorf("Unexpected user: %+v", u)
	}
	if !strings.HasPrefix(u.ProfilePhoto, service.DefaultAvatarURL+"?img=") {
		t.Errorf("Expected placeholder photo, got %q", u.ProfilePhoto)
	}
	if u.Selected {
		t.Error("Imported user should not be selected")
	}
	if u.ID == "" {
		t.Error("Imported user should have an id")
	}
}

func TestImportService_ManyRowsUniqueIDs(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)

	var b strings.Builder
	b.WriteString("Name,Email,Profile Photo URL\n")
	for i := 0; i < 50; i++ {
		photo := ""
		if i%2 == 0 {
			photo = fmt.Sprintf("https://example.com/%d.png", i)
		}
		fmt.Fprintf(&b, "User %d,user%d@example.com,%s\n", i, i, photo)
	}

	n, err := svcs.Import.Import(context.Background(), sessionID, &service.Upload{
		Filename: "users.csv",
		Data:     []byte(b.String()),
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 50 {
		t.Fatalf("Expected 50 users, got %d", n)
	}

	seen := make(map[string]bool)
	for i, u := range storeFor(t, registry).Users() {
		if seen[u.ID] {
			t.Errorf("Duplicate id %s", u.ID)
		}
		seen[u.ID] = true
		if u.ProfilePhoto == "" {
			t.Errorf("User %d has an empty photo", i)
		}
		if i%2 == 0 && u.ProfilePhoto != fmt.Sprintf("https://example.com/%d.png", i) {
			t.Errorf("User %d: provided photo not kept, got %q", i, u.ProfilePhoto)
		}
	}
}

func TestImportService_EmptyImport(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)
	store := storeFor(t, registry)
	store.ReplaceAll(service.DemoUsers(3))

	n, err := svcs.Import.Import(context.Background(), sessionID, &service.Upload{
		Filename: "users.csv",
		Data:     []byte("Name,Email\n"),
	})
	if err != nil {
		t.Fatalf("Expected no error for header-only file, got %v", err)
	}
	if n != 0 || store.Len() != 0 {
		t.Errorf("Expected empty import to empty the directory, got n=%d len=%d", n, store.Len())
	}
}

func TestImportService_RejectsFileKind(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)
	store := storeFor(t, registry)
	store.ReplaceAll(service.DemoUsers(2))
	before := store.Snapshot()

	_, err := svcs.Import.Import(context.Background(), sessionID, &service.Upload{
		Filename:    "photo.png",
		ContentType: "image/png",
		Data:        []byte("Name,Email\nEve,eve@example.com\n"),
	})
	if !errors.Is(err, spreadsheet.ErrInvalidFileKind) {
		t.Fatalf("Expected ErrInvalidFileKind, got %v", err)
	}

	after := store.Snapshot()
	if len(after.Users) != len(before.Users) || after.Error != nil {
		t.Errorf("Store should be unchanged, got %+v", after)
	}
}

func TestImportService_ParseFailureLeavesUsers(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)
	store := storeFor(t, registry)
	store.ReplaceAll(service.DemoUsers(2))

	_, err := svcs.Import.Import(context.Background(), sessionID, &service.Upload{
		Filename: "users.xlsx",
		Data:     pngBytes,
	})
	if !errors.Is(err, spreadsheet.ErrParse) {
		t.Fatalf("Expected ErrParse, got %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Users) != 2 || snap.Users[0].ID != "user-1" {
		t.Errorf("Users should be untouched, got %+v", snap.Users)
	}
	if snap.Loading {
		t.Error("Loading should be reset after a failed import")
	}
	if snap.Error != nil {
		t.Errorf("Parse failure should not be stored on the directory, got %q", *snap.Error)
	}
}

func TestUserService_CreateAppends(t *testing.T) {
	svcs, registry, repo := newTestServices(t, 5*time.Millisecond, time.Second)
	store := storeFor(t, registry)
	store.ReplaceAll(service.DemoUsers(2))
	before := store.Users()

	user, err := svcs.Users.Create(context.Background(), sessionID, validForm())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	users := store.Users()
	if len(users) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(users))
	}
	for i := range before {
		if users[i] != before[i] {
			t.Errorf("Existing user %d changed", i)
		}
	}
	if users[2].ID != user.ID || users[2].ID == "" {
		t.Errorf("Expected appended user with fresh id, got %+v", users[2])
	}
	if users[2].Selected {
		t.Error("New user should not be selected")
	}
	if !strings.HasPrefix(users[2].ProfilePhoto, "data:image/png;base64,") {
		t.Errorf("Expected photo as data URI, got %.40s", users[2].ProfilePhoto)
	}

	if sub := svcs.Users.Submission(sessionID); sub.State != models.SubmissionSucceeded {
		t.Errorf("Expected success, got %s", sub.State)
	}
	if sub := svcs.Users.Submission(sessionID); sub.State != models.SubmissionIdle {
		t.Errorf("Expected idle after reading the result, got %s", sub.State)
	}
	if repo.SaveCount() == 0 {
		t.Error("Expected the session to be saved")
	}
}

func TestUserService_CreateValidationFailure(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)

	form := validForm()
	form.Email = "nope"
	_, err := svcs.Users.Create(context.Background(), sessionID, form)

	var verrs *validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected validation errors, got %v", err)
	}
	if storeFor(t, registry).Len() != 0 {
		t.Error("Store should be untouched")
	}
	if sub := svcs.Users.Submission(sessionID); sub.State != models.SubmissionIdle {
		t.Errorf("Validation failure should not start a submission, got %s", sub.State)
	}
}

func TestUserService_CreateTimeout(t *testing.T) {
	svcs, registry, repo := newTestServices(t, time.Second, 20*time.Millisecond)
	store := storeFor(t, registry)

	_, err := svcs.Users.Create(context.Background(), sessionID, validForm())

	var subErr *service.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("Expected SubmissionError, got %v", err)
	}
	if !errors.Is(err, service.ErrSubmission) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected error to wrap ErrSubmission and DeadlineExceeded, got %v", err)
	}
	snap := store.Snapshot()
	if len(snap.Users) != 0 || snap.Loading || snap.Error != nil {
		t.Errorf("Store should be untouched after a failed submission, got %+v", snap)
	}
	if repo.SaveCount() != 0 {
		t.Errorf("Expected no snapshot saves, got %d", repo.SaveCount())
	}

	sub := svcs.Users.Submission(sessionID)
	if sub.State != models.SubmissionFailed || sub.Error != service.SubmissionErrorMessage {
		t.Errorf("Expected failure with message, got %+v", sub)
	}
}

func TestUserService_CreateCancelled(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Second, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svcs.Users.Create(ctx, sessionID, validForm())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if storeFor(t, registry).Len() != 0 {
		t.Error("Store should be untouched after a cancelled submission")
	}
}

func TestUserService_ConcurrentSubmissionRejected(t *testing.T) {
	svcs, registry, _ := newTestServices(t, 300*time.Millisecond, time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := svcs.Users.Create(context.Background(), sessionID, validForm())
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for svcs.Users.Submission(sessionID).State != models.SubmissionSubmitting {
		if time.Now().After(deadline) {
			t.Fatal("First submission never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, err := svcs.Users.Create(context.Background(), sessionID, validForm())
	if !errors.Is(err, service.ErrSubmissionInProgress) {
		t.Errorf("Expected ErrSubmissionInProgress, got %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("First submission failed: %v", err)
	}
	if storeFor(t, registry).Len() != 1 {
		t.Errorf("Expected exactly one user, got %d", storeFor(t, registry).Len())
	}
}

func TestUserService_CreateFromRequestDefaultAvatar(t *testing.T) {
	svcs, _, _ := newTestServices(t, time.Millisecond, time.Second)

	user, err := svcs.Users.CreateFromRequest(context.Background(), sessionID, &models.CreateUserRequest{
		Name:  "Bob",
		Email: "bob@example.com",
	})
	if err != nil {
		t.Fatalf("CreateFromRequest failed: %v", err)
	}
	if user.ProfilePhoto != service.DefaultAvatarURL {
		t.Errorf("Expected default avatar, got %q", user.ProfilePhoto)
	}
}

func TestUserService_UpdateAndSelect(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)
	ctx := context.Background()
	store := storeFor(t, registry)
	store.ReplaceAll(service.DemoUsers(3))

	updated := store.Users()[1]
	updated.Name = "Renamed"
	if err := svcs.Users.Update(ctx, sessionID, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if store.Users()[1].Name != "Renamed" {
		t.Error("Expected renamed user")
	}

	if err := svcs.Users.Update(ctx, sessionID, models.User{ID: "missing"}); !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}

	if err := svcs.Users.SetSelected(ctx, sessionID, "user-3", true); err != nil {
		t.Fatalf("SetSelected failed: %v", err)
	}
	if !store.Users()[2].Selected {
		t.Error("Expected user-3 selected")
	}
	if err := svcs.Users.SetSelected(ctx, sessionID, "missing", true); !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_SeedDemo(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)
	ctx := context.Background()

	seeded, err := svcs.Users.SeedDemo(ctx, sessionID)
	if err != nil || !seeded {
		t.Fatalf("Expected demo seed, got seeded=%v err=%v", seeded, err)
	}

	state, _ := svcs.Users.List(ctx, sessionID)
	if len(state.Users) != service.DemoUserCount {
		t.Fatalf("Expected %d demo users, got %d", service.DemoUserCount, len(state.Users))
	}
	if state.Users[0].ID != "user-1" || state.Users[0].Email != "user1@example.com" {
		t.Errorf("Unexpected first demo user: %+v", state.Users[0])
	}
	if state.Loading {
		t.Error("Loading should be reset after seeding")
	}

	// Non-empty directories are left alone
	storeFor(t, registry).SetSelected("user-1", true)
	seeded, _ = svcs.Users.SeedDemo(ctx, sessionID)
	if seeded {
		t.Error("Expected no reseed for a non-empty directory")
	}
	if !storeFor(t, registry).Users()[0].Selected {
		t.Error("Reseed must not reset the directory")
	}
}

func TestExportService_Export(t *testing.T) {
	svcs, registry, _ := newTestServices(t, time.Millisecond, time.Second)
	storeFor(t, registry).ReplaceAll(service.DemoUsers(3))

	data, err := svcs.Export.Export(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	rows, err := spreadsheet.Decode(data)
	if err != nil {
		t.Fatalf("Decoding export failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if models.Value(rows[2].Name) != "User 3" || models.Value(rows[2].Email) != "user3@example.com" {
		t.Errorf("Unexpected exported row: name=%q email=%q", models.Value(rows[2].Name), models.Value(rows[2].Email))
	}
}
