package service

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/user-directory-api/internal/models"
)

const (
	// DefaultAvatarURL is used for users created without a photo
	DefaultAvatarURL = "https://i.pravatar.cc/150"

	// AvatarCount is the number of distinct placeholder avatars
	AvatarCount = 70

	// DemoUserCount is the size of the demo directory
	DemoUserCount = 10
)

// IDGenerator returns a fresh unique user id
type IDGenerator func() string

// AvatarPicker returns a placeholder photo URL
type AvatarPicker func() string

// NewID generates a random UUID
func NewID() string {
	return uuid.New().String()
}

// PlaceholderAvatar returns the placeholder photo with index n (1..AvatarCount)
func PlaceholderAvatar(n int) string {
	return fmt.Sprintf("%s?img=%d", DefaultAvatarURL, n)
}

// RandomAvatar picks one of the placeholder photos
func RandomAvatar() string {
	return PlaceholderAvatar(rand.Intn(AvatarCount) + 1)
}

// NormalizeRows turns imported rows into users. Every row yields a user, even
// one with a blank name or email; only a missing photo is filled in.
func NormalizeRows(rows []models.ImportedRow, newID IDGenerator, avatar AvatarPicker) []models.User {
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		photo := models.Value(row.ProfilePhoto)
		if strings.TrimSpace(photo) == "" {
			photo = avatar()
		}
		users = append(users, models.User{
			ID:           newID(),
			Name:         models.Value(row.Name),
			Email:        models.Value(row.Email),
			ProfilePhoto: photo,
			Selected:     false,
		})
	}
	return users
}

// DemoUsers builds the demo directory shown to a new session
func DemoUsers(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		id := i + 1
		users[i] = models.User{
			ID:           fmt.Sprintf("user-%d", id),
			Name:         fmt.Sprintf("User %d", id),
			Email:        fmt.Sprintf("user%d@example.com", id),
			ProfilePhoto: PlaceholderAvatar((id-1)%AvatarCount + 1),
		}
	}
	return users
}
