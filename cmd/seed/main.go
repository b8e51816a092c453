package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/ninahidul9/connect-chat/internal/config"
	"github.com/ninahidul9/connect-chat/internal/database"
	"github.com/ninahidul9/connect-chat/internal/models"
)

// Seeds a handful of demo users, a friendship between the first two, and a
// short conversation. Intended for local development only.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting database seeding...")

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	demoUsers := []struct {
		email       string
		username    string
		displayName string
	}{
		{"alice@example.com", "alice", "Alice Nguyen"},
		{"bob@example.com", "bob", "Bob Tran"},
		{"charlie@example.com", "charlie", "Charlie Le"},
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	ids := make([]string, 0, len(demoUsers))
	for _, u := range demoUsers {
		id := uuid.NewString()
		acct := models.Account{ID: id, Email: u.email, PasswordHash: string(hash)}
		profile := models.Profile{
			ID:          id,
			Username:    u.username,
			DisplayName: u.displayName,
			LastSeen:    time.Now().UTC(),
		}
		if err := db.Create(&acct).Error; err != nil {
			slog.Warn("User might already exist", "username", u.username, "error", err)
			continue
		}
		if err := db.Create(&profile).Error; err != nil {
			slog.Warn("Profile creation failed", "username", u.username, "error", err)
			continue
		}
		ids = append(ids, id)
		slog.Info("Created user", "username", u.username, "id", id)
	}

	if len(ids) < 2 {
		slog.Info("Seeding finished (users already present)")
		return
	}

	alice, bob := ids[0], ids[1]
	friendships := []models.Friendship{
		{ID: uuid.NewString(), UserID: alice, FriendID: bob},
		{ID: uuid.NewString(), UserID: bob, FriendID: alice},
	}
	if err := db.Create(&friendships).Error; err != nil {
		slog.Warn("Friendship seeding failed", "error", err)
	}

	now := time.Now().UTC()
	messages := []models.Message{
		{ID: uuid.NewString(), SenderID: alice, ReceiverID: bob, Content: "hey bob!", IsRead: true, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: uuid.NewString(), SenderID: bob, ReceiverID: alice, Content: "hi alice, how's it going?", IsRead: true, CreatedAt: now.Add(-1 * time.Minute)},
		{ID: uuid.NewString(), SenderID: alice, ReceiverID: bob, Content: "pretty good, trying the new chat", IsRead: false, CreatedAt: now},
	}
	if err := db.Create(&messages).Error; err != nil {
		slog.Warn("Message seeding failed", "error", err)
	}

	slog.Info("Seeding completed")
}
