package service

import (
	"context"
	"os"
	"sync"
	"testing"

	"gearswap/internal/database"
	"gearswap/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:       userID,
		Price:        40,
		Description:  "Corduroy overshirt",
		Size:         "L",
		Category:     "outerwear",
		ClothingType: "shirt",
		Condition:    "excellent",
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("creating test post: %v", err)
	}
	return post
}

// fakeChatClient records the last request and replies with a canned answer.
type fakeChatClient struct {
	mu       sync.Mutex
	reply    string
	err      error
	model    string
	calls    int
	messages []ChatMessage
}

func (f *fakeChatClient) Complete(_ context.Context, model string, messages []ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.model = model
	f.calls++
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakePusher collects pushed payloads per user.
type fakePusher struct {
	mu     sync.Mutex
	pushed map[uint][][]byte
}

func newFakePusher() *fakePusher {
	return &fakePusher{pushed: make(map[uint][][]byte)}
}

func (f *fakePusher) PushToUser(userID uint, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed[userID] = append(f.pushed[userID], payload)
}

// fakeSender captures outbound email instead of talking SMTP.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
