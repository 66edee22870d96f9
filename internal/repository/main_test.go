package repository

import (
	"os"
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

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// A single connection keeps the in-memory database alive for the test.
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
		FirstName: "Test",
		LastName:  "User",
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed-password",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, mutate ...func(*models.Post)) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:       userID,
		Price:        25.50,
		Description:  "Vintage denim jacket",
		Size:         "M",
		Category:     "outerwear",
		ClothingType: "jacket",
		Condition:    "good",
	}
	for _, m := range mutate {
		m(post)
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("creating test post: %v", err)
	}
	return post
}
