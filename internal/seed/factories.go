// Package seed creates development and demo data. Not used in production.
package seed

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"gearswap/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	clothingTypes = []string{"jacket", "shirt", "t-shirt", "jeans", "dress", "skirt", "sweater", "hoodie", "boots", "sneakers", "coat", "scarf"}
	categories    = []string{"outerwear", "tops", "bottoms", "dresses", "footwear", "accessories"}
	sizes         = []string{"XS", "S", "M", "L", "XL"}
	conditions    = []string{"new", "like new", "good", "fair", "worn"}
	tagPool       = []string{"vintage", "y2k", "streetwear", "minimal", "grunge", "preppy", "workwear", "festival", "formal", "cottagecore", "athleisure", "denim"}
)

// Factory builds domain entities and persists them.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// Options control volume and speed trade-offs for a seeding run.
type Options struct {
	Users        int
	PostsPerUser int
	LikesPerUser int
	// SkipBcrypt stores a plain password; only for fast local seeding.
	SkipBcrypt bool
	// MaxDays spreads listing dates over this many days back. Defaults to 90.
	MaxDays int
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (f *Factory) pick(values []string) string {
	return values[f.rng.Intn(len(values))]
}

// CreateUser persists a user with a known password ("password123").
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		FirstName:   gofakeit.FirstName(),
		LastName:    gofakeit.LastName(),
		Username:    fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:       gofakeit.Email(),
		ProfileInfo: gofakeit.Sentence(10),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProfile persists a public profile for user.
func (f *Factory) CreateProfile(user *models.User) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		UserID:   user.ID,
		Bio:      gofakeit.Sentence(12),
		Location: fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// CreatePost persists a listing owned by user with randomized clothing fields
// and a DatePosted spread over the configured window.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	tagCount := 1 + f.rng.Intn(3)
	tags := make([]string, 0, tagCount)
	for len(tags) < tagCount {
		tag := f.pick(tagPool)
		if !contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}

	clothingType := f.pick(clothingTypes)
	post := &models.Post{
		UserID:       user.ID,
		Price:        gofakeit.Price(5, 250),
		Description:  fmt.Sprintf("%s %s, %s", f.pick(tagPool), clothingType, gofakeit.Sentence(8)),
		Size:         f.pick(sizes),
		Category:     f.pick(categories),
		ClothingType: clothingType,
		Condition:    f.pick(conditions),
		Tags:         string(rawTags),
		IsSold:       f.rng.Intn(10) == 0,
	}

	daysBack := f.rng.Intn(f.opts.MaxDays)
	post.DatePosted = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour).
		Add(-time.Duration(f.rng.Intn(24)) * time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateLike records user liking post and keeps the denormalized counter in step.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.LikedPost{UserID: user.ID, PostID: post.ID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("like_count", gorm.Expr("like_count + 1")).Error
	})
}

// CreateFollow persists a follower edge.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	return f.db.Create(&models.Follow{
		FollowerID: follower.ID,
		FollowedID: followed.ID,
	}).Error
}

// CreateCartItem puts post in user's cart.
func (f *Factory) CreateCartItem(user *models.User, post *models.Post) error {
	return f.db.Create(&models.CartItem{
		UserID:   user.ID,
		PostID:   post.ID,
		Quantity: 1 + f.rng.Intn(2),
	}).Error
}

// CreateOutfit persists an outfit referencing the given posts.
func (f *Factory) CreateOutfit(user *models.User, posts []*models.Post) (*models.Outfit, error) {
	items := make([]models.OutfitItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, models.OutfitItem{PostID: p.ID})
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	outfit := &models.Outfit{
		UserID: user.ID,
		Name:   fmt.Sprintf("%s %s fit", f.pick(tagPool), f.pick(categories)),
		Items:  string(raw),
	}
	if err := f.db.Create(outfit).Error; err != nil {
		return nil, err
	}
	return outfit, nil
}

// CreateSearch records a search-history row for user.
func (f *Factory) CreateSearch(user *models.User) error {
	return f.db.Create(&models.Search{
		UserID:      user.ID,
		SearchQuery: fmt.Sprintf("%s %s", f.pick(tagPool), f.pick(clothingTypes)),
	}).Error
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
