package seed

import (
	"fmt"
	"log"

	"gearswap/internal/database"
	"gearswap/internal/models"

	"gorm.io/gorm"
)

// Seeder orchestrates a full marketplace seeding run.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder with sensible defaults filled in.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Users <= 0 {
		opts.Users = 25
	}
	if opts.PostsPerUser <= 0 {
		opts.PostsPerUser = 4
	}
	if opts.LikesPerUser <= 0 {
		opts.LikesPerUser = 5
	}
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// ClearAll wipes every seeded table. Destructive; development only.
func (s *Seeder) ClearAll() error {
	for _, model := range database.AllModels() {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", model, err)
		}
	}
	return nil
}

// Run populates the marketplace: users with profiles, listings, a follow
// mesh, likes, carts, outfits and search history.
func (s *Seeder) Run() error {
	users := make([]*models.User, 0, s.opts.Users)
	posts := make([]*models.Post, 0, s.opts.Users*s.opts.PostsPerUser)

	for i := 0; i < s.opts.Users; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if _, err := s.factory.CreateProfile(user); err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}
		users = append(users, user)

		for j := 0; j < s.opts.PostsPerUser; j++ {
			post, err := s.factory.CreatePost(user)
			if err != nil {
				return fmt.Errorf("creating post: %w", err)
			}
			posts = append(posts, post)
		}
	}
	log.Printf("seeded %d users with %d listings", len(users), len(posts))

	for _, user := range users {
		for _, other := range s.sample(users, 3) {
			if other.ID == user.ID {
				continue
			}
			// Sampled pairs can collide with the unique follow edge.
			_ = s.factory.CreateFollow(user, other)
		}

		liked := map[uint]bool{}
		for _, post := range s.samplePosts(posts, s.opts.LikesPerUser) {
			if post.UserID == user.ID || liked[post.ID] {
				continue
			}
			if err := s.factory.CreateLike(user, post); err != nil {
				return fmt.Errorf("creating like: %w", err)
			}
			liked[post.ID] = true
		}

		if err := s.factory.CreateSearch(user); err != nil {
			return fmt.Errorf("creating search: %w", err)
		}
	}

	for _, user := range s.sample(users, len(users)/2) {
		picks := s.samplePosts(posts, 3)
		if len(picks) == 0 {
			continue
		}
		if _, err := s.factory.CreateOutfit(user, picks); err != nil {
			return fmt.Errorf("creating outfit: %w", err)
		}
		if picks[0].UserID != user.ID {
			_ = s.factory.CreateCartItem(user, picks[0])
		}
	}

	log.Println("seeding complete")
	return nil
}

func (s *Seeder) sample(users []*models.User, n int) []*models.User {
	if n >= len(users) {
		return users
	}
	out := make([]*models.User, 0, n)
	for _, i := range s.factory.rng.Perm(len(users))[:n] {
		out = append(out, users[i])
	}
	return out
}

func (s *Seeder) samplePosts(posts []*models.Post, n int) []*models.Post {
	if n >= len(posts) {
		return posts
	}
	out := make([]*models.Post, 0, n)
	for _, i := range s.factory.rng.Perm(len(posts))[:n] {
		out = append(out, posts[i])
	}
	return out
}
