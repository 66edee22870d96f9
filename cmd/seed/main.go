// Command main runs the database seeder for GearSwap.
package main

import (
	"flag"
	"log"

	"gearswap/internal/config"
	"gearswap/internal/database"
	"gearswap/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	users := flag.Int("users", 25, "Number of users to create")
	postsPerUser := flag.Int("posts-per-user", 4, "Listings per user")
	likesPerUser := flag.Int("likes-per-user", 5, "Likes per user")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing for faster seeding")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		Users:        *users,
		PostsPerUser: *postsPerUser,
		LikesPerUser: *likesPerUser,
		SkipBcrypt:   *fast,
	})

	if *clean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}
	if err := s.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
