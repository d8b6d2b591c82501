// Command seed fills the configured database with fake data.
package main

import (
	"flag"
	"log"
	"time"

	"sharedepot/internal/config"
	"sharedepot/internal/database"
	"sharedepot/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxComments := flag.Int("comments", 8, "Maximum comments per post")
	likeChance := flag.Int("like-chance", 15, "Chance in percent that a user likes a post")
	days := flag.Int("days", 90, "Spread post dates across this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store plain passwords instead of bcrypt hashes")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible data")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v, seed=%d\n", *numUsers, *numPosts, *shouldClean, *randSeed)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.NewSeeder(db, *randSeed).Run(seed.Options{
		Users:              *numUsers,
		Posts:              *numPosts,
		MaxCommentsPerPost: *maxComments,
		LikeChance:         *likeChance,
		Clean:              *shouldClean,
		SkipBcrypt:         *fast,
		MaxDays:            *days,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts, %d comments, %d likes\n", sum.Users, sum.Posts, sum.Comments, sum.Likes)
	if !*fast {
		log.Printf("All seeded users have the password: %s\n", seed.DefaultPassword)
	}
}
