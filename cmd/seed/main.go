// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"soundmap/internal/config"
	"soundmap/internal/database"
	"soundmap/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "Posts per user")
	flag.IntVar(&opts.FollowsPerUser, "follows", opts.FollowsPerUser, "Follows per user")
	flag.BoolVar(&opts.ShouldClean, "clean", true, "Clean database before seeding")
	flag.StringVar(&opts.Password, "password", opts.Password, "Password for all seeded accounts")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.New(db, opts).Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users (%d posts each). All accounts use the same password.",
		opts.NumUsers, opts.PostsPerUser)
}
