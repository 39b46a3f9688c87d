package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/playtube/playtube-api/config"
	"github.com/playtube/playtube-api/internal/domain/entity"
	pginfra "github.com/playtube/playtube-api/internal/infrastructure/postgres"
	"github.com/playtube/playtube-api/pkg/helpers"
)

// Seeds two demo channels and a subscription edge between them so the
// channel profile aggregation has data to count.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	subs := pginfra.NewSubscriptionRepository(pool)

	seedUsers := []struct {
		username, email, fullName, password string
	}{
		{"demochannel", "channel@playtube.dev", "Demo Channel", "password123"},
		{"demoviewer", "viewer@playtube.dev", "Demo Viewer", "password123"},
	}

	ids := make([]string, 0, len(seedUsers))
	for _, su := range seedUsers {
		if existing, err := users.GetByUsernameOrEmail(ctx, su.username, su.email); err == nil {
			fmt.Printf("user exists: id=%s username=%s\n", existing.ID, existing.Username)
			ids = append(ids, existing.ID)
			continue
		}
		hash, err := helpers.HashPassword(su.password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u := &entity.User{
			Username:  su.username,
			Email:     su.email,
			FullName:  su.fullName,
			Password:  hash,
			AvatarURL: "https://storage.googleapis.com/" + cfg.GCSBucket + "/avatars/seed.png",
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed user %s: %v", su.username, err)
		}
		fmt.Printf("seeded user: id=%s username=%s password=%s\n", u.ID, u.Username, su.password)
		ids = append(ids, u.ID)
	}

	// viewer subscribes to channel
	if err := subs.Create(ctx, ids[1], ids[0]); err != nil {
		log.Fatalf("failed to seed subscription: %v", err)
	}
	fmt.Printf("seeded subscription: subscriber=%s channel=%s\n", ids[1], ids[0])
}
