// seeduser registers a user in the database and prints a bearer token for it.
//
// Usage:
//
//	JWT_SECRET=... go run ./cmd/seeduser -id user-1 -email user1@example.com -first Ada -last Lovelace
//
// Uses the same DATABASE_URL / JWT_SECRET / JWT_ISSUER settings as the server.
// Re-running for an existing id only mints a new token.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/lib/pq"

	"Postboard/internal/auth"
	"Postboard/internal/config"
	"Postboard/internal/core/users"
	"Postboard/internal/db/migrations"
	postgresRepo "Postboard/internal/db/postgres"
)

func main() {
	id := flag.String("id", "", "user id (token subject)")
	email := flag.String("email", "", "email address")
	first := flag.String("first", "", "first name")
	last := flag.String("last", "", "last name")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required to mint a token")
	}

	req := users.CreateUserRequest{
		ID:    *id,
		Email: *email,
		Name:  users.Name{FirstName: *first, LastName: *last},
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(req); err != nil {
		log.Fatal("Invalid user: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Up(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	repo := postgresRepo.NewUserRepository(db)
	user, err := repo.Create(ctx, req)
	switch {
	case errors.Is(err, users.ErrUserAlreadyExists):
		user, err = repo.GetByID(ctx, req.ID)
		if err != nil {
			log.Fatal("Failed to load existing user: ", err)
		}
		fmt.Printf("User %s already exists\n", user.ID)
	case err != nil:
		log.Fatal("Failed to create user: ", err)
	default:
		fmt.Printf("Created user %s <%s>\n", user.ID, user.Email)
	}

	token, err := auth.IssueHS256(cfg.JWTSecret, user.ID, cfg.JWTIssuer, *ttl)
	if err != nil {
		log.Fatal("Failed to mint token: ", err)
	}
	fmt.Printf("\nAuthorization: Bearer %s\n", token)
}
