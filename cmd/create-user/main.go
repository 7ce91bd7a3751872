package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/services"
)

// Account provisioning happens out of band; this tool creates (or finds)
// a user and prints a signed access token for the management endpoints.
func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: create-user <email> <name>")
		os.Exit(1)
	}

	email := os.Args[1]
	name := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userService := services.NewUserService(db)

	user, err := userService.GetByEmail(ctx, email)
	if errors.Is(err, services.ErrUserNotFound) {
		user, err = userService.Create(ctx, email, name)
	}
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)
	token, err := jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Printf("User: %s (%s)\n", user.Email, user.ID)
	fmt.Printf("Access token: %s\n", token.Token)
}
