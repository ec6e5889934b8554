package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	dbfs "github.com/opptakhq/opptak/db"
	"github.com/opptakhq/opptak/internal/config"
	"github.com/opptakhq/opptak/internal/db"
	"github.com/opptakhq/opptak/internal/repository/sqlite"
	"github.com/opptakhq/opptak/pkg/models"
)

// Initializes the database, then provisions a main-board admin user and an
// open admission period for local development.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// run migrations and seed using internal/db.Migrate
	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	repo := sqlite.New(database, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash error: %v\n", err)
		os.Exit(1)
	}
	admin := &models.User{ID: 1000, Name: "Admin", PasswordHash: string(hash)}
	if err := repo.CreateUser(ctx, admin); err == nil {
		if err := repo.AddMembership(ctx, admin.ID, cfg.Admission.MainBoardID); err != nil {
			fmt.Fprintf(os.Stderr, "Membership error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user %d (password: admin)\n", admin.ID)
	}

	now := time.Now().UTC()
	period := &models.AdmissionPeriod{
		StartsAt: now.UnixMilli(),
		EndsAt:   now.Add(30 * 24 * time.Hour).UnixMilli(),
	}
	if _, err := repo.CreatePeriod(ctx, period); err != nil {
		fmt.Fprintf(os.Stderr, "Period error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Database initialized successfully.")
}
