package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/category"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/config"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/service"
)

// SeedConfig holds seed configuration
type SeedConfig struct {
	Username string
	Password string
	Force    bool
}

// NewSeedConfig parses the seed flags
func NewSeedConfig() *SeedConfig {
	username := flag.String("username", "admin", "Operator username")
	password := flag.String("password", "adminpass", "Operator password")
	force := flag.Bool("force", false, "Force recreation of the operator")

	flag.Parse()

	return &SeedConfig{
		Username: *username,
		Password: *password,
		Force:    *force,
	}
}

// Validate checks the operator credentials
func (c *SeedConfig) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(c.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	return nil
}

func main() {
	if err := run(NewSeedConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(seed *SeedConfig) error {
	if err := seed.Validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting database seeding")

	dbConn, err := db.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.SeedCategories(dbConn, category.Names()); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, written, err := service.EnsureOperator(dbConn, seed.Username, string(hashedPassword), seed.Force)
	if err != nil {
		return err
	}
	if !written {
		log.Info("Operator already exists, use -force to recreate", logger.String("username", seed.Username))
		return nil
	}

	log.Info("Database seeding completed",
		logger.String("username", user.Username),
		logger.Uint("user_id", user.ID))
	return nil
}
