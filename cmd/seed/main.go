// Command seed applies the schema, creates a demo user, and optionally
// imports categories from a legacy JSON export where the name may live under
// any of the historical field variants.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"finledger/internal/models"
	"finledger/internal/repository"
	"finledger/internal/service"
	"finledger/pkg/auth"
	"finledger/pkg/config"
	"finledger/pkg/logger"
	"finledger/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	legacyFile := flag.String("categories", "", "path to a legacy category export (JSON array of attribute maps)")
	demoEmail := flag.String("demo-email", "demo@finledger.local", "email for the demo user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := applyMigrations(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)

	userID, err := ensureDemoUser(ctx, userRepo, *demoEmail, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed demo user", zap.Error(err))
	}

	if *legacyFile != "" {
		if err := importLegacyCategories(ctx, categoryRepo, userID, *legacyFile, appLogger); err != nil {
			appLogger.Fatal("Failed to import legacy categories", zap.Error(err))
		}
	}

	appLogger.Info("Seeding completed")
}

func applyMigrations(ctx context.Context, db *pgxpool.Pool, appLogger *zap.Logger) error {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		path := filepath.Join("migrations", entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply %s: %w", path, err)
		}
		appLogger.Info("Applied migration", zap.String("file", entry.Name()))
	}
	return nil
}

func ensureDemoUser(ctx context.Context, users *repository.UserRepository, email string, appLogger *zap.Logger) (uuid.UUID, error) {
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		appLogger.Info("Demo user already present", zap.String("email", email))
		return existing.ID, nil
	}

	hashed, err := auth.HashPassword("demo-password")
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Create(ctx, user); err != nil {
		return uuid.Nil, err
	}
	appLogger.Info("Created demo user", zap.String("email", email))
	return user.ID, nil
}

// importLegacyCategories folds old exports into canonical rows. Older
// clients stored the label under different keys, so each record is an
// attribute map rather than a fixed shape.
func importLegacyCategories(ctx context.Context, categories *repository.CategoryRepository, userID uuid.UUID, path string, appLogger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	existing, err := categories.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, cat := range existing {
		seen[cat.Name] = true
	}

	imported := 0
	for i, record := range records {
		name := service.CanonicalLegacyName(record)
		if name == "" {
			appLogger.Warn("Skipping legacy record without a name", zap.Int("index", i))
			continue
		}
		if seen[name] {
			continue
		}

		now := time.Now()
		category := &models.Category{
			ID:              uuid.New(),
			UserID:          userID,
			Name:            name,
			IconName:        record["icon_name"],
			BackgroundColor: service.DefaultCategoryColor,
			CreatedAt:       now,
			LastUpdated:     now,
		}
		if err := categories.Create(ctx, category); err != nil {
			return fmt.Errorf("create category %q: %w", name, err)
		}
		seen[name] = true
		imported++
	}

	appLogger.Info("Imported legacy categories", zap.Int("count", imported), zap.Int("total", len(records)))
	return nil
}
