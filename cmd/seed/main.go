// Command seed fills the configured database with demo accounts and words.
//
// Usage:
//
//	seed                      create Alice, Bob and Charlie with their words
//	seed -deactivate EMAIL    mark an existing account inactive
//	seed -activate EMAIL      mark an existing account active again
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/config"
	"github.com/IL272/Wilddict/internal/database"
	"github.com/IL272/Wilddict/internal/logging"
	"github.com/IL272/Wilddict/internal/metrics"
	"github.com/IL272/Wilddict/internal/repository"
	"github.com/IL272/Wilddict/internal/seed"
	"github.com/IL272/Wilddict/internal/service"
	"github.com/IL272/Wilddict/internal/utils"
)

func main() {
	deactivate := flag.String("deactivate", "", "email of an account to deactivate")
	activate := flag.String("activate", "", "email of an account to reactivate")
	flag.Parse()

	cfg := config.Load()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(database.Options{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	})
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	if err := database.Migrate(ctx, db, cfg.DBDriver, logger); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	accounts := repository.NewAccountRepo(db)
	if *deactivate != "" || *activate != "" {
		email, active := *deactivate, false
		if *activate != "" {
			email, active = *activate, true
		}
		if err := setActive(ctx, accounts, email, active); err != nil {
			logger.Fatal("set active", zap.String("email", email), zap.Error(err))
		}
		logger.Info("account updated", zap.String("email", email), zap.Bool("active", active))
		return
	}

	words := repository.NewWordRepo(db)
	s := &seed.Seeder{
		Registry: service.NewRegistry(accounts, utils.NewHasher(cfg.BcryptCost), utils.NewTokenCodec(cfg.JWTSecret),
			cfg.TokenTTL, nil, metrics.NewAuth(), logger),
		Words:    service.NewWordService(words, nil, nil, logger),
		Existing: words,
		Log:      logger,
	}
	res, err := s.Run(ctx, seed.Demo)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("accounts", res.Accounts), zap.Int("words", res.Words))
	for _, a := range seed.Demo {
		fmt.Printf("  Email: %s, Password: %s\n", a.Email, seed.DemoPassword)
	}
}

func setActive(ctx context.Context, accounts *repository.AccountRepo, email string, active bool) error {
	acc, err := accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return accounts.SetActive(ctx, acc.ID, active)
}
