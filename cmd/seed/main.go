// File: cmd/seed/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gym-membership/internal/config"
	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
	pg "gym-membership/internal/infra/db/postgres"
	"gym-membership/internal/infra/logging"
)

// seed grants or revokes the admin role for an existing account.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	email := flag.String("email", "", "email of an existing account")
	revoke := flag.Bool("revoke", false, "revoke instead of grant")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	users := pg.NewUserRepo(pool)
	roles := pg.NewRoleRepo(pool)

	creds, err := users.FindCredentialsByEmail(ctx, repository.NoTX, model.NormalizeEmail(*email))
	if errors.Is(err, domain.ErrNotFound) {
		logger.Fatal().Str("email", *email).Msg("no account with this email; sign up first")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("lookup account")
	}

	if *revoke {
		err = roles.RevokeAdmin(ctx, repository.NoTX, creds.UserID)
	} else {
		err = roles.GrantAdmin(ctx, repository.NoTX, creds.UserID)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("update admin role")
	}
	logger.Info().Str("user_id", creds.UserID).Bool("revoked", *revoke).Msg("admin role updated")
}
