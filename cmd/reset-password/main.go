package main

import (
	"context"
	"flag"
	"strings"

	"go-insumos-ws/internal/config"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/pkg/database"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// reset-password sets a new password for one user and ends their open sessions.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	email := flag.String("email", cfg.AdminEmail, "account to reset")
	password := flag.String("password", cfg.AdminPassword, "new password (min 6 characters)")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal().Msg("password must be at least 6 characters")
	}

	db, err := database.Connect(cfg.DSN(), false)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer database.Close(db)

	ctx := context.Background()
	users := repository.NewUserRepo(db)

	user, err := users.FindByEmail(ctx, strings.ToLower(*email))
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("user not found")
	}

	if err := user.SetPassword(*password); err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to update password")
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		log.Fatal().Err(err).Msg("failed to end sessions")
	}

	log.Info().Str("email", user.Email).Msg("password reset")
}
