package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/programmeradu/ownai/config"
	"github.com/programmeradu/ownai/internal/admin"
	database "github.com/programmeradu/ownai/internal/core"
	"github.com/programmeradu/ownai/internal/core/repository"
	"github.com/programmeradu/ownai/internal/logger"
	logicv1 "github.com/programmeradu/ownai/internal/logic/v1"
)

func main() {
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), admin.Usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Configuration validation failed:", err)
		os.Exit(1)
	}
	logger.SetupWithWriter(cfg.Logging.Level, os.Stderr)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	creds, err := logicv1.NewCredentialStore(repository.NewUserRepository(pool), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize credential store")
	}
	prompt := admin.NewPrompter(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
	cmds := admin.NewCommands(creds, prompt, os.Stdout)

	if err := cmds.Run(ctx, flag.Args()); err != nil {
		log.Error().Err(err).Str("command", flag.Arg(0)).Msg("Command failed")
		pool.Close()
		os.Exit(1)
	}
}
