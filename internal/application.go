package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/arena"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/config"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/repository"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/repository/storage"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/service"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application: wires storage, repositories and services,
// then plays the configured arena batch and reports the outcome.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	archiveRepo := repository.NewArchiveRepository(sqliteStorage.Connection)

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo, archiveRepo)
	botService := service.NewBotService(rand.New(rand.NewSource(conf.Arena.Seed))) //nolint:gosec // reproducible arena runs need a seeded source
	gamePlayService := service.NewGamePlayService(logger, playerService, gameService, botService)

	runner := arena.NewRunner(logger, playerService, gameService, gamePlayService, botService)

	log.Info("Starting arena run", "games", conf.Arena.Games, "seed", conf.Arena.Seed)

	report, err := runner.Run(ctx, conf.Arena.Games)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("Arena run canceled", "played", report.Played)
			return nil
		}

		return fmt.Errorf("arena run failed: %w", err)
	}

	log.Info("Arena run finished",
		"played", report.Played, "xWins", report.XWins, "oWins", report.OWins, "draws", report.Draws)

	return nil
}
