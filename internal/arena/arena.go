package arena

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/pkg"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/service"
)

// Report sums up one arena run.
type Report struct {
	Played int
	XWins  int
	OWins  int
	Draws  int
}

// Runner plays bot-vs-bot games through the session layer: every game lives
// in the game repository while in play, is archived once finished, and is
// cleaned up like any other session. Arena runs double as replay fixtures.
type Runner struct {
	logger *slog.Logger

	playerService service.PlayerService
	gameService   service.GameService
	gamePlay      service.GamePlayService
	botService    service.BotService
}

func NewRunner(
	logger *slog.Logger,
	playerService service.PlayerService,
	gameService service.GameService,
	gamePlay service.GamePlayService,
	botService service.BotService,
) *Runner {
	return &Runner{
		logger:        logger.With("component", "arena"),
		playerService: playerService,
		gameService:   gameService,
		gamePlay:      gamePlay,
		botService:    botService,
	}
}

// Run plays the given number of games back to back. It stops early when the
// context is canceled, reporting the games finished so far.
func (that *Runner) Run(ctx context.Context, games int) (*Report, error) {
	report := &Report{}

	for i := 0; i < games; i++ {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("arena run interrupted: %w", err)
		}

		game, err := that.playGame(ctx)
		if err != nil {
			return report, fmt.Errorf("arena game %d failed: %w", i+1, err)
		}

		report.Played++
		switch game.Winner {
		case entity.PlayerX:
			report.XWins++
		case entity.PlayerO:
			report.OWins++
		default:
			report.Draws++
		}

		that.logger.Info("arena game finished",
			"gameID", game.ID, "winner", game.Winner, "actions", len(game.History))
	}

	return report, nil
}

// playGame drives one game with both seats held by bots. Each action runs
// the fetch-mutate-store loop a human request would: the game is reloaded
// from storage, the engine rebuilt from its history, and the new standing
// written back.
func (that *Runner) playGame(ctx context.Context) (*entity.Game, error) {
	game, err := that.createGame(ctx)
	if err != nil {
		return nil, err
	}

	for !game.IsFinished() {
		if game, err = that.gameService.GetGameByID(ctx, game.ID); err != nil {
			return nil, fmt.Errorf("failed to load arena game: %w", err)
		}

		engine, err := game.Engine()
		if err != nil {
			return nil, err
		}

		switch {
		case engine.IsCollapsing():
			if err = that.botService.ChooseSeed(engine, engine.Chooser()); err != nil {
				return nil, fmt.Errorf("bot failed to choose seed: %w", err)
			}
		default:
			if err = that.botService.MakeTurn(engine, engine.Turn()); err != nil {
				return nil, fmt.Errorf("bot failed to make turn: %w", err)
			}
		}

		game.Sync(engine)
		if err = that.gameService.UpdateGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to store arena game: %w", err)
		}
	}

	if err = that.gameService.ArchiveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to archive arena game: %w", err)
	}

	that.gamePlay.CleanupGame(ctx, game)

	return game, nil
}

// createGame seats two bots and stores the running game.
func (that *Runner) createGame(ctx context.Context) (*entity.Game, error) {
	gameID, err := pkg.GenerateGameID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate game id: %w", err)
	}

	game := entity.NewGame(gameID, entity.ArenaType)
	game.Status = entity.StatusOngoing

	botX := entity.NewBotPlayer(gameID, "x")
	botX.Mark = entity.PlayerX
	botO := entity.NewBotPlayer(gameID, "o")
	botO.Mark = entity.PlayerO
	game.Players = []*entity.Player{botX, botO}

	for _, player := range game.Players {
		if err = that.playerService.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to seat arena bot: %w", err)
		}
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to store arena game: %w", err)
	}

	return game, nil
}
