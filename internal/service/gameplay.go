package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/quantum"
)

var ErrGameIsFull = errors.New("game already has two players")

type GamePlayService interface {
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)

	MakeTurn(ctx context.Context, playerID string, cellA, cellB int) (*entity.Game, error)
	ChooseSeed(ctx context.Context, playerID string, cell int) (*entity.Game, error)
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	botService    BotService
}

func NewGamePlayService(logger *slog.Logger, playerService PlayerService, gameService GameService, botService BotService) GamePlayService {
	return &gamePlayService{
		logger:        logger,
		playerService: playerService,
		gameService:   gameService,
		botService:    botService,
	}
}

// MakeTurn submits one superposed move for the player. When the move closes
// a cycle the returned game is paused on the opponent's seed choice; when
// the opponent is the bot, its follow-up actions have already been played.
func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, cellA, cellB int) (*entity.Game, error) {
	player, game, err := that.activeGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	engine, err := game.Engine()
	if err != nil {
		return nil, err
	}

	if _, err = engine.SubmitMove(player.Mark, cellA, cellB); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}
	game.Sync(engine)

	if game.IsWithBot() && !game.IsFinished() {
		if err = that.runBotActions(game, engine); err != nil {
			return nil, fmt.Errorf("bot failed to act: %w", err)
		}
		game.Sync(engine)
	}

	if err = that.storeGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// ChooseSeed resolves the pending collapse from the cell the player picked.
func (that *gamePlayService) ChooseSeed(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	player, game, err := that.activeGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	engine, err := game.Engine()
	if err != nil {
		return nil, err
	}

	if _, err = engine.SubmitSeed(player.Mark, cell); err != nil {
		return game, fmt.Errorf("failed to choose seed: %w", err)
	}
	game.Sync(engine)

	if game.IsWithBot() && !game.IsFinished() {
		if err = that.runBotActions(game, engine); err != nil {
			return nil, fmt.Errorf("bot failed to act: %w", err)
		}
		game.Sync(engine)
	}

	if err = that.storeGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// activeGame loads the player and the game they are seated in, and checks
// the game still accepts input.
func (that *gamePlayService) activeGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, nil, apperror.ErrGameIsNotStarted
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmActiveState(); err != nil {
		return nil, nil, err
	}

	return player, game, nil
}

// runBotActions lets the bot act until the game waits on the human again:
// a bot seed choice hands the move back to the bot, so one call may play
// several actions.
func (that *gamePlayService) runBotActions(game *entity.Game, engine *quantum.Game) error {
	botPlayer := game.BotPlayer()
	if botPlayer == nil {
		return ErrBotNotFound
	}

	for {
		switch {
		case engine.IsCollapsing() && engine.Chooser() == botPlayer.Mark:
			if err := that.botService.ChooseSeed(engine, botPlayer.Mark); err != nil {
				return err
			}
		case engine.IsOngoing() && engine.Turn() == botPlayer.Mark:
			if err := that.botService.MakeTurn(engine, botPlayer.Mark); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// storeGame persists the game and, once finished, archives it for replay.
func (that *gamePlayService) storeGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsFinished() {
		if err := that.gameService.ArchiveGame(ctx, game); err != nil {
			return fmt.Errorf("failed to archive game: %w", err)
		}
	}

	return nil
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if player.GameID != "" {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrGameAlreadyExists, playerID)
	}

	if len(game.Players) >= 2 {
		return nil, fmt.Errorf("%w: game id %s", ErrGameIsFull, gameID)
	}

	return that.seatPlayer(ctx, game, player)
}

func (that *gamePlayService) JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if player.GameID != "" {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrGameAlreadyExists, playerID)
	}

	return that.seatPlayer(ctx, game, player)
}

// seatPlayer puts the second player on the O seat and starts the game.
func (that *gamePlayService) seatPlayer(ctx context.Context, game *entity.Game, player *entity.Player) (*entity.Game, error) {
	player.GameID = game.ID
	player.Mark = entity.PlayerO
	if err := that.playerService.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Status = entity.StatusOngoing
	game.Players = append(game.Players, player)
	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	if player.GameID == "" {
		game, err := that.createGame(ctx, player, gameType)
		if err != nil {
			return nil, fmt.Errorf("failed to create new game: %w", err)
		}

		return game, nil
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) createGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	game, updatedPlayer, err := that.gameService.CreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.CreateOrUpdate(ctx, updatedPlayer); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	return game, nil
}

func (that *gamePlayService) addBotToGame(ctx context.Context, game *entity.Game) error {
	botPlayer := entity.NewBotPlayer(game.ID, "")

	game.Players = append(game.Players, botPlayer)
	game.Status = entity.StatusOngoing

	playerMark, botMark := game.GetRandomMarks()
	for _, player := range game.Players {
		if !player.IsBot() {
			player.Mark = playerMark
			if err := that.playerService.CreateOrUpdate(ctx, player); err != nil {
				return fmt.Errorf("failed to update player: %w", err)
			}
		}
	}
	botPlayer.Mark = botMark

	if err := that.playerService.CreateOrUpdate(ctx, botPlayer); err != nil {
		return fmt.Errorf("failed to update bot player: %w", err)
	}

	if botMark == entity.PlayerX {
		engine, err := game.Engine()
		if err != nil {
			return err
		}

		if err = that.botService.MakeTurn(engine, botMark); err != nil {
			return fmt.Errorf("bot failed to make first turn: %w", err)
		}
		game.Sync(engine)
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game with bot: %w", err)
	}

	return nil
}

func (that *gamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "cleanupGame", "gameID", game.ID)

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		oldMark := player.Mark
		player.GameID = ""
		player.Mark = ""
		if err := that.playerService.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
		player.Mark = oldMark
	}
}
