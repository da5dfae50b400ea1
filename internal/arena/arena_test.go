package arena

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/quantum"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/service"
	"github.com/stretchr/testify/require"
)

type memoryGameRepo struct {
	games map[string]*entity.Game
	puts  int
}

func (that *memoryGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.games[game.ID] = game
	that.puts++

	return nil
}

func (that *memoryGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	game, ok := that.games[id]
	if !ok {
		return &entity.Game{}, apperror.ErrGameNotFound
	}

	return game, nil
}

func (that *memoryGameRepo) GetWaitingPublicGame(_ context.Context) (*entity.Game, error) {
	return nil, apperror.ErrNoActiveGames
}

func (that *memoryGameRepo) DeleteByID(_ context.Context, id string) error {
	delete(that.games, id)
	return nil
}

type memoryPlayerRepo struct {
	players map[string]*entity.Player
}

func (that *memoryPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	clone := *player
	that.players[player.ID] = &clone

	return nil
}

func (that *memoryPlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	player, ok := that.players[id]
	if !ok {
		return &entity.Player{}, apperror.ErrPlayerNotFound
	}

	return player, nil
}

type memoryArchiveRepo struct {
	saved []*entity.Game
}

func (that *memoryArchiveRepo) Save(_ context.Context, game *entity.Game) error {
	if !game.IsFinished() {
		return apperror.ErrGameNotFinished
	}

	that.saved = append(that.saved, game)

	return nil
}

func (that *memoryArchiveRepo) FindByID(_ context.Context, id string) (*entity.Game, error) {
	for _, game := range that.saved {
		if game.ID == id {
			return game, nil
		}
	}

	return nil, apperror.ErrGameNotFound
}

func newRunner(seed int64) (*Runner, *memoryGameRepo, *memoryPlayerRepo, *memoryArchiveRepo) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	gameRepo := &memoryGameRepo{games: make(map[string]*entity.Game)}
	playerRepo := &memoryPlayerRepo{players: make(map[string]*entity.Player)}
	archiveRepo := &memoryArchiveRepo{}

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo, archiveRepo)
	botService := service.NewBotService(rand.New(rand.NewSource(seed)))
	gamePlay := service.NewGamePlayService(logger, playerService, gameService, botService)

	runner := NewRunner(logger, playerService, gameService, gamePlay, botService)

	return runner, gameRepo, playerRepo, archiveRepo
}

func TestRunner_Run(t *testing.T) {
	t.Run("Plays and archives the requested number of games", func(t *testing.T) {
		runner, gameRepo, _, archiveRepo := newRunner(1)

		// When: the runner plays five games
		report, err := runner.Run(context.Background(), 5)
		require.NoError(t, err)

		// Then: every game finished and was archived
		require.Equal(t, 5, report.Played)
		require.Equal(t, 5, report.XWins+report.OWins+report.Draws)
		require.Len(t, archiveRepo.saved, 5)

		for _, game := range archiveRepo.saved {
			require.True(t, game.IsFinished())
			require.NotEmpty(t, game.History)
		}

		// Then: games were stored action by action and cleaned up after
		require.Empty(t, gameRepo.games)
		require.Greater(t, gameRepo.puts, report.Played*2)
	})

	t.Run("Bots are seated and unseated like any session", func(t *testing.T) {
		runner, _, playerRepo, _ := newRunner(1)

		_, err := runner.Run(context.Background(), 1)
		require.NoError(t, err)

		// Then: both bot players exist and hold no seat anymore
		require.Len(t, playerRepo.players, 2)
		for _, player := range playerRepo.players {
			require.True(t, player.IsBot())
			require.Empty(t, player.GameID)
		}
	})

	t.Run("Archived games replay to the same result", func(t *testing.T) {
		runner, _, _, archiveRepo := newRunner(7)

		_, err := runner.Run(context.Background(), 3)
		require.NoError(t, err)

		// Then: replaying an archived history lands on the same standing
		for _, game := range archiveRepo.saved {
			engine, err := quantum.Replay(game.History)
			require.NoError(t, err)
			require.True(t, engine.IsFinished())
			require.Equal(t, game.Winner, engine.Winner())
			require.Equal(t, game.Board, engine.Marks())
		}
	})

	t.Run("Identical seeds produce identical runs", func(t *testing.T) {
		first, _, _, firstArchive := newRunner(42)
		second, _, _, secondArchive := newRunner(42)

		_, err := first.Run(context.Background(), 3)
		require.NoError(t, err)
		_, err = second.Run(context.Background(), 3)
		require.NoError(t, err)

		require.Len(t, secondArchive.saved, len(firstArchive.saved))
		for i, game := range firstArchive.saved {
			require.Equal(t, game.History, secondArchive.saved[i].History)
			require.Equal(t, game.Winner, secondArchive.saved[i].Winner)
		}
	})

	t.Run("Stops when the context is canceled", func(t *testing.T) {
		runner, _, _, _ := newRunner(1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// When: the runner starts on a dead context
		report, err := runner.Run(ctx, 5)

		// Then: it reports the interruption without playing
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 0, report.Played)
	})
}
