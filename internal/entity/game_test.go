package entity

import (
	"testing"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/quantum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsFinished returns true when game status is finished", func(t *testing.T) {
		// Given: a game with StatusFinished
		game := &Game{Status: StatusFinished}

		// Then: it should report finished
		assert.True(t, game.IsFinished())
	})

	t.Run("IsOngoing returns true when game status is ongoing", func(t *testing.T) {
		// Given: a game with StatusOngoing
		game := &Game{Status: StatusOngoing}

		// Then: it should report ongoing
		assert.True(t, game.IsOngoing())
	})

	t.Run("IsCollapsing returns true when a collapse is pending", func(t *testing.T) {
		// Given: a game with StatusCollapsing
		game := &Game{Status: StatusCollapsing}

		// Then: it should report collapsing
		assert.True(t, game.IsCollapsing())
	})

	t.Run("IsWaiting returns true when game status is waiting", func(t *testing.T) {
		// Given: a game with StatusWaiting
		game := &Game{Status: StatusWaiting}

		// Then: it should report waiting
		assert.True(t, game.IsWaiting())
	})
}

func TestGame_ConfirmActiveState(t *testing.T) {
	t.Run("Returns nil when game is ongoing", func(t *testing.T) {
		// Given: a game with StatusOngoing
		game := &Game{Status: StatusOngoing}

		// When: checking if the game accepts input
		err := game.ConfirmActiveState()

		// Then: it should return nil error
		assert.NoError(t, err)
	})

	t.Run("Returns nil when a collapse is pending", func(t *testing.T) {
		// Given: a game paused on a seed choice
		game := &Game{Status: StatusCollapsing}

		// When: checking if the game accepts input
		err := game.ConfirmActiveState()

		// Then: the seed choice still counts as input
		assert.NoError(t, err)
	})

	t.Run("Returns ErrGameIsNotStarted when game is waiting", func(t *testing.T) {
		// Given: a game with StatusWaiting
		game := &Game{Status: StatusWaiting}

		// When: checking if the game accepts input
		err := game.ConfirmActiveState()

		// Then: it should return ErrGameIsNotStarted
		assert.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameOver when game is finished", func(t *testing.T) {
		// Given: a game with StatusFinished
		game := &Game{Status: StatusFinished}

		// When: checking if the game accepts input
		err := game.ConfirmActiveState()

		// Then: it should return ErrGameOver
		assert.ErrorIs(t, err, quantum.ErrGameOver)
	})

	t.Run("Returns error for unknown game status", func(t *testing.T) {
		// Given: a game with unknown status
		game := &Game{Status: "unknown"}

		// When: checking if the game accepts input
		err := game.ConfirmActiveState()

		// Then: it should return an error
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown game status")
	})
}

func TestGame_Engine(t *testing.T) {
	t.Run("Empty history builds a fresh engine", func(t *testing.T) {
		// Given: a new game with no actions
		game := NewGame("123", PrivateType)

		// When: rebuilding the engine
		engine, err := game.Engine()
		require.NoError(t, err)

		// Then: it is a fresh game with X to move
		require.Equal(t, quantum.StatusOngoing, engine.StatusName())
		require.Equal(t, PlayerX, engine.Turn())
		require.Equal(t, 0, engine.MoveCount())
	})

	t.Run("History replays into the same position", func(t *testing.T) {
		// Given: a game whose history holds two moves
		game := NewGame("123", PrivateType)
		game.History = []quantum.Action{
			{Kind: quantum.ActionMove, Player: PlayerX, CellA: 0, CellB: 4},
			{Kind: quantum.ActionMove, Player: PlayerO, CellA: 4, CellB: 8},
		}

		// When: rebuilding the engine
		engine, err := game.Engine()
		require.NoError(t, err)

		// Then: both moves are live and X is up again
		require.Equal(t, 2, engine.MoveCount())
		require.Equal(t, PlayerX, engine.Turn())
		require.Equal(t, 2, engine.SuperpositionCount(4))
	})

	t.Run("Error on a corrupt history", func(t *testing.T) {
		// Given: a game whose history starts with O
		game := NewGame("123", PrivateType)
		game.History = []quantum.Action{
			{Kind: quantum.ActionMove, Player: PlayerO, CellA: 0, CellB: 4},
		}

		// When: rebuilding the engine
		_, err := game.Engine()

		// Then: the replay error surfaces
		require.ErrorIs(t, err, quantum.ErrOutOfTurn)
	})
}

func TestGame_Sync(t *testing.T) {
	t.Run("Engine standing lands in the stored fields", func(t *testing.T) {
		// Given: an ongoing game and an engine with one live move
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing

		engine, err := game.Engine()
		require.NoError(t, err)
		_, err = engine.SubmitMove(PlayerX, 0, 4)
		require.NoError(t, err)

		// When: syncing the engine back
		game.Sync(engine)

		// Then: turn, history and status follow the engine
		require.Equal(t, PlayerO, game.Turn)
		require.Len(t, game.History, 1)
		require.Equal(t, StatusOngoing, game.Status)
		require.Equal(t, [9]string{}, game.Board)
	})

	t.Run("Pending collapse moves the game to collapsing", func(t *testing.T) {
		// Given: an engine paused on a seed choice
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing

		engine, err := game.Engine()
		require.NoError(t, err)
		_, err = engine.SubmitMove(PlayerX, 0, 1)
		require.NoError(t, err)
		_, err = engine.SubmitMove(PlayerO, 1, 2)
		require.NoError(t, err)
		_, err = engine.SubmitMove(PlayerX, 2, 0)
		require.NoError(t, err)

		// When: syncing the engine back
		game.Sync(engine)

		// Then: the stored game pauses on O's choice
		require.Equal(t, StatusCollapsing, game.Status)
		require.Equal(t, PlayerO, game.Chooser)
		require.Equal(t, PlayerO, game.Turn)
	})

	t.Run("Finished engine closes the stored game", func(t *testing.T) {
		// Given: an engine where X won through a collapsed column
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing

		engine, err := game.Engine()
		require.NoError(t, err)
		for _, action := range []quantum.Action{
			{Kind: quantum.ActionMove, Player: PlayerX, CellA: 0, CellB: 3},
			{Kind: quantum.ActionMove, Player: PlayerO, CellA: 1, CellB: 2},
			{Kind: quantum.ActionMove, Player: PlayerX, CellA: 3, CellB: 6},
			{Kind: quantum.ActionMove, Player: PlayerO, CellA: 2, CellB: 4},
			{Kind: quantum.ActionMove, Player: PlayerX, CellA: 6, CellB: 0},
		} {
			_, err = engine.SubmitMove(action.Player, action.CellA, action.CellB)
			require.NoError(t, err)
		}
		_, err = engine.SubmitSeed(PlayerO, 0)
		require.NoError(t, err)

		// When: syncing the engine back
		game.Sync(engine)

		// Then: the stored game is finished with X as the winner
		require.Equal(t, StatusFinished, game.Status)
		require.Equal(t, PlayerX, game.Winner)
		require.Len(t, game.CollapseLog, 3)
		require.Equal(t, game.CollapseLog, game.LastCollapse)
		require.Equal(t, EmptyCell, game.Turn)
		require.Equal(t, PlayerX, game.Board[0])
		require.Equal(t, PlayerX, game.Board[3])
		require.Equal(t, PlayerX, game.Board[6])
	})

	t.Run("Waiting game stays waiting", func(t *testing.T) {
		// Given: a waiting game and its untouched engine
		game := NewGame("123", PublicType)

		engine, err := game.Engine()
		require.NoError(t, err)

		// When: syncing the engine back
		game.Sync(engine)

		// Then: seating players is not the engine's call
		require.Equal(t, StatusWaiting, game.Status)
	})
}

func TestPlayer_IsBot(t *testing.T) {
	t.Run("Bot player reports itself", func(t *testing.T) {
		// Given: a bot seated in game 123
		player := NewBotPlayer("123", "")

		// Then: it is a bot bound to the game
		assert.True(t, player.IsBot())
		assert.Equal(t, "123", player.GameID)
	})

	t.Run("Seats keep two bots apart", func(t *testing.T) {
		// Given: two bots seated in the same game
		first := NewBotPlayer("123", "x")
		second := NewBotPlayer("123", "o")

		// Then: their ids differ
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Human player is not a bot", func(t *testing.T) {
		player := &Player{ID: "abc-def"}

		assert.False(t, player.IsBot())
	})
}
