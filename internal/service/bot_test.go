package service

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/quantum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playOut runs one bot-vs-bot game to the end and returns its history.
func playOut(t *testing.T, seed int64) *quantum.Game {
	t.Helper()

	bots := NewBotService(rand.New(rand.NewSource(seed)))
	engine := quantum.NewGame()

	for !engine.IsFinished() {
		if engine.IsCollapsing() {
			require.NoError(t, bots.ChooseSeed(engine, engine.Chooser()))
			continue
		}

		require.NoError(t, bots.MakeTurn(engine, engine.Turn()))
	}

	return engine
}

func TestBotService_MakeTurn(t *testing.T) {
	t.Run("Bot plays a legal move", func(t *testing.T) {
		// Given: a fresh game and a seeded bot
		bots := NewBotService(rand.New(rand.NewSource(1)))
		engine := quantum.NewGame()

		// When: the bot moves as X
		err := bots.MakeTurn(engine, quantum.PlayerX)
		require.NoError(t, err)

		// Then: exactly one live move exists and O is up
		require.Equal(t, 1, engine.MoveCount())
		require.Equal(t, quantum.PlayerO, engine.Turn())
	})

	t.Run("Error when no moves are available", func(t *testing.T) {
		// Given: a finished game
		engine := finishedEngine(t)
		bots := NewBotService(rand.New(rand.NewSource(1)))

		// When: the bot is asked to move anyway
		err := bots.MakeTurn(engine, quantum.PlayerO)

		// Then: ErrNoAvailableMoves should be returned
		assert.ErrorIs(t, err, ErrNoAvailableMoves)
	})
}

func TestBotService_ChooseSeed(t *testing.T) {
	t.Run("Bot resolves a pending collapse", func(t *testing.T) {
		// Given: a game paused on O's seed choice
		bots := NewBotService(rand.New(rand.NewSource(1)))
		engine := quantum.NewGame()
		_, err := engine.SubmitMove(quantum.PlayerX, 0, 1)
		require.NoError(t, err)
		_, err = engine.SubmitMove(quantum.PlayerO, 1, 2)
		require.NoError(t, err)
		_, err = engine.SubmitMove(quantum.PlayerX, 2, 0)
		require.NoError(t, err)
		require.True(t, engine.IsCollapsing())

		// When: the bot chooses the seed as O
		err = bots.ChooseSeed(engine, quantum.PlayerO)
		require.NoError(t, err)

		// Then: the collapse ran and play resumed
		require.False(t, engine.IsCollapsing())
		require.Len(t, engine.Log(), 3)
	})

	t.Run("Error without a pending collapse", func(t *testing.T) {
		bots := NewBotService(rand.New(rand.NewSource(1)))
		engine := quantum.NewGame()

		err := bots.ChooseSeed(engine, quantum.PlayerO)

		assert.ErrorIs(t, err, ErrNoPendingChoice)
	})
}

func TestBotService_SelfPlay(t *testing.T) {
	t.Run("Self-play always reaches a terminal state", func(t *testing.T) {
		// When: bots play each other across several seeds
		for seed := int64(1); seed <= 20; seed++ {
			engine := playOut(t, seed)

			// Then: the game finished with a coherent outcome
			switch engine.StatusName() {
			case quantum.StatusWon:
				assert.Contains(t, []string{quantum.PlayerX, quantum.PlayerO}, engine.Winner())
			case quantum.StatusDraw:
				assert.Equal(t, quantum.PlayerTie, engine.Winner())
			default:
				t.Fatalf("game ended in status %q", engine.StatusName())
			}
		}
	})

	t.Run("Same seed plays the same game", func(t *testing.T) {
		// When: the same seed drives two full games
		first := playOut(t, 7)
		second := playOut(t, 7)

		// Then: histories and outcomes are identical
		require.Equal(t, first.History(), second.History())
		require.Equal(t, first.Winner(), second.Winner())
		require.Equal(t, first.Marks(), second.Marks())
	})
}

// finishedEngine plays the forced left-column win for X.
func finishedEngine(t *testing.T) *quantum.Game {
	t.Helper()

	engine := quantum.NewGame()
	moves := []quantum.Action{
		{Player: quantum.PlayerX, CellA: 0, CellB: 3},
		{Player: quantum.PlayerO, CellA: 1, CellB: 2},
		{Player: quantum.PlayerX, CellA: 3, CellB: 6},
		{Player: quantum.PlayerO, CellA: 2, CellB: 4},
		{Player: quantum.PlayerX, CellA: 6, CellB: 0},
	}
	for _, move := range moves {
		_, err := engine.SubmitMove(move.Player, move.CellA, move.CellB)
		require.NoError(t, err)
	}

	_, err := engine.SubmitSeed(quantum.PlayerO, 0)
	require.NoError(t, err)
	require.True(t, engine.IsFinished())

	return engine
}
