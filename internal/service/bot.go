package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/quantum"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
	ErrNoPendingChoice  = errors.New("no collapse choice is pending")
)

// BotService plays for the automated opponent. It reads only the public
// snapshot and submits through the same contract as a human player, so it
// can never reach for engine internals.
type BotService interface {
	MakeTurn(engine *quantum.Game, mark string) error
	ChooseSeed(engine *quantum.Game, mark string) error
}

type botService struct {
	rnd *rand.Rand
}

// NewBotService builds a bot driven by the given source. Games played with
// the same seed pick the same moves.
func NewBotService(rnd *rand.Rand) BotService {
	return &botService{
		rnd: rnd,
	}
}

func (that *botService) MakeTurn(engine *quantum.Game, mark string) error {
	snapshot := engine.Status()

	if len(snapshot.LegalMoves) == 0 {
		return ErrNoAvailableMoves
	}

	pair := snapshot.LegalMoves[that.rnd.Intn(len(snapshot.LegalMoves))]

	if _, err := engine.SubmitMove(mark, pair[0], pair[1]); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

func (that *botService) ChooseSeed(engine *quantum.Game, mark string) error {
	snapshot := engine.Status()

	if snapshot.Pending == nil {
		return ErrNoPendingChoice
	}

	cell := snapshot.Pending.Cells[that.rnd.Intn(len(snapshot.Pending.Cells))]

	if _, err := engine.SubmitSeed(mark, cell); err != nil {
		return fmt.Errorf("bot failed to choose seed: %w", err)
	}

	return nil
}
