package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/quantum"
)

const (
	StatusWaiting    = "waiting"
	StatusOngoing    = "ongoing"
	StatusCollapsing = "collapsing"
	StatusFinished   = "finished"

	PlayerX   = quantum.PlayerX
	PlayerO   = quantum.PlayerO
	PlayerTie = quantum.PlayerTie

	EmptyCell = ""
)

const (
	PublicType  = "public"
	PrivateType = "private"
	WithBotType = "bot"
	ArenaType   = "arena"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is the stored view of one match. The action history is the source of
// truth: the playable engine is rebuilt from it on every load, and the
// board and standing fields are denormalized from the engine for display.
type Game struct {
	ID           string               `json:"id"`
	Board        [9]string            `json:"board"`
	Winner       string               `json:"winner,omitempty"`
	Status       string               `json:"status"`
	Turn         string               `json:"player_turn"`
	Chooser      string               `json:"chooser,omitempty"`
	History      []quantum.Action     `json:"history,omitempty"`
	LastCollapse []quantum.Assignment `json:"last_collapse,omitempty"`
	CollapseLog  []quantum.Assignment `json:"collapse_log,omitempty"`
	Players      []*Player            `json:"players,omitempty"`
	Type         string               `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:     id,
		Turn:   PlayerX,
		Status: StatusWaiting,
		Type:   gameType,
	}
}

// Engine rebuilds the playable engine from the recorded history.
func (that *Game) Engine() (*quantum.Game, error) {
	engine, err := quantum.Replay(that.History)
	if err != nil {
		return nil, fmt.Errorf("failed to replay game %s: %w", that.ID, err)
	}

	return engine, nil
}

// Sync copies the engine's standing back into the stored fields. A waiting
// game stays waiting: seating players is a session concern the engine knows
// nothing about.
func (that *Game) Sync(engine *quantum.Game) {
	that.Board = engine.Marks()
	that.History = engine.History()
	that.LastCollapse = engine.Log()
	that.CollapseLog = engine.CollapseLog()
	that.Turn = engine.Turn()
	that.Chooser = engine.Chooser()
	that.Winner = engine.Winner()

	switch engine.StatusName() {
	case quantum.StatusCollapsing:
		that.Status = StatusCollapsing
	case quantum.StatusWon, quantum.StatusDraw:
		that.Status = StatusFinished
	default:
		if !that.IsWaiting() {
			that.Status = StatusOngoing
		}
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsCollapsing() bool {
	return that.Status == StatusCollapsing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

// ConfirmActiveState reports whether the game accepts player input, which
// covers both regular moves and pending seed choices.
func (that *Game) ConfirmActiveState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return quantum.ErrGameOver
	case that.IsOngoing(), that.IsCollapsing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// PlayerByMark returns the seated player holding the mark, or nil.
func (that *Game) PlayerByMark(mark string) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

// BotPlayer returns the seated bot, or nil for human-only games.
func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

func (that *Game) GetRandomMarks() (string, string) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
