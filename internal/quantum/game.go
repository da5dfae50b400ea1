package quantum

import (
	"errors"
	"fmt"
)

// Game statuses. A game leaves StatusOngoing only through StatusCollapsing
// (a cycle is pending its seed choice) or a terminal status.
const (
	StatusOngoing    = "ongoing"
	StatusCollapsing = "collapsing"
	StatusWon        = "won"
	StatusDraw       = "draw"
)

// Action kinds recorded in a game history.
const (
	ActionMove = "move"
	ActionSeed = "seed"
)

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrOutOfTurn     = errors.New("it's not your turn")
	ErrGameOver      = errors.New("game is already over")
	ErrNotYourChoice = errors.New("collapse choice belongs to the other player")
	ErrUnknownAction = errors.New("unknown action kind")
)

// Action is one recorded player input. Move actions carry both candidate
// cells; seed actions carry the chosen cell in CellA.
type Action struct {
	Kind   string `json:"kind"`
	Player string `json:"player"`
	CellA  int    `json:"cell_a"`
	CellB  int    `json:"cell_b"`
}

// MoveResult reports what a submitted move did: its assigned id, and the
// entangled component when the move closed a cycle and play is now paused
// on the opponent's seed choice.
type MoveResult struct {
	MoveID          int        `json:"move_id"`
	CollapsePending bool       `json:"collapse_pending"`
	Component       *Component `json:"component,omitempty"`
}

// CollapseResult reports a finished collapse: the ordered assignment log
// and the game standing after the single post-collapse win check.
type CollapseResult struct {
	Log    []Assignment `json:"log"`
	Status string       `json:"status"`
	Winner string       `json:"winner,omitempty"`
}

// Snapshot is the public view of a game. It shares no references with the
// engine, so bots and presentation layers can hold it freely.
type Snapshot struct {
	Status       string          `json:"status"`
	Turn         string          `json:"turn,omitempty"`
	Chooser      string          `json:"chooser,omitempty"`
	Winner       string          `json:"winner,omitempty"`
	MoveCount    int             `json:"move_count"`
	Board        [BoardSize]Cell `json:"board"`
	LiveMoves    []Move          `json:"live_moves"`
	Pending      *Component      `json:"pending,omitempty"`
	LegalMoves   [][2]int        `json:"legal_moves,omitempty"`
	LastCollapse []Assignment    `json:"last_collapse,omitempty"`
}

// Game drives one quantum tic-tac-toe match from the first move to a win or
// a draw. It is a single-writer structure: callers serialize access to one
// game, the way one stores and loads it as a unit.
type Game struct {
	board    *Board
	graph    *Graph
	resolver *Resolver

	turn      string // player owed the next action: the mover, or the chooser while collapsing
	chooser   string // player owed the seed choice while a collapse is pending
	status    string
	winner    string
	moveCount int

	history      []Action
	lastCollapse []Assignment
	collapseLog  []Assignment
}

func NewGame() *Game {
	board := NewBoard()
	graph := NewGraph()

	return &Game{
		board:    board,
		graph:    graph,
		resolver: NewResolver(board, graph),
		turn:     PlayerX,
		status:   StatusOngoing,
	}
}

// SubmitMove places the player's mark in superposition on two distinct
// uncollapsed cells. When the move closes an entanglement cycle the game
// pauses: the opponent owes a seed choice and no further moves are accepted
// until SubmitSeed runs.
func (that *Game) SubmitMove(player string, cellA, cellB int) (*MoveResult, error) {
	if that.IsFinished() {
		return nil, ErrGameOver
	}

	if that.status == StatusCollapsing {
		return nil, ErrOutOfTurn
	}

	if player != that.turn {
		return nil, ErrOutOfTurn
	}

	if cellA == cellB {
		return nil, fmt.Errorf("%w: cells must be distinct", ErrIllegalMove)
	}

	if !that.board.IsLegalTarget(cellA) {
		return nil, fmt.Errorf("%w: cell %d is not playable", ErrIllegalMove, cellA)
	}

	if !that.board.IsLegalTarget(cellB) {
		return nil, fmt.Errorf("%w: cell %d is not playable", ErrIllegalMove, cellB)
	}

	if that.graph.HasLivePair(cellA, cellB) {
		return nil, fmt.Errorf("%w: cells %d and %d are already superposed together", ErrIllegalMove, cellA, cellB)
	}

	that.moveCount++
	move := Move{ID: that.moveCount, Player: player, CellA: cellA, CellB: cellB}

	component, err := that.graph.AddMove(move)
	if err != nil {
		that.moveCount--
		return nil, fmt.Errorf("failed to record move: %w", err)
	}

	that.history = append(that.history, Action{Kind: ActionMove, Player: player, CellA: cellA, CellB: cellB})

	result := &MoveResult{MoveID: move.ID}

	if component != nil {
		if err = that.resolver.Arm(component); err != nil {
			return nil, fmt.Errorf("failed to arm collapse: %w", err)
		}

		that.status = StatusCollapsing
		that.chooser = toggleMark(player)
		that.turn = that.chooser
		result.CollapsePending = true
		result.Component = component

		return result, nil
	}

	that.turn = toggleMark(player)
	that.refreshTerminal()

	return result, nil
}

// SubmitSeed resolves the pending collapse from the chosen cell. Only the
// player who did not close the cycle may choose, and the same player moves
// first once play resumes.
func (that *Game) SubmitSeed(player string, cell int) (*CollapseResult, error) {
	if that.IsFinished() {
		return nil, ErrGameOver
	}

	if that.status != StatusCollapsing {
		return nil, ErrNoCycleToResolve
	}

	if player != that.chooser {
		return nil, ErrNotYourChoice
	}

	log, err := that.resolver.Resolve(cell)
	if err != nil {
		return nil, err
	}

	that.history = append(that.history, Action{Kind: ActionSeed, Player: player, CellA: cell})
	that.lastCollapse = log
	that.collapseLog = append(that.collapseLog, log...)
	that.chooser = ""
	that.status = StatusOngoing
	that.refreshTerminal()

	return &CollapseResult{Log: log, Status: that.status, Winner: that.winner}, nil
}

// refreshTerminal runs the win check and the no-legal-move draw check. Wins
// are only ever produced by collapses, but a plain move can still exhaust
// the last legal pair and end the game.
func (that *Game) refreshTerminal() {
	if winner := that.board.Winner(); winner != "" {
		that.status = StatusWon
		that.winner = winner
		that.turn = ""

		return
	}

	if len(that.LegalMoves()) == 0 {
		that.status = StatusDraw
		that.winner = PlayerTie
		that.turn = ""
	}
}

// LegalMoves enumerates every playable pair: two distinct uncollapsed cells
// not already superposed together by a live move. Pairs come back sorted,
// lower cell first.
func (that *Game) LegalMoves() [][2]int {
	var pairs [][2]int

	for a := 0; a < BoardSize; a++ {
		if !that.board.IsLegalTarget(a) {
			continue
		}

		for b := a + 1; b < BoardSize; b++ {
			if !that.board.IsLegalTarget(b) || that.graph.HasLivePair(a, b) {
				continue
			}

			pairs = append(pairs, [2]int{a, b})
		}
	}

	return pairs
}

// Status returns the current public view of the game.
func (that *Game) Status() *Snapshot {
	snapshot := &Snapshot{
		Status:       that.status,
		Turn:         that.turn,
		Chooser:      that.chooser,
		Winner:       that.winner,
		MoveCount:    that.moveCount,
		Board:        that.board.Cells(),
		LiveMoves:    that.graph.LiveMoves(),
		LastCollapse: that.Log(),
	}

	if that.status == StatusCollapsing {
		snapshot.Pending = that.resolver.Pending()
	}

	if that.status == StatusOngoing {
		snapshot.LegalMoves = that.LegalMoves()
	}

	return snapshot
}

func (that *Game) Turn() string {
	return that.turn
}

func (that *Game) Chooser() string {
	return that.chooser
}

func (that *Game) StatusName() string {
	return that.status
}

func (that *Game) Winner() string {
	return that.winner
}

func (that *Game) MoveCount() int {
	return that.moveCount
}

func (that *Game) IsOngoing() bool {
	return that.status == StatusOngoing
}

func (that *Game) IsCollapsing() bool {
	return that.status == StatusCollapsing
}

func (that *Game) IsFinished() bool {
	return that.status == StatusWon || that.status == StatusDraw
}

// Pending returns the component awaiting its seed choice, or nil.
func (that *Game) Pending() *Component {
	if that.status != StatusCollapsing {
		return nil
	}
	return that.resolver.Pending()
}

// Log returns the assignments of the most recent collapse, seed first.
func (that *Game) Log() []Assignment {
	if len(that.lastCollapse) == 0 {
		return nil
	}

	log := make([]Assignment, len(that.lastCollapse))
	copy(log, that.lastCollapse)

	return log
}

// CollapseLog returns every collapse assignment of the game so far, in the
// order the cells were pinned.
func (that *Game) CollapseLog() []Assignment {
	if len(that.collapseLog) == 0 {
		return nil
	}

	log := make([]Assignment, len(that.collapseLog))
	copy(log, that.collapseLog)

	return log
}

// History returns the recorded actions, oldest first. Feeding them through
// Replay rebuilds this exact game.
func (that *Game) History() []Action {
	if len(that.history) == 0 {
		return nil
	}

	history := make([]Action, len(that.history))
	copy(history, that.history)

	return history
}

// MovesAt returns the live moves touching the cell, ascending by id.
func (that *Game) MovesAt(cell int) []Move {
	ids := that.graph.LiveMovesAt(cell)
	moves := make([]Move, 0, len(ids))
	for _, id := range ids {
		move, _ := that.graph.Move(id)
		moves = append(moves, move)
	}

	return moves
}

// SuperpositionCount reports how many live moves currently hold a candidate
// mark on the cell.
func (that *Game) SuperpositionCount(cell int) int {
	return len(that.graph.LiveMovesAt(cell))
}

func (that *Game) Marks() [BoardSize]string {
	return that.board.Marks()
}

// Replay rebuilds a game by feeding a recorded history back through the
// normal submission contract. Identical histories produce identical games,
// collapse logs included.
func Replay(actions []Action) (*Game, error) {
	game := NewGame()

	for i, action := range actions {
		switch action.Kind {
		case ActionMove:
			if _, err := game.SubmitMove(action.Player, action.CellA, action.CellB); err != nil {
				return nil, fmt.Errorf("replay action %d: %w", i, err)
			}
		case ActionSeed:
			if _, err := game.SubmitSeed(action.Player, action.CellA); err != nil {
				return nil, fmt.Errorf("replay action %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("replay action %d: %w: %q", i, ErrUnknownAction, action.Kind)
		}
	}

	return game, nil
}

// toggleMark returns the opposing player's mark.
func toggleMark(currentMark string) string {
	if currentMark == PlayerX {
		return PlayerO
	}

	return PlayerX
}
