package quantum

import (
	"errors"
	"fmt"
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	// BoardSize is the number of cells on the classical 3x3 board.
	BoardSize = 9
)

var (
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrAlreadyCollapsed = errors.New("cell is already collapsed")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Cell is one square of the classical board. The zero value is an empty
// cell; a collapsed cell records the owning player and the move that was
// pinned to it, and never changes again.
type Cell struct {
	Mark   string `json:"mark,omitempty"`
	MoveID int    `json:"move_id,omitempty"`
}

func (that Cell) IsCollapsed() bool {
	return that.Mark != ""
}

// Board is the classical ground truth. Cells only ever change by collapsing
// a move into them; nothing else writes marks.
type Board struct {
	cells [BoardSize]Cell
}

func NewBoard() *Board {
	return &Board{}
}

// IsLegalTarget reports whether a move may still place a superposed mark on
// the cell: the index is on the board and the cell has not collapsed.
func (that *Board) IsLegalTarget(cell int) bool {
	if cell < 0 || cell >= BoardSize {
		return false
	}
	return !that.cells[cell].IsCollapsed()
}

// ApplyCollapse pins a move to the cell. Collapsing an already collapsed
// cell is an engine bug, not a user error; callers must treat it as a broken
// invariant.
func (that *Board) ApplyCollapse(cell int, player string, moveID int) error {
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if that.cells[cell].IsCollapsed() {
		return fmt.Errorf("%w: cell %d", ErrAlreadyCollapsed, cell)
	}

	that.cells[cell] = Cell{Mark: player, MoveID: moveID}

	return nil
}

func (that *Board) Cell(cell int) Cell {
	if cell < 0 || cell >= BoardSize {
		return Cell{}
	}
	return that.cells[cell]
}

// Cells returns a copy of the board.
func (that *Board) Cells() [BoardSize]Cell {
	return that.cells
}

// Marks returns the board as plain player marks, empty string for empty
// cells.
func (that *Board) Marks() [BoardSize]string {
	var marks [BoardSize]string
	for i, cell := range that.cells {
		marks[i] = cell.Mark
	}
	return marks
}

func (that *Board) CollapsedCount() int {
	count := 0
	for _, cell := range that.cells {
		if cell.IsCollapsed() {
			count++
		}
	}
	return count
}

// Winner returns the player holding a completed line, or an empty string.
// A single collapse can complete lines for both players at once; the line
// finished first wins, which is the line whose newest mark carries the
// smallest move id.
func (that *Board) Winner() string {
	winner := ""
	winnerMove := 0

	for _, combo := range WinCombos {
		a, b, c := that.cells[combo[0]], that.cells[combo[1]], that.cells[combo[2]]
		if !a.IsCollapsed() || a.Mark != b.Mark || b.Mark != c.Mark {
			continue
		}

		newest := a.MoveID
		if b.MoveID > newest {
			newest = b.MoveID
		}
		if c.MoveID > newest {
			newest = c.MoveID
		}

		if winner == "" || newest < winnerMove {
			winner = a.Mark
			winnerMove = newest
		}
	}

	return winner
}
