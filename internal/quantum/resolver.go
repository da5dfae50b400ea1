package quantum

import (
	"errors"
	"fmt"
)

// Resolver states. A resolver is armed with a pending component when a move
// closes a cycle, consumes exactly one seed choice, and runs the cascade to
// completion before the game continues.
const (
	ResolverIdle        = "idle"
	ResolverSeedChosen  = "seed_chosen"
	ResolverPropagating = "propagating"
	ResolverDone        = "done"
)

var (
	ErrInvalidSeed      = errors.New("seed cell is not valid for the pending collapse")
	ErrNoCycleToResolve = errors.New("no collapse is pending")
	ErrCollapseArmed    = errors.New("a collapse is already pending")
)

// Assignment is one pinned move: the cell it collapsed into, the owning
// player, and the originating move id.
type Assignment struct {
	Cell   int    `json:"cell"`
	Player string `json:"player"`
	MoveID int    `json:"move_id"`
}

type pin struct {
	move Move
	cell int
}

// Resolver collapses one entangled component at a time. It owns no state of
// its own beyond the pending component; the board and graph it mutates are
// the game's.
type Resolver struct {
	board   *Board
	graph   *Graph
	state   string
	pending *Component
	log     []Assignment
}

func NewResolver(board *Board, graph *Graph) *Resolver {
	return &Resolver{
		board: board,
		graph: graph,
		state: ResolverIdle,
	}
}

func (that *Resolver) State() string {
	return that.state
}

// Pending returns the component awaiting a seed choice, or nil.
func (that *Resolver) Pending() *Component {
	return that.pending
}

// Log returns the assignments of the most recent collapse, seed first.
func (that *Resolver) Log() []Assignment {
	log := make([]Assignment, len(that.log))
	copy(log, that.log)
	return log
}

// Arm registers a cycle-closing component for resolution. Moves must not be
// accepted again until Resolve has run.
func (that *Resolver) Arm(component *Component) error {
	if that.pending != nil {
		return ErrCollapseArmed
	}

	that.pending = component
	that.state = ResolverIdle
	that.log = nil

	return nil
}

// Resolve pins every move of the pending component to a single cell,
// starting from the seed cell chosen by the non-moving player. The returned
// log is ordered, seed assignment first, and is fully determined by the
// graph and the seed.
func (that *Resolver) Resolve(seedCell int) ([]Assignment, error) {
	if that.pending == nil {
		return nil, ErrNoCycleToResolve
	}

	component := that.pending
	if !component.HasCell(seedCell) || !that.board.IsLegalTarget(seedCell) {
		return nil, fmt.Errorf("%w: cell %d", ErrInvalidSeed, seedCell)
	}

	that.state = ResolverSeedChosen

	winner, err := that.seedWinner(component, seedCell)
	if err != nil {
		return nil, err
	}

	that.state = ResolverPropagating
	that.log = nil
	queue := []pin{{move: winner, cell: seedCell}}

	for {
		for len(queue) > 0 {
			next, err := that.apply(queue[0])
			if err != nil {
				return nil, err
			}
			queue = append(queue[1:], next...)
		}

		// A seed on a tree cell can drain the queue before the rest of
		// the component is oriented; restart from a forced cell, or from
		// the cycle once no forced cell remains.
		rest := that.stalledPick(component)
		if rest == nil {
			break
		}
		queue = append(queue, *rest)
	}

	that.state = ResolverDone
	that.pending = nil

	return that.Log(), nil
}

// seedWinner picks the move that claims the seed cell. On a cycle cell it is
// the lowest-id cycle edge; on a tree cell it is the cell's single edge
// toward the cycle. Any other pick would strand some move with no cell left
// to occupy.
func (that *Resolver) seedWinner(component *Component, seedCell int) (Move, error) {
	cycle, parents := that.peel(component)

	for _, id := range that.graph.LiveMovesAt(seedCell) {
		if cycle[id] {
			move, _ := that.graph.Move(id)
			return move, nil
		}
	}

	if id, ok := parents[seedCell]; ok {
		move, _ := that.graph.Move(id)
		return move, nil
	}

	return Move{}, fmt.Errorf("%w: cell %d has no live moves", ErrInvalidSeed, seedCell)
}

// peel strips leaf edges from the component until only its cycle remains.
// Each tree cell records the edge peeled while the cell was a leaf: the one
// move that can ever claim it. Cycle cells keep degree two throughout, so
// cycle edges are exactly the unpeeled ones.
func (that *Resolver) peel(component *Component) (map[int]bool, map[int]int) {
	degree := make(map[int]int, len(component.Cells))
	peeled := make(map[int]bool, len(component.Moves))
	parents := make(map[int]int, len(component.Cells))

	for _, cell := range component.Cells {
		degree[cell] = len(that.graph.LiveMovesAt(cell))
	}

	queue := make([]int, 0, len(component.Cells))
	for _, cell := range component.Cells {
		if degree[cell] == 1 {
			queue = append(queue, cell)
		}
	}

	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		if degree[cell] != 1 {
			continue
		}

		for _, id := range that.graph.LiveMovesAt(cell) {
			if peeled[id] {
				continue
			}

			move, _ := that.graph.Move(id)
			other := move.Other(cell)

			peeled[id] = true
			parents[cell] = id
			degree[cell]--
			degree[other]--
			if degree[other] == 1 {
				queue = append(queue, other)
			}

			break
		}
	}

	cycle := make(map[int]bool, len(component.Moves))
	for _, id := range component.Moves {
		if !peeled[id] {
			cycle[id] = true
		}
	}

	return cycle, parents
}

// apply pins one move to one cell and reports the pins it forces. The chain
// continuation (the pinned move's other cell, once it holds a single live
// edge) is queued before displacement pins, so a cascade walks each chain
// outward from the seed.
func (that *Resolver) apply(p pin) ([]pin, error) {
	move, live := that.graph.Move(p.move.ID)
	if !live {
		// already pinned along an earlier cascade path
		return nil, nil
	}

	if err := that.board.ApplyCollapse(p.cell, move.Player, move.ID); err != nil {
		return nil, fmt.Errorf("collapse cascade broke an invariant: %w", err)
	}

	if err := that.graph.RemoveMove(move.ID); err != nil {
		return nil, fmt.Errorf("collapse cascade broke an invariant: %w", err)
	}

	that.log = append(that.log, Assignment{Cell: p.cell, Player: move.Player, MoveID: move.ID})

	var next []pin

	other := move.Other(p.cell)
	if that.board.IsLegalTarget(other) {
		if ids := that.graph.LiveMovesAt(other); len(ids) == 1 {
			forced, _ := that.graph.Move(ids[0])
			next = append(next, pin{move: forced, cell: other})
		}
	}

	// every other live move at the collapsed cell lost this candidate and
	// must take its remaining one
	for _, id := range that.graph.LiveMovesAt(p.cell) {
		displaced, _ := that.graph.Move(id)
		next = append(next, pin{move: displaced, cell: displaced.Other(p.cell)})
	}

	return next, nil
}

// stalledPick restarts a drained cascade, or returns nil when the component
// is fully resolved. A cell left with exactly one live edge takes that edge:
// its move has no other viable home, and claiming the move anywhere else
// would strand the cell and double-book another one downstream. Only when
// every remaining cell carries two live edges (the unoriented cycle) does
// the lowest cell claim its lowest-id move.
func (that *Resolver) stalledPick(component *Component) *pin {
	var cyclePick *pin

	for _, cell := range component.Cells {
		if !that.board.IsLegalTarget(cell) {
			continue
		}

		ids := that.graph.LiveMovesAt(cell)
		if len(ids) == 0 {
			continue
		}

		move, _ := that.graph.Move(ids[0])
		if len(ids) == 1 {
			return &pin{move: move, cell: cell}
		}

		if cyclePick == nil {
			cyclePick = &pin{move: move, cell: cell}
		}
	}

	return cyclePick
}
