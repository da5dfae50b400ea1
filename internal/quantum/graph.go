package quantum

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/lvlath/go/bfs"
	"github.com/lvlath/go/core"
)

var (
	ErrDuplicatePair = errors.New("cell pair is already superposed by a live move")
	ErrMoveNotLive   = errors.New("move is not live")
	ErrMoveExists    = errors.New("move id is already live")
)

// Move is one quantum move: a player's mark held in superposition across two
// candidate cells until a collapse pins it to exactly one of them.
type Move struct {
	ID     int    `json:"id"`
	Player string `json:"player"`
	CellA  int    `json:"cell_a"`
	CellB  int    `json:"cell_b"`
}

// Other returns the candidate cell opposite to the given one.
func (that Move) Other(cell int) int {
	if cell == that.CellA {
		return that.CellB
	}
	return that.CellA
}

func (that Move) Touches(cell int) bool {
	return that.CellA == cell || that.CellB == cell
}

// Component is a maximal connected set of cells and live moves. One is
// reported whenever a new move closes a cycle, and the whole of it resolves
// in a single collapse.
type Component struct {
	Cells []int `json:"cells"`
	Moves []int `json:"moves"`
}

func (that *Component) HasCell(cell int) bool {
	for _, c := range that.Cells {
		if c == cell {
			return true
		}
	}
	return false
}

func (that *Component) HasMove(id int) bool {
	for _, m := range that.Moves {
		if m == id {
			return true
		}
	}
	return false
}

// Graph tracks live moves as undirected edges between board cells. An edge
// exists exactly while its move is live: pinning a move removes its edge,
// and nothing else does.
type Graph struct {
	adj    *core.Graph
	moves  map[int]Move   // live moves by move id
	edges  map[int]string // move id -> adjacency edge id
	byEdge map[string]int // adjacency edge id -> move id
}

func NewGraph() *Graph {
	adj, _ := core.NewGraph() // undirected, multi-edges off: duplicate pairs are rejected
	for cell := 0; cell < BoardSize; cell++ {
		_ = adj.AddVertex(cellID(cell))
	}

	return &Graph{
		adj:    adj,
		moves:  make(map[int]Move),
		edges:  make(map[int]string),
		byEdge: make(map[string]int),
	}
}

func cellID(cell int) string {
	return strconv.Itoa(cell)
}

// AddMove inserts the move as a live edge. When the edge closes a cycle it
// returns the connected component that must now collapse; otherwise the
// component is nil.
func (that *Graph) AddMove(move Move) (*Component, error) {
	if move.CellA < 0 || move.CellA >= BoardSize || move.CellB < 0 || move.CellB >= BoardSize {
		return nil, fmt.Errorf("%w: pair {%d, %d}", ErrInvalidCell, move.CellA, move.CellB)
	}

	if move.CellA == move.CellB {
		return nil, fmt.Errorf("%w: cell %d", ErrInvalidCell, move.CellA)
	}

	if _, ok := that.moves[move.ID]; ok {
		return nil, fmt.Errorf("%w: move %d", ErrMoveExists, move.ID)
	}

	closesCycle := that.connected(move.CellA, move.CellB)

	edgeID, err := that.adj.AddEdge(cellID(move.CellA), cellID(move.CellB), 0)
	if err != nil {
		if errors.Is(err, core.ErrMultiEdgeNotAllowed) {
			return nil, fmt.Errorf("%w: cells %d and %d", ErrDuplicatePair, move.CellA, move.CellB)
		}
		return nil, fmt.Errorf("failed to add edge: %w", err)
	}

	that.moves[move.ID] = move
	that.edges[move.ID] = edgeID
	that.byEdge[edgeID] = move.ID

	if !closesCycle {
		return nil, nil
	}

	return that.ComponentOf(move.CellA), nil
}

// connected reports whether two cells are already linked by live moves.
func (that *Graph) connected(a, b int) bool {
	result, err := bfs.BFS(that.adj, cellID(a))
	if err != nil {
		return false
	}

	_, reached := result.Depth[cellID(b)]

	return reached
}

// RemoveMove drops the live edge of a pinned move. The move id stays valid
// in collapse history; only its superposition is gone.
func (that *Graph) RemoveMove(moveID int) error {
	edgeID, ok := that.edges[moveID]
	if !ok {
		return fmt.Errorf("%w: move %d", ErrMoveNotLive, moveID)
	}

	if err := that.adj.RemoveEdge(edgeID); err != nil {
		return fmt.Errorf("failed to remove edge: %w", err)
	}

	delete(that.moves, moveID)
	delete(that.edges, moveID)
	delete(that.byEdge, edgeID)

	return nil
}

// Move returns a live move by id.
func (that *Graph) Move(id int) (Move, bool) {
	move, ok := that.moves[id]
	return move, ok
}

// HasLivePair reports whether some live move already spans the unordered
// cell pair.
func (that *Graph) HasLivePair(a, b int) bool {
	return that.adj.HasEdge(cellID(a), cellID(b))
}

// LiveMovesAt returns the ids of live moves touching the cell, ascending.
func (that *Graph) LiveMovesAt(cell int) []int {
	edges, err := that.adj.Neighbors(cellID(cell))
	if err != nil {
		return nil
	}

	ids := make([]int, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, that.byEdge[edge.ID])
	}
	sort.Ints(ids)

	return ids
}

// LiveMoves returns every live move, ascending by move id.
func (that *Graph) LiveMoves() []Move {
	moves := make([]Move, 0, len(that.moves))
	for _, move := range that.moves {
		moves = append(moves, move)
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].ID < moves[j].ID })

	return moves
}

func (that *Graph) LiveCount() int {
	return len(that.moves)
}

// ComponentOf gathers every cell and live move reachable from the given
// cell. Cells and move ids come back sorted ascending, so equal graphs
// always describe equal components.
func (that *Graph) ComponentOf(cell int) *Component {
	visited := map[int]bool{cell: true}
	queue := []int{cell}
	cells := make([]int, 0, BoardSize)
	moveSet := make(map[int]bool)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		cells = append(cells, current)

		for _, id := range that.LiveMovesAt(current) {
			moveSet[id] = true

			other := that.moves[id].Other(current)
			if !visited[other] {
				visited[other] = true
				queue = append(queue, other)
			}
		}
	}

	sort.Ints(cells)

	moves := make([]int, 0, len(moveSet))
	for id := range moveSet {
		moves = append(moves, id)
	}
	sort.Ints(moves)

	return &Component{Cells: cells, Moves: moves}
}
