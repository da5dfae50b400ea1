package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/quantum-tictactoe-backend/internal/quantum"
)

// ArchiveRepository keeps finished games. The stored history is complete,
// so any archived game can be replayed move for move.
type ArchiveRepository interface {
	Save(ctx context.Context, game *entity.Game) error
	FindByID(ctx context.Context, id string) (*entity.Game, error)
	ListFinished(ctx context.Context, limit int) ([]*entity.Game, error)
}

type archiveRepository struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &archiveRepository{
		conn: conn,
	}
}

func (that *archiveRepository) Save(ctx context.Context, game *entity.Game) error {
	if !game.IsFinished() {
		return apperror.ErrGameNotFinished
	}

	historyJSON, err := json.Marshal(game.History)
	if err != nil {
		return fmt.Errorf("can't marshal history: %w", err)
	}

	boardJSON, err := json.Marshal(game.Board)
	if err != nil {
		return fmt.Errorf("can't marshal board: %w", err)
	}

	collapseJSON, err := json.Marshal(game.CollapseLog)
	if err != nil {
		return fmt.Errorf("can't marshal collapse log: %w", err)
	}

	query := `INSERT OR REPLACE INTO games (id, game_type, status, winner, actions, board, history, collapse_log, archived_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`

	_, err = that.conn.ExecContext(ctx, query,
		game.ID, game.Type, game.Status, game.Winner, len(game.History),
		string(boardJSON), string(historyJSON), string(collapseJSON))
	if err != nil {
		return fmt.Errorf("can't save game: %w", err)
	}

	return nil
}

func (that *archiveRepository) FindByID(ctx context.Context, id string) (*entity.Game, error) {
	query := `SELECT id, game_type, status, winner, board, history, collapse_log FROM games WHERE id = ?`

	game, err := scanGame(that.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find game: %w", err)
	}

	return game, nil
}

func (that *archiveRepository) ListFinished(ctx context.Context, limit int) ([]*entity.Game, error) {
	query := `SELECT id, game_type, status, winner, board, history, collapse_log FROM games ORDER BY archived_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list games: %w", err)
	}
	defer rows.Close()

	var games []*entity.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("can't scan game: %w", err)
		}

		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read games: %w", err)
	}

	return games, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*entity.Game, error) {
	var game entity.Game
	var boardJSON, historyJSON, collapseJSON string

	if err := row.Scan(&game.ID, &game.Type, &game.Status, &game.Winner, &boardJSON, &historyJSON, &collapseJSON); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(boardJSON), &game.Board); err != nil {
		return nil, fmt.Errorf("can't unmarshal board: %w", err)
	}

	var history []quantum.Action
	if err := json.Unmarshal([]byte(historyJSON), &history); err != nil {
		return nil, fmt.Errorf("can't unmarshal history: %w", err)
	}
	game.History = history

	var collapseLog []quantum.Assignment
	if err := json.Unmarshal([]byte(collapseJSON), &collapseLog); err != nil {
		return nil, fmt.Errorf("can't unmarshal collapse log: %w", err)
	}
	game.CollapseLog = collapseLog

	return &game, nil
}
