package apperror

import "errors"

var (
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrGameNotFound      = errors.New("game not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrNoActiveGames     = errors.New("no active games")
	ErrGameNotFinished   = errors.New("game is not finished")
)
