package entity

import "strings"

const botIDPrefix = "bot:"

type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

// NewBotPlayer seats an automated opponent in the game. Bot ids are derived
// from the game id, so a game never holds two bots with the same seat.
func NewBotPlayer(gameID, seat string) *Player {
	id := botIDPrefix + gameID
	if seat != "" {
		id += ":" + seat
	}

	return &Player{
		ID:     id,
		GameID: gameID,
	}
}

func (that *Player) IsBot() bool {
	return strings.HasPrefix(that.ID, botIDPrefix)
}
