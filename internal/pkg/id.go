package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const gameIDLength = 6

// GenerateGameID returns a short numeric code players can share to join a
// game.
func GenerateGameID() (string, error) {
	digits := make([]byte, 0, gameIDLength)

	for i := 0; i < gameIDLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate game id: %w", err)
		}

		digits = append(digits, byte('0'+n.Int64()))
	}

	return string(digits), nil
}

// GenerateSessionID returns a unique id for a player session.
func GenerateSessionID() string {
	return uuid.NewString()
}
