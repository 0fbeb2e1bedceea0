package model

import "github.com/aurelien-loyer/chessgame-backend/internal/chess"

// Player is a connected participant waiting for or playing a game.
type Player struct {
	ID    string
	Color chess.Color
}

// ClientPlayer is the per-side entry embedded in game-state messages.
type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    chess.Color `json:"color"`
	TimeLeft int         `json:"timeLeft"`
}
