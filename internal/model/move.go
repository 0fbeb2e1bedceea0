package model

import "github.com/aurelien-loyer/chessgame-backend/internal/chess"

// WireMove is a move as submitted by a client: coordinate pair plus an
// optional promotion kind. Flags are derived by the engine, never trusted
// from the wire.
type WireMove struct {
	From      chess.Position  `json:"from"`
	To        chess.Position  `json:"to"`
	Promotion chess.PieceType `json:"promotion,omitempty"`
}

// SimpleMove is the from/to pair clients highlight as the last move.
type SimpleMove struct {
	From chess.Position `json:"from"`
	To   chess.Position `json:"to"`
}

// Ply is one half-move in the displayed history.
type Ply struct {
	From      chess.Position  `json:"from"`
	To        chess.Position  `json:"to"`
	Promotion chess.PieceType `json:"promotion,omitempty"`
	Notation  string          `json:"notation"`
	Coord     string          `json:"coord"`
}

// MovePair groups white's ply with black's reply, the way move lists are
// printed.
type MovePair struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}
