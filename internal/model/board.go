package model

import "github.com/aurelien-loyer/chessgame-backend/internal/chess"

// BoardState is the client-facing board snapshot: an 8x8 grid of nullable
// pieces plus both king locations, serialized into every game-state message.
type BoardState struct {
	Board             [8][8]*chess.Piece `json:"board"`
	WhiteKingPosition chess.Position     `json:"whiteKingPosition"`
	BlackKingPosition chess.Position     `json:"blackKingPosition"`
}

func snapshotBoard(board *chess.Board) *BoardState {
	bs := &BoardState{
		WhiteKingPosition: board.FindKing(chess.White),
		BlackKingPosition: board.FindKing(chess.Black),
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := board.At(chess.Position{Row: row, Col: col})
			if p.IsEmpty() {
				continue
			}
			piece := p
			bs.Board[row][col] = &piece
		}
	}
	return bs
}
