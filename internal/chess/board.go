package chess

import (
	"fmt"
	"strings"
)

// Position is a (row, column) board coordinate. Row 0 is rank 8, the black
// back rank, so white pawns advance toward lower rows. Validity is a caller
// precondition: index only after IsValid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoPosition is the invalid sentinel used for "unset" coordinates such as a
// cleared en-passant target or an absent king.
var NoPosition = Position{Row: -1, Col: -1}

// IsValid reports whether the coordinate is on the board.
func (p Position) IsValid() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// Square returns the coordinate in algebraic notation, e.g. "e4".
func (p Position) Square() string {
	return fmt.Sprintf("%c%d", 'a'+p.Col, 8-p.Row)
}

// File returns the file letter of the coordinate, e.g. "e".
func (p Position) File() string {
	return fmt.Sprintf("%c", 'a'+p.Col)
}

// Board is a dumb state container: 64 piece cells plus the en-passant target
// and the four castling-rights flags. It enforces no chess semantics; the
// engine layered on top does. Copying a Board with = yields an independent
// clone because every field has value semantics.
type Board struct {
	squares [8][8]Piece
	// en-passant target square, NoPosition when unset
	enPassant Position
	// white kingside, white queenside, black kingside, black queenside
	castling [4]bool
}

// NewBoard returns an empty board with no castling rights and no en-passant
// target.
func NewBoard() *Board {
	b := &Board{}
	b.enPassant = NoPosition
	return b
}

// NewStartingBoard returns a board with the standard starting position and
// full castling rights.
func NewStartingBoard() *Board {
	b := NewBoard()
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col := 0; col < 8; col++ {
		b.squares[0][col] = Piece{Type: back[col], Color: Black}
		b.squares[1][col] = Piece{Type: Pawn, Color: Black}
		b.squares[6][col] = Piece{Type: Pawn, Color: White}
		b.squares[7][col] = Piece{Type: back[col], Color: White}
	}
	b.castling = [4]bool{true, true, true, true}
	return b
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

// At returns the piece at pos.
func (b *Board) At(pos Position) Piece {
	return b.squares[pos.Row][pos.Col]
}

// Set places a piece at pos, overwriting whatever was there.
func (b *Board) Set(pos Position, piece Piece) {
	b.squares[pos.Row][pos.Col] = piece
}

// Remove empties the cell at pos.
func (b *Board) Remove(pos Position) {
	b.squares[pos.Row][pos.Col] = Piece{}
}

// Move copies the piece at from to to, marks it moved and empties from.
// No legality checking of any kind.
func (b *Board) Move(from, to Position) {
	b.squares[to.Row][to.Col] = b.squares[from.Row][from.Col]
	b.squares[to.Row][to.Col].Moved = true
	b.squares[from.Row][from.Col] = Piece{}
}

// FindKing scans for the king of the given side. Returns NoPosition when the
// board holds no such king; callers must treat that as "not found", not as an
// error.
func (b *Board) FindKing(color Color) Position {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if p.Type == King && p.Color == color {
				return Position{Row: row, Col: col}
			}
		}
	}
	return NoPosition
}

// Pieces returns the coordinates of every piece of the given side.
func (b *Board) Pieces(color Color) []Position {
	var positions []Position
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if !b.squares[row][col].IsEmpty() && b.squares[row][col].Color == color {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

// EnPassantTarget returns the current en-passant target square, NoPosition
// when unset.
func (b *Board) EnPassantTarget() Position {
	return b.enPassant
}

// SetEnPassantTarget records pos as the en-passant target.
func (b *Board) SetEnPassantTarget(pos Position) {
	b.enPassant = pos
}

// ClearEnPassantTarget unsets the en-passant target.
func (b *Board) ClearEnPassantTarget() {
	b.enPassant = NoPosition
}

// CanCastleKingside reports the kingside castling-rights flag for color.
func (b *Board) CanCastleKingside(color Color) bool {
	if color == White {
		return b.castling[0]
	}
	return b.castling[2]
}

// CanCastleQueenside reports the queenside castling-rights flag for color.
func (b *Board) CanCastleQueenside(color Color) bool {
	if color == White {
		return b.castling[1]
	}
	return b.castling[3]
}

// DisableCastling clears one castling-rights flag for color.
func (b *Board) DisableCastling(color Color, kingside bool) {
	idx := 0
	if !kingside {
		idx = 1
	}
	if color == Black {
		idx += 2
	}
	b.castling[idx] = false
}

// EnableCastling sets one castling-rights flag for color. Used when building
// positions from external descriptions.
func (b *Board) EnableCastling(color Color, kingside bool) {
	idx := 0
	if !kingside {
		idx = 1
	}
	if color == Black {
		idx += 2
	}
	b.castling[idx] = true
}

// CastlingRights returns a snapshot of the four castling flags.
func (b *Board) CastlingRights() [4]bool {
	return b.castling
}

// SetCastlingRights restores a castling flag snapshot.
func (b *Board) SetCastlingRights(rights [4]bool) {
	b.castling = rights
}

// String renders the board as eight ranks of piece letters, white uppercase,
// for logs and test failure output.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if p.IsEmpty() {
				sb.WriteByte('.')
				continue
			}
			c := fenChar(p.Type)
			if p.Color == Black {
				c = c - 'A' + 'a'
			}
			sb.WriteByte(c)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
