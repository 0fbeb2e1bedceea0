package chess

// PieceType identifies a chess piece kind. TypeNone doubles as the
// empty-square sentinel.
type PieceType string

const (
	TypeNone PieceType = ""
	Pawn     PieceType = "pawn"
	Knight   PieceType = "knight"
	Bishop   PieceType = "bishop"
	Rook     PieceType = "rook"
	Queen    PieceType = "queen"
	King     PieceType = "king"
)

// Letter returns the algebraic-notation letter for the piece type.
// Pawns have no letter.
func (t PieceType) Letter() string {
	switch t {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// Color is the side a piece belongs to. Empty squares carry ColorNone.
type Color string

const (
	ColorNone Color = ""
	White     Color = "white"
	Black     Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return ColorNone
}

// Piece is one board cell: a kind tag, an owning side and a has-moved flag.
// The zero value is an empty square.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
	Moved bool      `json:"hasMoved"`
}

// IsEmpty reports whether the cell holds no piece.
func (p Piece) IsEmpty() bool {
	return p.Type == TypeNone
}
