package chess

import (
	"github.com/pkg/errors"
)

// Move is a fully self-describing move value: it can be serialized, replayed
// or sent over a wire without the board that produced it.
type Move struct {
	From        Position  `json:"from"`
	To          Position  `json:"to"`
	Promotion   PieceType `json:"promotion,omitempty"`
	IsCapture   bool      `json:"isCapture,omitempty"`
	IsCastle    bool      `json:"isCastle,omitempty"`
	IsEnPassant bool      `json:"isEnPassant,omitempty"`
}

// Coord returns the move in coordinate notation: source square, destination
// square and an optional promotion letter, e.g. "e2e4" or "e7e8q".
func (m Move) Coord() string {
	s := m.From.Square() + m.To.Square()
	switch m.Promotion {
	case Queen:
		s += "q"
	case Rook:
		s += "r"
	case Bishop:
		s += "b"
	case Knight:
		s += "n"
	}
	return s
}

// ParseCoord parses four- or five-character coordinate notation into a bare
// Move. Only the coordinates and the promotion kind are recovered; capture,
// castle and en-passant flags are derived when the move is matched against
// the legal-move list.
func ParseCoord(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, errors.Errorf("coordinate move %q: want 4 or 5 characters", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, errors.Wrapf(err, "coordinate move %q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, errors.Wrapf(err, "coordinate move %q", s)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			m.Promotion = Queen
		case 'r':
			m.Promotion = Rook
		case 'b':
			m.Promotion = Bishop
		case 'n':
			m.Promotion = Knight
		default:
			return Move{}, errors.Errorf("coordinate move %q: unknown promotion %q", s, s[4])
		}
	}
	return m, nil
}

// ParseSquare parses algebraic square notation such as "e4".
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoPosition, errors.Errorf("invalid square %q", s)
	}
	return Position{Row: 8 - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

// moveRecord captures everything needed to restore the board exactly after a
// move: the move itself, the moving piece with its prior has-moved flag, the
// captured piece and the square it sat on (which differs from To on en
// passant), plus the pre-move en-passant target, castling rights and halfmove
// clock.
type moveRecord struct {
	move       Move
	moved      Piece
	captured   Piece
	capturedAt Position
	enPassant  Position
	castling   [4]bool
	halfmove   int
}
