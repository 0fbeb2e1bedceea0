package chess

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FEN exports the position as a standard board-description string: piece
// placement, side to move, castling rights, en-passant target and the
// halfmove/fullmove counters. This is the format handed to a delegated
// external engine.
func (e *Engine) FEN() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			p := e.board.At(Position{Row: row, Col: col})
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			c := fenChar(p.Type)
			if p.Color == Black {
				c = c - 'A' + 'a'
			}
			sb.WriteByte(c)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if e.turn == Black {
		side = "b"
	}

	rights := ""
	if e.board.CanCastleKingside(White) {
		rights += "K"
	}
	if e.board.CanCastleQueenside(White) {
		rights += "Q"
	}
	if e.board.CanCastleKingside(Black) {
		rights += "k"
	}
	if e.board.CanCastleQueenside(Black) {
		rights += "q"
	}
	if rights == "" {
		rights = "-"
	}

	ep := "-"
	if e.board.EnPassantTarget().IsValid() {
		ep = e.board.EnPassantTarget().Square()
	}

	return fmt.Sprintf("%s %s %s %s %d %d", sb.String(), side, rights, ep, e.halfmove, e.fullmove)
}

// ParseFEN builds an engine from a board-description string. Has-moved flags
// are reconstructed: kings and rooks count as unmoved only while a matching
// castling right survives, pawns as unmoved only on their starting rank.
func ParseFEN(fen string) (*Engine, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, errors.Errorf("fen %q: want at least 4 fields, got %d", fen, len(fields))
	}

	board := NewBoard()
	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, errors.Errorf("fen %q: want 8 ranks, got %d", fen, len(rows))
	}
	for row, rank := range rows {
		col := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			if col > 7 {
				return nil, errors.Errorf("fen %q: rank %d overflows", fen, 8-row)
			}
			piece, err := pieceFromFENChar(c)
			if err != nil {
				return nil, errors.Wrapf(err, "fen %q", fen)
			}
			piece.Moved = true
			board.Set(Position{Row: row, Col: col}, piece)
			col++
		}
		if col != 8 {
			return nil, errors.Errorf("fen %q: rank %d has %d files", fen, 8-row, col)
		}
	}

	var turn Color
	switch fields[1] {
	case "w":
		turn = White
	case "b":
		turn = Black
	default:
		return nil, errors.Errorf("fen %q: bad side to move %q", fen, fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			switch fields[2][i] {
			case 'K':
				board.EnableCastling(White, true)
			case 'Q':
				board.EnableCastling(White, false)
			case 'k':
				board.EnableCastling(Black, true)
			case 'q':
				board.EnableCastling(Black, false)
			default:
				return nil, errors.Errorf("fen %q: bad castling field %q", fen, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		target, err := ParseSquare(fields[3])
		if err != nil {
			return nil, errors.Wrapf(err, "fen %q: en passant", fen)
		}
		board.SetEnPassantTarget(target)
	}

	restoreMovedFlags(board)

	eng := NewEngineFromBoard(board, turn)
	if len(fields) >= 6 {
		if hm, err := strconv.Atoi(fields[4]); err == nil {
			eng.halfmove = hm
		}
		if fm, err := strconv.Atoi(fields[5]); err == nil && fm > 0 {
			eng.fullmove = fm
		}
	}
	return eng, nil
}

// restoreMovedFlags clears the has-moved flag where the position proves the
// piece cannot have moved: pawns on their starting rank, and kings/rooks
// still covered by a castling right.
func restoreMovedFlags(board *Board) {
	for col := 0; col < 8; col++ {
		if p := board.At(Position{Row: 1, Col: col}); p.Type == Pawn && p.Color == Black {
			p.Moved = false
			board.Set(Position{Row: 1, Col: col}, p)
		}
		if p := board.At(Position{Row: 6, Col: col}); p.Type == Pawn && p.Color == White {
			p.Moved = false
			board.Set(Position{Row: 6, Col: col}, p)
		}
	}
	unmark := func(pos Position, kind PieceType, color Color) {
		if p := board.At(pos); p.Type == kind && p.Color == color {
			p.Moved = false
			board.Set(pos, p)
		}
	}
	if board.CanCastleKingside(White) || board.CanCastleQueenside(White) {
		unmark(Position{Row: 7, Col: 4}, King, White)
	}
	if board.CanCastleKingside(Black) || board.CanCastleQueenside(Black) {
		unmark(Position{Row: 0, Col: 4}, King, Black)
	}
	if board.CanCastleKingside(White) {
		unmark(Position{Row: 7, Col: 7}, Rook, White)
	}
	if board.CanCastleQueenside(White) {
		unmark(Position{Row: 7, Col: 0}, Rook, White)
	}
	if board.CanCastleKingside(Black) {
		unmark(Position{Row: 0, Col: 7}, Rook, Black)
	}
	if board.CanCastleQueenside(Black) {
		unmark(Position{Row: 0, Col: 0}, Rook, Black)
	}
}

func fenChar(t PieceType) byte {
	switch t {
	case Pawn:
		return 'P'
	case Knight:
		return 'N'
	case Bishop:
		return 'B'
	case Rook:
		return 'R'
	case Queen:
		return 'Q'
	case King:
		return 'K'
	}
	return '?'
}

func pieceFromFENChar(c byte) (Piece, error) {
	color := White
	lower := c
	if c >= 'a' && c <= 'z' {
		color = Black
	} else {
		lower = c - 'A' + 'a'
	}
	var t PieceType
	switch lower {
	case 'p':
		t = Pawn
	case 'n':
		t = Knight
	case 'b':
		t = Bishop
	case 'r':
		t = Rook
	case 'q':
		t = Queen
	case 'k':
		t = King
	default:
		return Piece{}, errors.Errorf("unknown piece char %q", c)
	}
	return Piece{Type: t, Color: color}, nil
}
