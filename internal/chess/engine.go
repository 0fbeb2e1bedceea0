package chess

// Movement offset tables shared by generation and attack detection.
var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	bishopDirs    = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	rookDirs      = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	queenDirs     = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

	promotionKinds = [4]PieceType{Queen, Rook, Bishop, Knight}
)

// Engine is the single source of truth for which moves are legal. It borrows
// a Board, tracks the side to move and keeps a move-record stack so every
// applied move can be undone exactly.
//
// All queries take the side they ask about explicitly; nothing ever flips the
// turn temporarily.
type Engine struct {
	board    *Board
	turn     Color
	history  []moveRecord
	halfmove int
	fullmove int
}

// NewEngine returns an engine over the standard starting position with white
// to move.
func NewEngine() *Engine {
	return NewEngineFromBoard(NewStartingBoard(), White)
}

// NewEngineFromBoard wraps an existing board. The caller keeps ownership of
// the board between engine operations.
func NewEngineFromBoard(board *Board, turn Color) *Engine {
	return &Engine{board: board, turn: turn, fullmove: 1}
}

// Board exposes the underlying board for read access and rendering. Callers
// must not mutate it while the engine is active; go through MakeMove.
func (e *Engine) Board() *Board {
	return e.board
}

// Turn returns the side to move.
func (e *Engine) Turn() Color {
	return e.turn
}

// HistoryLen returns the number of moves applied and not undone.
func (e *Engine) HistoryLen() int {
	return len(e.history)
}

// LastMove returns the most recently applied move.
func (e *Engine) LastMove() (Move, bool) {
	if len(e.history) == 0 {
		return Move{}, false
	}
	return e.history[len(e.history)-1].move, true
}

// LastCaptured returns the piece taken by the most recent move, if any.
func (e *Engine) LastCaptured() (Piece, bool) {
	if len(e.history) == 0 {
		return Piece{}, false
	}
	captured := e.history[len(e.history)-1].captured
	return captured, !captured.IsEmpty()
}

// Fork returns an engine over an independent clone of the current position
// with no history. The search uses forks so the canonical board is never
// touched by exploration.
func (e *Engine) Fork() *Engine {
	return &Engine{
		board:    e.board.Clone(),
		turn:     e.turn,
		halfmove: e.halfmove,
		fullmove: e.fullmove,
	}
}

// PseudoLegalMoves generates moves that obey the piece movement shape at pos
// but may still leave the mover's own king in check.
func (e *Engine) PseudoLegalMoves(pos Position) []Move {
	if !pos.IsValid() {
		return nil
	}
	switch e.board.At(pos).Type {
	case Pawn:
		return e.pawnMoves(pos)
	case Knight:
		return e.offsetMoves(pos, knightOffsets[:])
	case Bishop:
		return e.slidingMoves(pos, bishopDirs[:])
	case Rook:
		return e.slidingMoves(pos, rookDirs[:])
	case Queen:
		return e.slidingMoves(pos, queenDirs[:])
	case King:
		return e.kingMoves(pos)
	}
	return nil
}

// LegalMovesFrom returns the legal moves for the piece at pos, regardless of
// whose turn it is. Each pseudo-legal candidate is simulated and rejected if
// it leaves the mover's king attacked.
func (e *Engine) LegalMovesFrom(pos Position) []Move {
	if !pos.IsValid() || e.board.At(pos).IsEmpty() {
		return nil
	}
	color := e.board.At(pos).Color
	var legal []Move
	for _, m := range e.PseudoLegalMoves(pos) {
		if !e.leavesKingInCheck(m, color) {
			legal = append(legal, m)
		}
	}
	return legal
}

// AllLegalMoves returns every legal move for the given side.
func (e *Engine) AllLegalMoves(color Color) []Move {
	var all []Move
	for _, pos := range e.board.Pieces(color) {
		all = append(all, e.LegalMovesFrom(pos)...)
	}
	return all
}

// IsAttacked reports whether any piece of bySide can reach pos by its
// movement rule, respecting blockers for sliding pieces.
func (e *Engine) IsAttacked(pos Position, bySide Color) bool {
	return attacked(e.board, pos, bySide)
}

// IsInCheck reports whether color's king is attacked. An absent king counts
// as in check; board-editing call sites may legitimately produce kingless
// positions and those must degrade to a loss condition, never an error.
func (e *Engine) IsInCheck(color Color) bool {
	return inCheck(e.board, color)
}

// MakeMove validates the move against the legal-move list and applies it with
// full bookkeeping: en-passant capture removal, castling rook relocation,
// promotion substitution, en-passant target refresh, castling-rights
// invalidation and turn flip. Returns false without touching any state if the
// move is not legal for the side to move.
func (e *Engine) MakeMove(move Move) bool {
	if !move.From.IsValid() || !move.To.IsValid() {
		return false
	}
	piece := e.board.At(move.From)
	if piece.IsEmpty() || piece.Color != e.turn {
		return false
	}

	// Re-derive the legal move so wire moves arrive with correct flags.
	matched := false
	for _, legal := range e.LegalMovesFrom(move.From) {
		if legal.To == move.To && legal.Promotion == move.Promotion {
			move = legal
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	record := moveRecord{
		move:       move,
		moved:      piece,
		capturedAt: NoPosition,
		enPassant:  e.board.EnPassantTarget(),
		castling:   e.board.CastlingRights(),
		halfmove:   e.halfmove,
	}

	if move.IsEnPassant {
		record.capturedAt = Position{Row: move.From.Row, Col: move.To.Col}
		record.captured = e.board.At(record.capturedAt)
		e.board.Remove(record.capturedAt)
	} else if !e.board.At(move.To).IsEmpty() {
		record.captured = e.board.At(move.To)
		record.capturedAt = move.To
	}

	if move.IsCastle {
		e.board.Move(move.From, move.To)
		rookFrom, rookTo := castleRookSquares(move)
		e.board.Move(rookFrom, rookTo)
		e.board.DisableCastling(piece.Color, true)
		e.board.DisableCastling(piece.Color, false)
	} else {
		e.board.Move(move.From, move.To)
		if move.Promotion != TypeNone {
			e.board.Set(move.To, Piece{Type: move.Promotion, Color: piece.Color, Moved: true})
		}
	}

	// A double pawn step opens a one-ply en-passant window; anything else
	// closes it.
	e.board.ClearEnPassantTarget()
	if piece.Type == Pawn && abs(move.To.Row-move.From.Row) == 2 {
		e.board.SetEnPassantTarget(Position{Row: (move.From.Row + move.To.Row) / 2, Col: move.From.Col})
	}

	if piece.Type == King {
		e.board.DisableCastling(piece.Color, true)
		e.board.DisableCastling(piece.Color, false)
	}
	if piece.Type == Rook {
		if side, ok := rookHomeSide(move.From, piece.Color); ok {
			e.board.DisableCastling(piece.Color, side)
		}
	}
	// Capturing a rook on its home square kills that right too.
	if record.captured.Type == Rook {
		if side, ok := rookHomeSide(record.capturedAt, record.captured.Color); ok {
			e.board.DisableCastling(record.captured.Color, side)
		}
	}

	if piece.Type == Pawn || !record.captured.IsEmpty() {
		e.halfmove = 0
	} else {
		e.halfmove++
	}
	if e.turn == Black {
		e.fullmove++
	}

	e.history = append(e.history, record)
	e.turn = e.turn.Opponent()
	return true
}

// UndoMove pops the most recent move record and restores the board exactly,
// including castling rights, the en-passant target and the halfmove clock.
// Returns false when there is nothing to undo.
func (e *Engine) UndoMove() bool {
	if len(e.history) == 0 {
		return false
	}
	record := e.history[len(e.history)-1]
	move := record.move

	switch {
	case move.IsCastle:
		rookFrom, rookTo := castleRookSquares(move)
		e.board.Set(move.From, record.moved)
		e.board.Remove(move.To)
		// The rook was necessarily unmoved for the castle to exist.
		e.board.Set(rookFrom, Piece{Type: Rook, Color: record.moved.Color})
		e.board.Remove(rookTo)
	case move.IsEnPassant:
		e.board.Set(move.From, record.moved)
		e.board.Remove(move.To)
		// The captured pawn goes back to its own square, not move.To.
		e.board.Set(record.capturedAt, record.captured)
	default:
		e.board.Set(move.From, record.moved)
		e.board.Set(move.To, record.captured)
	}

	e.board.SetEnPassantTarget(record.enPassant)
	e.board.SetCastlingRights(record.castling)
	e.halfmove = record.halfmove
	e.turn = e.turn.Opponent()
	if e.turn == Black {
		e.fullmove--
	}
	e.history = e.history[:len(e.history)-1]
	return true
}

// leavesKingInCheck applies the move to the live board, tests the mover's
// king, then reverts, leaving the board byte-identical. This is the single
// most expensive routine in the engine; every legal-move query pays it once
// per pseudo-legal candidate.
func (e *Engine) leavesKingInCheck(move Move, color Color) bool {
	moved := e.board.At(move.From)
	captured := e.board.At(move.To)

	var epCaptured Piece
	epSquare := NoPosition
	if move.IsEnPassant {
		epSquare = Position{Row: move.From.Row, Col: move.To.Col}
		epCaptured = e.board.At(epSquare)
		e.board.Remove(epSquare)
	}

	e.board.Move(move.From, move.To)
	check := inCheck(e.board, color)

	e.board.Set(move.From, moved)
	e.board.Set(move.To, captured)
	if epSquare.IsValid() {
		e.board.Set(epSquare, epCaptured)
	}
	return check
}

func (e *Engine) pawnMoves(pos Position) []Move {
	var moves []Move
	pawn := e.board.At(pos)
	dir, startRow, promoRow := -1, 6, 0
	if pawn.Color == Black {
		dir, startRow, promoRow = 1, 1, 7
	}

	forward := Position{Row: pos.Row + dir, Col: pos.Col}
	if forward.IsValid() && e.board.At(forward).IsEmpty() {
		moves = appendPawnMove(moves, Move{From: pos, To: forward}, promoRow)
		if pos.Row == startRow {
			double := Position{Row: pos.Row + 2*dir, Col: pos.Col}
			if e.board.At(double).IsEmpty() {
				moves = append(moves, Move{From: pos, To: double})
			}
		}
	}

	for _, dc := range [2]int{-1, 1} {
		target := Position{Row: pos.Row + dir, Col: pos.Col + dc}
		if !target.IsValid() {
			continue
		}
		victim := e.board.At(target)
		capture := !victim.IsEmpty() && victim.Color != pawn.Color
		enPassant := target == e.board.EnPassantTarget()
		if capture {
			moves = appendPawnMove(moves, Move{From: pos, To: target, IsCapture: true}, promoRow)
		} else if enPassant {
			moves = append(moves, Move{From: pos, To: target, IsCapture: true, IsEnPassant: true})
		}
	}
	return moves
}

// appendPawnMove expands a pawn move reaching the back rank into one move per
// promotion kind.
func appendPawnMove(moves []Move, m Move, promoRow int) []Move {
	if m.To.Row != promoRow {
		return append(moves, m)
	}
	for _, kind := range promotionKinds {
		promo := m
		promo.Promotion = kind
		moves = append(moves, promo)
	}
	return moves
}

func (e *Engine) offsetMoves(pos Position, offsets [][2]int) []Move {
	var moves []Move
	piece := e.board.At(pos)
	for _, off := range offsets {
		target := Position{Row: pos.Row + off[0], Col: pos.Col + off[1]}
		if !target.IsValid() {
			continue
		}
		victim := e.board.At(target)
		if victim.IsEmpty() || victim.Color != piece.Color {
			moves = append(moves, Move{From: pos, To: target, IsCapture: !victim.IsEmpty()})
		}
	}
	return moves
}

func (e *Engine) slidingMoves(pos Position, dirs [][2]int) []Move {
	var moves []Move
	piece := e.board.At(pos)
	for _, dir := range dirs {
		target := pos
		for {
			target = Position{Row: target.Row + dir[0], Col: target.Col + dir[1]}
			if !target.IsValid() {
				break
			}
			victim := e.board.At(target)
			if victim.IsEmpty() {
				moves = append(moves, Move{From: pos, To: target})
				continue
			}
			if victim.Color != piece.Color {
				moves = append(moves, Move{From: pos, To: target, IsCapture: true})
			}
			break
		}
	}
	return moves
}

func (e *Engine) kingMoves(pos Position) []Move {
	moves := e.offsetMoves(pos, kingOffsets[:])
	king := e.board.At(pos)
	if king.Moved || inCheck(e.board, king.Color) {
		return moves
	}
	opponent := king.Color.Opponent()

	// Kingside: rights intact, rook home and unmoved, path empty, and
	// neither transit nor destination square attacked.
	if e.board.CanCastleKingside(king.Color) {
		rook := e.board.At(Position{Row: pos.Row, Col: 7})
		if rook.Type == Rook && !rook.Moved &&
			e.board.At(Position{Row: pos.Row, Col: 5}).IsEmpty() &&
			e.board.At(Position{Row: pos.Row, Col: 6}).IsEmpty() &&
			!attacked(e.board, Position{Row: pos.Row, Col: 5}, opponent) &&
			!attacked(e.board, Position{Row: pos.Row, Col: 6}, opponent) {
			moves = append(moves, Move{From: pos, To: Position{Row: pos.Row, Col: 6}, IsCastle: true})
		}
	}
	if e.board.CanCastleQueenside(king.Color) {
		rook := e.board.At(Position{Row: pos.Row, Col: 0})
		if rook.Type == Rook && !rook.Moved &&
			e.board.At(Position{Row: pos.Row, Col: 1}).IsEmpty() &&
			e.board.At(Position{Row: pos.Row, Col: 2}).IsEmpty() &&
			e.board.At(Position{Row: pos.Row, Col: 3}).IsEmpty() &&
			!attacked(e.board, Position{Row: pos.Row, Col: 2}, opponent) &&
			!attacked(e.board, Position{Row: pos.Row, Col: 3}, opponent) {
			moves = append(moves, Move{From: pos, To: Position{Row: pos.Row, Col: 2}, IsCastle: true})
		}
	}
	return moves
}

// attacked scans outward from pos: sliding rays for rooks/bishops/queens,
// offset tables for knights and kings, and the two pawn capture squares of
// the attacking side.
func attacked(b *Board, pos Position, by Color) bool {
	for _, dir := range rookDirs {
		target := Position{Row: pos.Row + dir[0], Col: pos.Col + dir[1]}
		for target.IsValid() {
			p := b.At(target)
			if !p.IsEmpty() {
				if p.Color == by && (p.Type == Rook || p.Type == Queen) {
					return true
				}
				break
			}
			target = Position{Row: target.Row + dir[0], Col: target.Col + dir[1]}
		}
	}
	for _, dir := range bishopDirs {
		target := Position{Row: pos.Row + dir[0], Col: pos.Col + dir[1]}
		for target.IsValid() {
			p := b.At(target)
			if !p.IsEmpty() {
				if p.Color == by && (p.Type == Bishop || p.Type == Queen) {
					return true
				}
				break
			}
			target = Position{Row: target.Row + dir[0], Col: target.Col + dir[1]}
		}
	}
	for _, off := range knightOffsets {
		target := Position{Row: pos.Row + off[0], Col: pos.Col + off[1]}
		if target.IsValid() {
			if p := b.At(target); p.Color == by && p.Type == Knight {
				return true
			}
		}
	}
	for _, off := range kingOffsets {
		target := Position{Row: pos.Row + off[0], Col: pos.Col + off[1]}
		if target.IsValid() {
			if p := b.At(target); p.Color == by && p.Type == King {
				return true
			}
		}
	}
	// A white pawn on row+1 attacks pos; a black pawn on row-1 does.
	pawnRow := pos.Row + 1
	if by == Black {
		pawnRow = pos.Row - 1
	}
	for _, dc := range [2]int{-1, 1} {
		target := Position{Row: pawnRow, Col: pos.Col + dc}
		if target.IsValid() {
			if p := b.At(target); p.Color == by && p.Type == Pawn {
				return true
			}
		}
	}
	return false
}

func inCheck(b *Board, color Color) bool {
	kingPos := b.FindKing(color)
	if !kingPos.IsValid() {
		return true
	}
	return attacked(b, kingPos, color.Opponent())
}

// castleRookSquares returns the rook's from/to squares for a castle move.
func castleRookSquares(move Move) (Position, Position) {
	if move.To.Col > move.From.Col {
		return Position{Row: move.From.Row, Col: 7}, Position{Row: move.From.Row, Col: 5}
	}
	return Position{Row: move.From.Row, Col: 0}, Position{Row: move.From.Row, Col: 3}
}

// rookHomeSide maps a rook home square to its castling side.
func rookHomeSide(pos Position, color Color) (kingside bool, ok bool) {
	homeRow := 7
	if color == Black {
		homeRow = 0
	}
	if pos.Row != homeRow {
		return false, false
	}
	switch pos.Col {
	case 0:
		return false, true
	case 7:
		return true, true
	}
	return false, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
