package chess

// Status classifies the game for the side to move.
type Status string

const (
	StatusPlaying   Status = "playing"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusDraw      Status = "draw"
)

// IsCheckmate reports whether color is in check with no legal move.
func (e *Engine) IsCheckmate(color Color) bool {
	return e.IsInCheck(color) && !e.hasLegalMove(color)
}

// IsStalemate reports whether color is not in check yet has no legal move.
func (e *Engine) IsStalemate(color Color) bool {
	return !e.IsInCheck(color) && !e.hasLegalMove(color)
}

// IsInsufficientMaterial reports the two drawn material configurations the
// engine recognizes: bare kings, and king plus one minor piece against a bare
// king. Nothing else counts as a material draw.
func (e *Engine) IsInsufficientMaterial() bool {
	count := 0
	minors := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := e.board.At(Position{Row: row, Col: col})
			if p.IsEmpty() {
				continue
			}
			count++
			switch p.Type {
			case Bishop, Knight:
				minors++
			case King:
			default:
				return false
			}
		}
	}
	if count == 2 {
		return true
	}
	return count == 3 && minors == 1
}

// Status evaluates checkmate, stalemate, material draw, then check for the
// side to move.
func (e *Engine) Status() Status {
	switch {
	case e.IsCheckmate(e.turn):
		return StatusCheckmate
	case e.IsStalemate(e.turn):
		return StatusStalemate
	case e.IsInsufficientMaterial():
		return StatusDraw
	case e.IsInCheck(e.turn):
		return StatusCheck
	}
	return StatusPlaying
}

// hasLegalMove short-circuits as soon as one legal move is found, instead of
// materializing the full move list.
func (e *Engine) hasLegalMove(color Color) bool {
	for _, pos := range e.board.Pieces(color) {
		if len(e.LegalMovesFrom(pos)) > 0 {
			return true
		}
	}
	return false
}
