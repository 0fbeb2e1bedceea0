package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestFENExport(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, startFEN, e.FEN())

	m, _ := ParseCoord("e2e4")
	require.True(t, e.MakeMove(m))
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", e.FEN())

	m, _ = ParseCoord("c7c5")
	require.True(t, e.MakeMove(m))
	assert.Equal(t, "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2", e.FEN())

	m, _ = ParseCoord("g1f3")
	require.True(t, e.MakeMove(m))
	assert.Equal(t, "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKB1R b KQkq - 1 2", e.FEN())
}

func TestParseFENRoundTrip(t *testing.T) {
	fens := []string{
		startFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
		"8/8/8/8/8/8/6k1/4K2q w - - 12 60",
	}

	for _, fen := range fens {
		e, err := ParseFEN(fen)
		require.NoError(t, err, fen)
		assert.Equal(t, fen, e.FEN())
	}
}

func TestParseFENRestoresCastlingSemantics(t *testing.T) {
	// Same placement, no rights: the imported position must refuse to castle.
	withRights := mustParseFEN(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	withoutRights := mustParseFEN(t, "4k3/8/8/8/8/8/8/4K2R w - - 0 1")

	assert.True(t, containsMove(withRights.AllLegalMoves(White), "e1g1"))
	assert.False(t, containsMove(withoutRights.AllLegalMoves(White), "e1g1"))
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",           // seven ranks
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",  // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNZ w KQkq - 0 1",  // bad piece letter
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w KQkq - 0 1", // overfull rank
	}

	for _, fen := range bad {
		_, err := ParseFEN(fen)
		assert.Error(t, err, fen)
	}
}

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in    string
		from  string
		to    string
		promo PieceType
		ok    bool
	}{
		{in: "e2e4", from: "e2", to: "e4", promo: TypeNone, ok: true},
		{in: "a7a8q", from: "a7", to: "a8", promo: Queen, ok: true},
		{in: "h2h1n", from: "h2", to: "h1", promo: Knight, ok: true},
		{in: "e2e9", ok: false},
		{in: "i2e4", ok: false},
		{in: "e2e4x", ok: false},
		{in: "e2", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		got, err := ParseCoord(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.from, got.From.Square())
		assert.Equal(t, tt.to, got.To.Square())
		assert.Equal(t, tt.promo, got.Promotion)
		assert.Equal(t, tt.in, got.Coord())
	}
}
