package chess

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isLegalFor(e *Engine, color Color, move Move) bool {
	for _, m := range e.AllLegalMoves(color) {
		if m.From == move.From && m.To == move.To && m.Promotion == move.Promotion {
			return true
		}
	}
	return false
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in    string
		want  Difficulty
		depth int
		ok    bool
	}{
		{in: "easy", want: DifficultyEasy, depth: 1, ok: true},
		{in: "medium", want: DifficultyMedium, depth: 2, ok: true},
		{in: "hard", want: DifficultyHard, depth: 3, ok: true},
		{in: "expert", want: DifficultyExpert, depth: 4, ok: true},
		{in: "grandmaster", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.depth, got.maxDepth())
		assert.Equal(t, tt.in, got.String())
	}
}

func TestFindBestMoveReturnsLegalMoveAtEveryTier(t *testing.T) {
	// Italian game, a quiet middlegame-ish position with plenty of choice.
	const fen = "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"

	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		e := mustParseFEN(t, fen)
		ai := NewAI(d, rand.New(rand.NewSource(1)))

		move, ok := ai.FindBestMove(e, White)
		require.True(t, ok, "tier %s found no move", d)
		assert.True(t, isLegalFor(e, White, move), "tier %s produced illegal move %s", d, move.Coord())
	}
}

func TestFindBestMoveHasNoMoveWhenMated(t *testing.T) {
	e := mustParseFEN(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	ai := NewAI(DifficultyMedium, rand.New(rand.NewSource(1)))

	_, ok := ai.FindBestMove(e, Black)
	assert.False(t, ok)
}

func TestFindBestMovePlaysMateInOne(t *testing.T) {
	e := mustParseFEN(t, "6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1")

	for seed := int64(0); seed < 5; seed++ {
		ai := NewAI(DifficultyMedium, rand.New(rand.NewSource(seed)))
		move, ok := ai.FindBestMove(e, White)
		require.True(t, ok)
		assert.Equal(t, "a1a8", move.Coord(), "seed %d", seed)
	}
}

func TestFindBestMoveNormalizesPromotionsToQueen(t *testing.T) {
	e := mustParseFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	ai := NewAI(DifficultyMedium, rand.New(rand.NewSource(1)))

	move, ok := ai.FindBestMove(e, White)
	require.True(t, ok)
	if move.Promotion != TypeNone {
		assert.Equal(t, Queen, move.Promotion)
	}
}

func TestFindBestMoveDeterministicWithSeededSource(t *testing.T) {
	const fen = "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"

	first, ok := NewAI(DifficultyMedium, rand.New(rand.NewSource(7))).FindBestMove(mustParseFEN(t, fen), White)
	require.True(t, ok)
	second, ok := NewAI(DifficultyMedium, rand.New(rand.NewSource(7))).FindBestMove(mustParseFEN(t, fen), White)
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestFindBestMoveDoesNotMutateEngine(t *testing.T) {
	e := NewEngine()
	before := keyOf(e)

	ai := NewAI(DifficultyHard, rand.New(rand.NewSource(1)))
	_, ok := ai.FindBestMove(e, White)
	require.True(t, ok)

	assert.Empty(t, diffKeys(before, keyOf(e)))
	assert.Equal(t, 0, e.HistoryLen())
}

func TestFindBestMoveHonorsBudget(t *testing.T) {
	e := NewEngine()
	ai := NewAI(DifficultyExpert, rand.New(rand.NewSource(1)))
	ai.SetBudget(time.Millisecond)

	move, ok := ai.FindBestMove(e, White)
	require.True(t, ok, "an aborted search still returns the best move so far")
	assert.True(t, isLegalFor(e, White, move))
}

func TestPruningDoesNotChangeRootScores(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{name: "rook endgame", fen: "r3k3/8/8/8/8/8/8/R3K3 w Qq - 0 1", depth: 3},
		{name: "pawn endgame", fen: "4k3/4p3/8/8/8/8/3PP3/4K3 w - - 0 1", depth: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustParseFEN(t, tt.fen)
			for _, root := range e.AllLegalMoves(White) {
				child := e.Fork()
				require.True(t, child.MakeMove(root))

				pruned := &searcher{maxDepth: tt.depth, aiColor: White, prune: true}
				plain := &searcher{maxDepth: tt.depth, aiColor: White, prune: false}

				got := pruned.minimax(child.Fork(), Black, tt.depth-1, -infinity, infinity, false)
				want := plain.minimax(child.Fork(), Black, tt.depth-1, -infinity, infinity, false)
				assert.Equal(t, want, got, "root move %s", root.Coord())
			}
		})
	}
}

func TestResolveExternalMove(t *testing.T) {
	t.Run("valid reply resolves exactly", func(t *testing.T) {
		e := NewEngine()
		ai := NewAI(DifficultyEasy, rand.New(rand.NewSource(1)))

		move, ok := ai.ResolveExternalMove(e, White, "e2e4")
		require.True(t, ok)
		assert.Equal(t, "e2e4", move.Coord())
	})

	t.Run("promotion suffix resolves to the named piece", func(t *testing.T) {
		e := mustParseFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
		ai := NewAI(DifficultyEasy, rand.New(rand.NewSource(1)))

		move, ok := ai.ResolveExternalMove(e, White, "a7a8r")
		require.True(t, ok)
		assert.Equal(t, Rook, move.Promotion)
	})

	t.Run("garbage falls back to a random legal move", func(t *testing.T) {
		e := NewEngine()
		ai := NewAI(DifficultyEasy, rand.New(rand.NewSource(1)))

		move, ok := ai.ResolveExternalMove(e, White, "not a move")
		require.True(t, ok)
		assert.True(t, isLegalFor(e, White, move))
	})

	t.Run("illegal but parseable falls back too", func(t *testing.T) {
		e := NewEngine()
		ai := NewAI(DifficultyEasy, rand.New(rand.NewSource(1)))

		move, ok := ai.ResolveExternalMove(e, White, "e2e5")
		require.True(t, ok)
		assert.True(t, isLegalFor(e, White, move))
		assert.NotEqual(t, "e2e5", move.Coord())
	})

	t.Run("no legal moves reports failure", func(t *testing.T) {
		e := mustParseFEN(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
		ai := NewAI(DifficultyEasy, rand.New(rand.NewSource(1)))

		_, ok := ai.ResolveExternalMove(e, Black, "g8h8")
		assert.False(t, ok)
	})
}

func TestEvaluateIsSymmetric(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 0, Evaluate(e.Board(), White), "the starting position is balanced")
	assert.Equal(t, 0, Evaluate(e.Board(), Black))

	// Remove a white rook; white should be behind from its own perspective.
	board := e.Board().Clone()
	board.Remove(Position{Row: 7, Col: 0})
	assert.Negative(t, Evaluate(board, White))
	assert.Positive(t, Evaluate(board, Black))
}
