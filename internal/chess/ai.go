package chess

import (
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Difficulty selects the fixed search depth of the computer opponent.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
	DifficultyExpert
)

// ParseDifficulty maps the wire names onto tiers.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	case "expert":
		return DifficultyExpert, nil
	}
	return 0, errors.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	case DifficultyExpert:
		return "expert"
	}
	return "medium"
}

func (d Difficulty) maxDepth() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	case DifficultyExpert:
		return 4
	}
	return 2
}

const (
	mateScore = 100000
	infinity  = 1 << 30
	// deadline polling interval, in visited nodes
	abortCheckMask = 255
)

// AI chooses one legal move for a side under a difficulty-bound minimax
// search with alpha-beta pruning. It never mutates the engine it is given:
// every exploratory move happens on a fork.
type AI struct {
	difficulty Difficulty
	rng        *rand.Rand
	budget     time.Duration
}

// NewAI returns an AI for the tier. The random source breaks ties between
// equally scored moves; pass a fixed-seed source for deterministic play, or
// nil for a time-seeded one.
func NewAI(difficulty Difficulty, rng *rand.Rand) *AI {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AI{difficulty: difficulty, rng: rng}
}

// Difficulty returns the configured tier.
func (ai *AI) Difficulty() Difficulty {
	return ai.difficulty
}

// SetBudget installs a wall-clock abort budget. When the budget elapses
// mid-search the best move found so far is returned. Zero disables the check.
func (ai *AI) SetBudget(budget time.Duration) {
	ai.budget = budget
}

// FindBestMove scores every legal move of color at the configured depth and
// picks uniformly at random among the moves tying the maximum. Promotions are
// normalized to queen before simulation; the search never explores
// minor-piece promotions. Returns false when color has no legal move.
func (ai *AI) FindBestMove(e *Engine, color Color) (Move, bool) {
	moves := e.AllLegalMoves(color)
	if len(moves) == 0 {
		return Move{}, false
	}

	depth := ai.difficulty.maxDepth()
	s := &searcher{maxDepth: depth, aiColor: color, prune: true}
	if ai.budget > 0 {
		s.deadline = time.Now().Add(ai.budget)
	}

	bestScore := -infinity
	var best []Move
	alpha, beta := -infinity, infinity

	for _, move := range moves {
		if move.Promotion != TypeNone {
			move.Promotion = Queen
		}

		child := e.Fork()
		if !child.MakeMove(move) {
			continue
		}

		var score int
		if depth <= 1 {
			score = Evaluate(child.Board(), color)
		} else {
			score = s.minimax(child, color.Opponent(), depth-1, alpha, beta, false)
		}

		if score > bestScore {
			bestScore = score
			best = best[:0]
			best = append(best, move)
		} else if score == bestScore {
			best = append(best, move)
		}
		if score > alpha {
			alpha = score
		}
		if s.aborted {
			break
		}
	}

	if len(best) == 0 {
		return moves[0], true
	}
	return best[ai.rng.Intn(len(best))], true
}

// ResolveExternalMove parses a coordinate-notation reply from a delegated
// engine and validates it against the legal-move list; a move from an
// external source is never applied unchecked. Unparseable or illegal replies
// fall back to a uniformly random legal move. Returns false only when color
// has no legal move at all.
func (ai *AI) ResolveExternalMove(e *Engine, color Color, text string) (Move, bool) {
	legal := e.AllLegalMoves(color)
	if len(legal) == 0 {
		return Move{}, false
	}
	if parsed, err := ParseCoord(text); err == nil {
		for _, m := range legal {
			if m.From == parsed.From && m.To == parsed.To && m.Promotion == parsed.Promotion {
				return m, true
			}
		}
	}
	return legal[ai.rng.Intn(len(legal))], true
}

// searcher carries per-search state: the tier depth for mate-distance
// scoring, the evaluation perspective, the abort deadline and the pruning
// switch (disabled only by tests proving pruning does not change scores).
type searcher struct {
	maxDepth int
	aiColor  Color
	deadline time.Time
	nodes    int
	prune    bool
	aborted  bool
}

// minimax explores forks of the position to the given depth with standard
// alpha-beta bounds. Terminal nodes score as mate (offset by distance so
// faster mates win) or stalemate zero; depth zero falls back to the static
// evaluation.
func (s *searcher) minimax(e *Engine, turn Color, depth, alpha, beta int, maximizing bool) int {
	s.nodes++
	if !s.deadline.IsZero() && s.nodes&abortCheckMask == 0 && time.Now().After(s.deadline) {
		s.aborted = true
	}
	if s.aborted {
		return Evaluate(e.Board(), s.aiColor)
	}

	moves := e.AllLegalMoves(turn)
	if len(moves) == 0 {
		if e.IsInCheck(turn) {
			if maximizing {
				return -mateScore + (s.maxDepth - depth)
			}
			return mateScore - (s.maxDepth - depth)
		}
		return 0
	}
	if depth == 0 {
		return Evaluate(e.Board(), s.aiColor)
	}

	s.orderMoves(e, moves)

	if maximizing {
		maxEval := -infinity
		for _, move := range moves {
			child := e.Fork()
			if !child.MakeMove(move) {
				continue
			}
			eval := s.minimax(child, turn.Opponent(), depth-1, alpha, beta, false)
			if eval > maxEval {
				maxEval = eval
			}
			if eval > alpha {
				alpha = eval
			}
			if s.prune && beta <= alpha {
				break
			}
		}
		return maxEval
	}

	minEval := infinity
	for _, move := range moves {
		child := e.Fork()
		if !child.MakeMove(move) {
			continue
		}
		eval := s.minimax(child, turn.Opponent(), depth-1, alpha, beta, true)
		if eval < minEval {
			minEval = eval
		}
		if eval < beta {
			beta = eval
		}
		if s.prune && beta <= alpha {
			break
		}
	}
	return minEval
}

// orderMoves sorts captures by victim value and promotions first so the
// beta cutoff fires earlier. Cheap heuristic, correctness does not depend
// on it.
func (s *searcher) orderMoves(e *Engine, moves []Move) {
	score := func(m Move) int {
		v := 0
		if victim := e.Board().At(m.To); m.IsCapture || !victim.IsEmpty() {
			v += 10 * pieceValue(victim.Type)
		}
		if m.Promotion != TypeNone {
			v += 900
		}
		return v
	}
	sort.SliceStable(moves, func(i, j int) bool {
		return score(moves[i]) > score(moves[j])
	})
}
