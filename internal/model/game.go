package model

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/aurelien-loyer/chessgame-backend/internal/chess"
	"github.com/aurelien-loyer/chessgame-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

const initialClockTime = 600 * time.Second

var (
	ErrGameFull    = errors.New("game is full")
	ErrNotInGame   = errors.New("player not in game")
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

// GameConnections tracks the WebSocket connections observing a single game.
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{connections: make(map[string]*websocket.Conn)}
}

// Game owns the canonical board for one match. Every mutation goes through
// the engine; the UI and network layers only ever see snapshots.
type Game struct {
	ID string

	mu          sync.Mutex
	engine      *chess.Engine
	ai          *chess.AI
	aiColor     chess.Color
	players     [2]ClientPlayer // white, black
	captured    CapturedPieces
	history     []MovePair
	resolve     *string
	lastMove    *SimpleMove
	sound       string
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
}

// GameState is the full client-facing snapshot broadcast after every move.
type GameState struct {
	Sound           string          `json:"sound"`
	Board           *BoardState     `json:"boardState"`
	ToMove          chess.Color     `json:"toMove"`
	Status          chess.Status    `json:"status"`
	FEN             string          `json:"fen"`
	MoveHistory     []MovePair      `json:"moveHistory"`
	CapturedPieces  CapturedPieces  `json:"capturedPieces"`
	IsCheck         bool            `json:"isCheck"`
	EnPassantTarget *chess.Position `json:"enPassantTarget"`
	Resolve         *string         `json:"resolve"`
	LastMove        *SimpleMove     `json:"lastMove"`
	Players         struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

type CapturedPieces struct {
	White []chess.Piece `json:"white"`
	Black []chess.Piece `json:"black"`
}

// NewGame creates a two-human game.
func NewGame(id string) *Game {
	return &Game{
		ID:          id,
		engine:      chess.NewEngine(),
		connections: NewGameConnections(),
		whiteClock:  NewClock(initialClockTime),
		blackClock:  NewClock(initialClockTime),
	}
}

// NewGameVsAI creates a game against the computer. The AI plays the opposite
// side of humanColor and replies synchronously after each human move.
func NewGameVsAI(id string, difficulty chess.Difficulty, humanColor chess.Color) *Game {
	g := NewGame(id)
	if humanColor != chess.White && humanColor != chess.Black {
		humanColor = chess.White
	}
	g.aiColor = humanColor.Opponent()
	g.ai = chess.NewAI(difficulty, nil)
	aiSeat := &g.players[0]
	if g.aiColor == chess.Black {
		aiSeat = &g.players[1]
	}
	*aiSeat = ClientPlayer{
		ID:       "computer:" + difficulty.String(),
		Color:    g.aiColor,
		TimeLeft: int(initialClockTime.Milliseconds() / 100),
	}
	// When the computer has white it opens immediately.
	if g.aiColor == chess.White {
		if opening, ok := g.ai.FindBestMove(g.engine, chess.White); ok {
			if err := g.applyMove(opening); err != nil {
				log.Printf("game %s: ai opening %s rejected: %v", g.ID, opening.Coord(), err)
			}
		}
	}
	return g
}

// AddPlayer seats a player on the first free side and returns the color.
func (g *Game) AddPlayer(playerID string) (chess.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.players[0].ID == "" {
		g.players[0] = ClientPlayer{ID: playerID, Color: chess.White, TimeLeft: int(initialClockTime.Milliseconds() / 100)}
		return chess.White, nil
	}
	if g.players[1].ID == "" {
		g.players[1] = ClientPlayer{ID: playerID, Color: chess.Black, TimeLeft: int(initialClockTime.Milliseconds() / 100)}
		return chess.Black, nil
	}
	return chess.ColorNone, ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buildState()
}

// FEN exports the current position, e.g. for delegation to an external
// engine.
func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.FEN()
}

// LegalMoves returns the legal moves for the piece on the given square, for
// UI highlighting. The board itself is never handed out mutably.
func (g *Game) LegalMoves(from chess.Position) []chess.Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !from.IsValid() {
		return nil
	}
	return g.engine.LegalMovesFrom(from)
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerColor(playerID) != chess.ColorNone
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players[0].ID == "" || g.players[1].ID == ""
}

func (g *Game) playerColor(playerID string) chess.Color {
	if playerID != "" && g.players[0].ID == playerID {
		return chess.White
	}
	if playerID != "" && g.players[1].ID == playerID {
		return chess.Black
	}
	return chess.ColorNone
}

// MakeMove validates that the move belongs to the player whose turn it is,
// applies it, and lets the AI reply when one is seated and the game is not
// over. An illegal move leaves the game untouched.
func (g *Game) MakeMove(playerID string, wire WireMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolve != nil {
		return ErrGameOver
	}
	color := g.playerColor(playerID)
	if color == chess.ColorNone {
		return ErrNotInGame
	}
	if color != g.engine.Turn() {
		return ErrNotYourTurn
	}

	move := chess.Move{From: wire.From, To: wire.To, Promotion: wire.Promotion}
	if err := g.applyMove(move); err != nil {
		return err
	}

	if g.ai != nil && g.resolve == nil && g.engine.Turn() == g.aiColor {
		if reply, ok := g.ai.FindBestMove(g.engine, g.aiColor); ok {
			if err := g.applyMove(reply); err != nil {
				log.Printf("game %s: ai reply %s rejected: %v", g.ID, reply.Coord(), err)
			}
		}
	}

	state := g.buildState()
	go g.broadcastState(state)
	return nil
}

// applyMove runs one ply through the engine with all session bookkeeping:
// clocks, captured pieces, history notation, terminal resolution. Caller
// holds g.mu.
func (g *Game) applyMove(move chess.Move) error {
	mover := g.engine.Turn()
	notation := g.notate(move)

	if !g.engine.MakeMove(move) {
		return ErrIllegalMove
	}

	applied, _ := g.engine.LastMove()
	if captured, ok := g.engine.LastCaptured(); ok {
		if mover == chess.White {
			g.captured.White = append(g.captured.White, captured)
		} else {
			g.captured.Black = append(g.captured.Black, captured)
		}
		g.sound = "capture"
	} else {
		g.sound = "move"
	}

	ply := &Ply{From: applied.From, To: applied.To, Promotion: applied.Promotion, Notation: notation, Coord: applied.Coord()}
	if mover == chess.White {
		g.history = append(g.history, MovePair{WhitePly: ply})
	} else if len(g.history) > 0 {
		g.history[len(g.history)-1].BlackPly = ply
	} else {
		// Black moved first: position was loaded mid-game.
		g.history = append(g.history, MovePair{BlackPly: ply})
	}
	g.lastMove = &SimpleMove{From: applied.From, To: applied.To}

	if mover == chess.White {
		g.whiteClock.Stop()
		g.blackClock.Start()
	} else {
		g.blackClock.Stop()
		g.whiteClock.Start()
	}
	g.players[0].TimeLeft = int(g.whiteClock.TimeLeft().Milliseconds() / 100)
	g.players[1].TimeLeft = int(g.blackClock.TimeLeft().Milliseconds() / 100)

	switch g.engine.Status() {
	case chess.StatusCheckmate:
		result := "checkmate"
		g.resolve = &result
		g.sound = "check"
	case chess.StatusStalemate:
		result := "stalemate"
		g.resolve = &result
	case chess.StatusDraw:
		result := "draw"
		g.resolve = &result
	case chess.StatusCheck:
		g.sound = "check"
	}
	return nil
}

// Resign ends the game in favor of the opponent.
func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color := g.playerColor(playerID)
	if color == chess.ColorNone {
		return ErrNotInGame
	}
	if g.resolve != nil {
		return ErrGameOver
	}
	result := string(color.Opponent()) + " wins by resignation"
	g.resolve = &result
	g.whiteClock.Stop()
	g.blackClock.Stop()

	state := g.buildState()
	go g.broadcastState(state)
	return nil
}

// notate renders the move in short algebraic form before it is applied.
// Caller holds g.mu.
func (g *Game) notate(move chess.Move) string {
	piece := g.engine.Board().At(move.From)
	if move.IsCastle || (piece.Type == chess.King && abs(move.To.Col-move.From.Col) == 2) {
		if move.To.Col > move.From.Col {
			return "O-O"
		}
		return "O-O-O"
	}
	capture := ""
	if !g.engine.Board().At(move.To).IsEmpty() || (piece.Type == chess.Pawn && move.From.Col != move.To.Col) {
		capture = "x"
	}
	prefix := piece.Type.Letter()
	if piece.Type == chess.Pawn && capture != "" {
		prefix = move.From.File()
	}
	suffix := ""
	if move.Promotion != chess.TypeNone {
		suffix = "=" + move.Promotion.Letter()
	}
	return prefix + capture + move.To.Square() + suffix
}

// buildState assembles a snapshot. Caller holds g.mu.
func (g *Game) buildState() GameState {
	var ep *chess.Position
	if target := g.engine.Board().EnPassantTarget(); target.IsValid() {
		t := target
		ep = &t
	}
	history := make([]MovePair, len(g.history))
	copy(history, g.history)

	state := GameState{
		Sound:           g.sound,
		Board:           snapshotBoard(g.engine.Board()),
		ToMove:          g.engine.Turn(),
		Status:          g.engine.Status(),
		FEN:             g.engine.FEN(),
		MoveHistory:     history,
		CapturedPieces:  g.captured,
		IsCheck:         g.engine.IsInCheck(g.engine.Turn()),
		EnPassantTarget: ep,
		Resolve:         g.resolve,
		LastMove:        g.lastMove,
	}
	state.Players.White = g.players[0]
	state.Players.Black = g.players[1]
	return state
}

// RegisterConnection attaches a WebSocket connection to this game. Duplicate
// connections for the same player are rejected in favor of the existing one.
func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	authorized := g.playerColor(playerID) != chess.ColorNone ||
		g.players[0].ID == "" || g.players[1].ID == ""
	state := g.buildState()
	g.mu.Unlock()

	if !authorized {
		return errors.New("not authorized to join this game")
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "connection already exists"),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	go g.broadcastState(state)
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	delete(g.connections.connections, playerID)
}

// broadcastState sends a snapshot to every observer. Failed connections are
// dropped from the registry.
func (g *Game) broadcastState(state GameState) {
	payload, err := json.Marshal(state)
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		msg := ws.Message{Type: ws.MessageTypeGameState, Payload: json.RawMessage(payload)}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("game %s: send state to %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
