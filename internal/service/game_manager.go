package service

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/aurelien-loyer/chessgame-backend/internal/chess"
	"github.com/aurelien-loyer/chessgame-backend/internal/model"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// GameManager is the registry of live games plus the matchmaking loop that
// pairs waiting players.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	mu               sync.RWMutex
}

func NewGameManager() *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
	}
	go gm.processMatchmaking()
	return gm
}

// MatchFoundEvent notifies a queued player of their new game.
type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  chess.Color `json:"color"`
}

// processMatchmaking pairs the two longest-waiting players once a second.
func (gm *GameManager) processMatchmaking() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		gm.mu.Lock()
		for {
			p1, p2, ok := gm.queue.NextPair()
			if !ok {
				break
			}

			gameID := uuid.New().String()
			game := model.NewGame(gameID)
			c1, err := game.AddPlayer(p1.ID)
			if err != nil {
				log.Printf("matchmaking: seat %s: %v", p1.ID, err)
				continue
			}
			c2, err := game.AddPlayer(p2.ID)
			if err != nil {
				log.Printf("matchmaking: seat %s: %v", p2.ID, err)
				continue
			}
			gm.games[gameID] = game

			gm.notifyMatch(p1.ID, MatchFoundEvent{GameID: gameID, Color: c1})
			gm.notifyMatch(p2.ID, MatchFoundEvent{GameID: gameID, Color: c2})
		}
		gm.mu.Unlock()
	}
}

// notifyMatch delivers the event to the player's matchmaking channel and
// retires the channel. Caller holds gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("matchmaking: marshal event for %s: %v", playerID, err)
		return
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		log.Printf("matchmaking: dropped event for %s", playerID)
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	// The channel's creator closes it; only drop the reference here.
	delete(gm.matchingChannels, playerID)
}

// CreateGame registers a new two-human game under gameID.
func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return errors.New("game already exists")
	}
	gm.games[gameID] = model.NewGame(gameID)
	return nil
}

// CreateGameVsAI registers a game against the computer at the given tier.
func (gm *GameManager) CreateGameVsAI(gameID string, difficulty chess.Difficulty, humanColor chess.Color) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return errors.New("game already exists")
	}
	gm.games[gameID] = model.NewGameVsAI(gameID, difficulty, humanColor)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID, playerID string) (chess.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return chess.ColorNone, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID, playerID string, move model.WireMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) Resign(gameID, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Resign(playerID)
}

func (gm *GameManager) LegalMoves(gameID string, from chess.Position) ([]chess.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(from), nil
}

func (gm *GameManager) RegisterConnection(gameID, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID, playerID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}
