package service

import (
	"github.com/aurelien-loyer/chessgame-backend/internal/chess"
	"github.com/aurelien-loyer/chessgame-backend/internal/model"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// GameService is the thin facade the controllers talk to.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{gameManager: gameManager}
}

// CreateGame starts a two-human game and returns its ID.
func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()
	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", errors.Wrap(err, "create game")
	}
	return gameID, nil
}

// CreateGameVsAI starts a game against the computer and returns its ID.
func (gs *GameService) CreateGameVsAI(difficulty string, humanColor chess.Color) (string, error) {
	tier, err := chess.ParseDifficulty(difficulty)
	if err != nil {
		return "", err
	}
	gameID := uuid.New().String()
	if err := gs.gameManager.CreateGameVsAI(gameID, tier, humanColor); err != nil {
		return "", errors.Wrap(err, "create game vs ai")
	}
	return gameID, nil
}

func (gs *GameService) JoinGame(gameID, playerID string) (chess.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) LegalMoves(gameID string, from chess.Position) ([]chess.Move, error) {
	return gs.gameManager.LegalMoves(gameID, from)
}

func (gs *GameService) HandleMove(gameID, playerID string, move model.WireMove) error {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) HandleResign(gameID, playerID string) error {
	return gs.gameManager.Resign(gameID, playerID)
}

func (gs *GameService) RegisterConnection(gameID, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}
