package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelien-loyer/chessgame-backend/internal/middleware"
	"github.com/aurelien-loyer/chessgame-backend/internal/service"
)

func newTestApp() *fiber.App {
	app := fiber.New()

	gameService := service.NewGameService(service.NewGameManager())
	gameController := NewGameController(gameService)

	api := app.Group("/api", middleware.EnsurePlayerID())
	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/moves", gameController.GetLegalMoves)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, playerID, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func createGame(t *testing.T, app *fiber.App, body string) string {
	t.Helper()
	resp, decoded := doJSON(t, app, "POST", "/api/game/create", "alice", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	gameID, ok := decoded["game_id"].(string)
	require.True(t, ok, "response: %v", decoded)
	require.NotEmpty(t, gameID)
	return gameID
}

func TestCreateJoinAndFetchState(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app, "")

	resp, decoded := doJSON(t, app, "POST", "/api/game/join/"+gameID, "alice", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "white", decoded["color"])

	resp, decoded = doJSON(t, app, "POST", "/api/game/join/"+gameID, "bob", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "black", decoded["color"])

	resp, decoded = doJSON(t, app, "GET", "/api/game/"+gameID, "alice", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "white", decoded["toMove"])
	fen, _ := decoded["fen"].(string)
	assert.Contains(t, fen, " w KQkq ")
}

func TestCreateGameVsAISeatsComputer(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app, `{"vsAi":true,"difficulty":"easy","color":"white"}`)

	resp, decoded := doJSON(t, app, "GET", "/api/game/"+gameID, "alice", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	players, ok := decoded["players"].(map[string]any)
	require.True(t, ok)
	black, ok := players["black"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "computer:easy", black["name"])
}

func TestCreateGameVsAIRejectsUnknownDifficulty(t *testing.T) {
	app := newTestApp()
	resp, _ := doJSON(t, app, "POST", "/api/game/create", "alice", `{"vsAi":true,"difficulty":"grandmaster"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestGetLegalMoves(t *testing.T) {
	app := newTestApp()
	gameID := createGame(t, app, "")

	resp, decoded := doJSON(t, app, "GET", "/api/game/"+gameID+"/moves?square=e2", "alice", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	moves, ok := decoded["moves"].([]any)
	require.True(t, ok, "response: %v", decoded)
	assert.Len(t, moves, 2)

	resp, _ = doJSON(t, app, "GET", "/api/game/"+gameID+"/moves?square=z9", "alice", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUnknownGameIsNotFound(t *testing.T) {
	app := newTestApp()

	resp, _ := doJSON(t, app, "GET", "/api/game/no-such-game", "alice", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/game/join/no-such-game", "alice", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMissingPlayerIDIsUnauthorized(t *testing.T) {
	app := newTestApp()
	resp, _ := doJSON(t, app, "POST", "/api/game/create", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJoinMatchmaking(t *testing.T) {
	app := newTestApp()

	resp, decoded := doJSON(t, app, "POST", "/api/game/matchmaking/join", "alice", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "queued", decoded["status"])

	// Queueing twice is an error.
	resp, _ = doJSON(t, app, "POST", "/api/game/matchmaking/join", "alice", "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
