package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelien-loyer/chessgame-backend/internal/chess"
)

func waitForMatch(t *testing.T, ch chan string) MatchFoundEvent {
	t.Helper()
	select {
	case payload := <-ch:
		var event MatchFoundEvent
		require.NoError(t, json.Unmarshal([]byte(payload), &event))
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("no match event within deadline")
		return MatchFoundEvent{}
	}
}

func TestMatchmakingPairsTwoPlayers(t *testing.T) {
	gm := NewGameManager()

	ch1 := make(chan string, 1)
	ch2 := make(chan string, 1)
	gm.RegisterMatchmakingChannel("alice", ch1)
	gm.RegisterMatchmakingChannel("bob", ch2)

	require.NoError(t, gm.JoinMatchmaking("alice"))
	require.NoError(t, gm.JoinMatchmaking("bob"))

	e1 := waitForMatch(t, ch1)
	e2 := waitForMatch(t, ch2)

	assert.Equal(t, e1.GameID, e2.GameID)
	assert.Equal(t, chess.White, e1.Color, "the longer-waiting player takes white")
	assert.Equal(t, chess.Black, e2.Color)

	game, err := gm.GetGame(e1.GameID)
	require.NoError(t, err)
	assert.True(t, game.IsPlayerInGame("alice"))
	assert.True(t, game.IsPlayerInGame("bob"))
}

func TestCreateGameRejectsDuplicateID(t *testing.T) {
	gm := NewGameManager()
	require.NoError(t, gm.CreateGame("g1"))
	assert.Error(t, gm.CreateGame("g1"))
	assert.Error(t, gm.CreateGameVsAI("g1", chess.DifficultyEasy, chess.White))
}

func TestGetGameUnknownID(t *testing.T) {
	gm := NewGameManager()
	_, err := gm.GetGame("missing")
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = gm.GetGameState("missing")
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = gm.AddPlayerToGame("missing", "alice")
	assert.ErrorIs(t, err, ErrGameNotFound)
}
