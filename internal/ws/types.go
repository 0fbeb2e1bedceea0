package ws

import (
	"encoding/json"
)

// MessageType discriminates the WebSocket messages the system exchanges.
type MessageType string

const (
	MessageTypeMove      MessageType = "move"
	MessageTypeGameState MessageType = "gameState"
	MessageTypeResign    MessageType = "resign"
	MessageTypeError     MessageType = "error"
)

// Message is the envelope for every WebSocket frame: a type tag plus a raw
// payload decoded by the handler for that type.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
