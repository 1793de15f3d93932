package websocket

import (
	"encoding/json"
	"time"
)

const (
	TypePing         = "ping"
	TypePong         = "pong"
	TypeNewMessage   = "new_message"
	TypeChatMessage  = "chat_message"
	TypeChatListPing = "chat_list_update"
)

type Envelope struct {
	Type      string      `json:"type"`
	ChatID    string      `json:"chat_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func Encode(msgType, chatID string, data interface{}) []byte {
	b, err := json.Marshal(Envelope{
		Type:      msgType,
		ChatID:    chatID,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		b, _ = json.Marshal(Envelope{Type: msgType, ChatID: chatID, Timestamp: time.Now().UTC().Format(time.RFC3339)})
	}
	return b
}
