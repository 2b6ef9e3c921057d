package chatdto

import "github.com/recapd/recapd/internal/domain/entities"

// SendResponse carries the assistant's reply for one turn
type SendResponse struct {
	Reply entities.ChatMessage `json:"reply"`
}

// HistoryResponse is the session's full message history
type HistoryResponse struct {
	Messages []entities.ChatMessage `json:"messages"`
}
