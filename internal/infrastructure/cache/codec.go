package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recapd/recapd/internal/domain/entities"
)

// Codec helpers for sidecar payloads. The store itself stays
// content-agnostic; these translate between blobs and domain types.
//
// Transcript and chat sidecars are JSON, but decoding is tolerant: a
// blob that does not parse as a JSON object is treated as plain text
// from the older cache format, with no migration step required.

// EncodeTranscript serializes a SavedTranscript for its sidecar
func EncodeTranscript(t *entities.SavedTranscript) ([]byte, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return b, nil
}

// DecodeTranscript parses a transcript sidecar. Legacy plain-text blobs
// come back as a transcript with no segments.
func DecodeTranscript(data []byte) *entities.SavedTranscript {
	if looksLikeJSONObject(data) {
		var t entities.SavedTranscript
		if err := json.Unmarshal(data, &t); err == nil {
			return &t
		}
	}
	return &entities.SavedTranscript{FullText: string(data)}
}

// EncodeChat serializes chat session state for its sidecar
func EncodeChat(state *entities.ChatSessionState) ([]byte, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat state: %w", err)
	}
	return b, nil
}

// DecodeChat parses a chat sidecar, tolerating pre-JSON history blobs
// by folding them into a single assistant message
func DecodeChat(data []byte) *entities.ChatSessionState {
	if looksLikeJSONObject(data) {
		var state entities.ChatSessionState
		if err := json.Unmarshal(data, &state); err == nil {
			return &state
		}
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return &entities.ChatSessionState{}
	}
	return &entities.ChatSessionState{
		Messages: []entities.ChatMessage{entities.NewChatMessage(entities.ChatRoleAssistant, text)},
	}
}

func looksLikeJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
