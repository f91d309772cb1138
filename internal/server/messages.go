package server

import (
	"encoding/json"
	"fmt"

	"github.com/acheong08/threatlens/pkg/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Client -> Server
	TypeAnalyze MessageType = "analyze" // Client submits {type, content}
	TypePing    MessageType = "ping"    // Keep-alive

	// Server -> Client
	TypeProgress MessageType = "progress" // Progress updates
	TypeLog      MessageType = "log"      // Log messages for terminal
	TypeResult   MessageType = "result"   // Final verdict
	TypeError    MessageType = "error"    // Error message
	TypePong     MessageType = "pong"
)

// Message is the base WebSocket message structure
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AnalyzePayload sent by client to start analysis. Fields stay untyped so
// validation can report wrong types the same way the HTTP API does.
type AnalyzePayload struct {
	Type    any `json:"type"`
	Content any `json:"content"`
}

// ProgressPayload for progress bar updates
type ProgressPayload struct {
	Percent int    `json:"percent"` // 0-100
	Stage   string `json:"stage"`   // "validate", "preprocess", "model"
	Message string `json:"message"` // Human-readable status
}

// LogPayload for terminal output
type LogPayload struct {
	Message string `json:"message"`         // Log message
	Level   string `json:"level,omitempty"` // "info", "success", "warning", "error"
}

// ResultPayload carries the verdict, shaped like the HTTP response body
type ResultPayload struct {
	Error  bool                `json:"error"`
	Type   models.AnalysisKind `json:"type"`
	Result *models.RiskVerdict `json:"result"`
}

// ErrorPayload for error messages
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func newMessage(t MessageType, payload any) Message {
	payloadBytes, _ := json.Marshal(payload)
	return Message{Type: t, Payload: payloadBytes}
}

func NewProgressMessage(percent int, stage, message string) Message {
	return newMessage(TypeProgress, ProgressPayload{
		Percent: percent,
		Stage:   stage,
		Message: message,
	})
}

func NewLogMessage(message, level string) Message {
	return newMessage(TypeLog, LogPayload{
		Message: message,
		Level:   level,
	})
}

func NewResultMessage(kind models.AnalysisKind, verdict *models.RiskVerdict) Message {
	return newMessage(TypeResult, ResultPayload{
		Type:   kind,
		Result: verdict,
	})
}

// NewErrorMessage builds an error message. code is "validation" for bad
// input and "internal" otherwise.
func NewErrorMessage(message string, err error, code string) Message {
	errMsg := message
	if err != nil {
		errMsg = fmt.Sprintf("%s: %v", message, err)
	}
	return newMessage(TypeError, ErrorPayload{Message: errMsg, Code: code})
}

func NewPongMessage() Message {
	return Message{Type: TypePong}
}

// ParseAnalyzePayload extracts the analyze payload from a message
func ParseAnalyzePayload(msg Message) (*AnalyzePayload, error) {
	var payload AnalyzePayload
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse analyze payload: %w", err)
	}
	return &payload, nil
}
