package realtime

import (
	"encoding/json"
	"fmt"
)

// Frame types exchanged over the realtime socket.
const (
	FrameInvoke       = "invoke"
	FrameNotification = "notification"
	FrameError        = "error"
)

const groupPrefix = "GroupTenant-"

// TenantGroup names the broadcast group that holds a tenant's connections.
func TenantGroup(identifier string) string {
	return groupPrefix + identifier
}

// Notification is a method name plus an opaque JSON payload.
type Notification struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewNotification(method string, payload any) (Notification, error) {
	if payload == nil {
		return Notification{Method: method}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Notification{}, fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}
	return Notification{Method: method, Payload: raw}, nil
}

// Frame is the JSON envelope of every message on the socket. Clients send
// invoke frames naming a Target; the server sends notification frames.
type Frame struct {
	Type    string          `json:"type"`
	Target  string          `json:"target,omitempty"`
	Method  string          `json:"method,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (n Notification) frame() ([]byte, error) {
	return json.Marshal(Frame{Type: FrameNotification, Method: n.Method, Payload: n.Payload})
}

func ErrorFrame(message string) []byte {
	b, _ := json.Marshal(Frame{Type: FrameError, Error: message})
	return b
}
