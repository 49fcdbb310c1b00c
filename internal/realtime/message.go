package realtime

import "encoding/json"

// Event types pushed to clients
const (
	EventTree        = "tree"
	EventTabs        = "tabs"
	EventSetValue    = "set_value"
	EventSetLanguage = "set_language"
)

// EventContentChange is sent by clients as the user types
const EventContentChange = "content_change"

// Envelope is the frame for every WebSocket message in both directions
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ContentChangePayload carries the full editor buffer
type ContentChangePayload struct {
	Value string `json:"value"`
}

type setValuePayload struct {
	Value string `json:"value"`
}

type setLanguagePayload struct {
	Language string `json:"language"`
}

func encode(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
