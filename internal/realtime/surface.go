package realtime

import (
	"sync"

	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/languages"
)

// EditorState is what the shared editor currently shows
type EditorState struct {
	Value    string `json:"value"`
	Language string `json:"language"`
}

// Surface is the server-side mirror of the editor widget. The store drives
// it through SetValue and SetModelLanguage; clients report keystrokes
// through UpdateBuffer, which is what SaveActiveFile reads back.
type Surface struct {
	mu       sync.Mutex
	value    string
	language string
	hub      *Hub
}

var _ docsysSvc.EditorSurface = (*Surface)(nil)

// NewSurface creates an empty plaintext surface broadcasting through hub.
// A nil hub keeps the surface local.
func NewSurface(hub *Hub) *Surface {
	return &Surface{language: languages.PlainText, hub: hub}
}

func (s *Surface) GetValue() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.value
}

// SetValue replaces the buffer and pushes it to every client
func (s *Surface) SetValue(text string) {
	s.mu.Lock()
	s.value = text
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(EventSetValue, setValuePayload{Value: text})
	}
}

// SetModelLanguage switches highlighting on every client
func (s *Surface) SetModelLanguage(language string) {
	s.mu.Lock()
	s.language = language
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(EventSetLanguage, setLanguagePayload{Language: language})
	}
}

// UpdateBuffer records the user's unsaved edits without echoing them back
func (s *Surface) UpdateBuffer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = text
}

// State returns the current buffer and language
func (s *Surface) State() EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return EditorState{Value: s.value, Language: s.language}
}
