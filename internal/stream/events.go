package stream

import (
	"encoding/json"
	"log"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
)

// Event types sent to session subscribers.
const (
	EventSessionUpdated = "session.updated"
	EventSessionDeleted = "session.deleted"
)

type SessionEvent struct {
	Type    string                 `json:"type"`
	Session *domain.WorkoutSession `json:"session,omitempty"`
}

// PublishSession broadcasts the session's new state to everyone watching it.
func (h *Hub) PublishSession(eventType string, s *domain.WorkoutSession) {
	payload, err := json.Marshal(SessionEvent{Type: eventType, Session: s})
	if err != nil {
		log.Printf("ERROR: encoding %s event for session %s: %v", eventType, s.ID.Hex(), err)
		return
	}
	h.Broadcast(s.ID.Hex(), payload)
}
