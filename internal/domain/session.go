package domain

import "time"

// DefaultDomain is reported in payload details when the session has no domain.
const DefaultDomain = "defaultDomain"

// Session represents a logical exchange between two network participants.
type Session struct {
	SessionID       string          `json:"sessionId"`
	ParticipantType ParticipantType `json:"participantType"`
	ParticipantID   string          `json:"participantId,omitempty"`
	Domain          string          `json:"domain,omitempty"`
	Version         string          `json:"version,omitempty"`
	SessionMode     SessionMode     `json:"sessionMode"`
	Payloads        []Payload       `json:"payloads"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// SessionPatch holds the session fields that may be revised after creation.
type SessionPatch struct {
	ParticipantType ParticipantType `json:"participantType"`
	ParticipantID   string          `json:"participantId,omitempty"`
	Domain          string          `json:"domain,omitempty"`
}

// PayloadDetail combines a session's context with one of its payloads.
type PayloadDetail struct {
	ParticipantType ParticipantType `json:"participantType"`
	Domain          string          `json:"domain"`
	Payload         Payload         `json:"payload"`
}

// DetailsFor projects every payload of s into a PayloadDetail, keeping payload order.
func DetailsFor(s *Session) []PayloadDetail {
	domain := s.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	details := make([]PayloadDetail, 0, len(s.Payloads))
	for _, p := range s.Payloads {
		details = append(details, PayloadDetail{
			ParticipantType: s.ParticipantType,
			Domain:          domain,
			Payload:         p,
		})
	}
	return details
}
