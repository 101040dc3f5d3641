// Package domain defines the core domain models for the recorder.
package domain

import "fmt"

// ParticipantType is the role a session represents in the exchange.
type ParticipantType string

const (
	// ParticipantTypeRequester is the requester-side participant.
	ParticipantTypeRequester ParticipantType = "BAP"
	// ParticipantTypeResponder is the responder-side participant.
	ParticipantTypeResponder ParticipantType = "BPP"
)

// ParticipantTypes lists every known participant type.
func ParticipantTypes() []ParticipantType {
	return []ParticipantType{ParticipantTypeRequester, ParticipantTypeResponder}
}

// ParseParticipantType validates s against the known participant types.
func ParseParticipantType(s string) (ParticipantType, error) {
	switch ParticipantType(s) {
	case ParticipantTypeRequester, ParticipantTypeResponder:
		return ParticipantType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown participant type %q", ErrInvalidArgument, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ParticipantType) UnmarshalText(b []byte) error {
	v, err := ParseParticipantType(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// SessionMode describes how a session is driven.
type SessionMode string

const (
	SessionModeAutomated SessionMode = "AUTOMATION"
	SessionModeManual    SessionMode = "MANUAL"
)

// SessionModes lists every known session mode.
func SessionModes() []SessionMode {
	return []SessionMode{SessionModeAutomated, SessionModeManual}
}

// ParseSessionMode validates s against the known session modes.
func ParseSessionMode(s string) (SessionMode, error) {
	switch SessionMode(s) {
	case SessionModeAutomated, SessionModeManual:
		return SessionMode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown session mode %q", ErrInvalidArgument, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SessionMode) UnmarshalText(b []byte) error {
	v, err := ParseSessionMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Action is a protocol action name. The zero value means no action was recorded.
type Action string

const (
	ActionSearch    Action = "search"
	ActionOnSearch  Action = "on_search"
	ActionSelect    Action = "select"
	ActionOnSelect  Action = "on_select"
	ActionInit      Action = "init"
	ActionOnInit    Action = "on_init"
	ActionConfirm   Action = "confirm"
	ActionOnConfirm Action = "on_confirm"
	ActionStatus    Action = "status"
	ActionOnStatus  Action = "on_status"
	ActionCancel    Action = "cancel"
	ActionOnCancel  Action = "on_cancel"
	ActionUpdate    Action = "update"
	ActionOnUpdate  Action = "on_update"
	ActionTrack     Action = "track"
	ActionOnTrack   Action = "on_track"
)

// Actions lists every known action in request/response pairs.
func Actions() []Action {
	return []Action{
		ActionSearch, ActionOnSearch,
		ActionSelect, ActionOnSelect,
		ActionInit, ActionOnInit,
		ActionConfirm, ActionOnConfirm,
		ActionStatus, ActionOnStatus,
		ActionCancel, ActionOnCancel,
		ActionUpdate, ActionOnUpdate,
		ActionTrack, ActionOnTrack,
	}
}

// ParseAction validates s against the action catalog. An empty string is accepted.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case "",
		ActionSearch, ActionOnSearch,
		ActionSelect, ActionOnSelect,
		ActionInit, ActionOnInit,
		ActionConfirm, ActionOnConfirm,
		ActionStatus, ActionOnStatus,
		ActionCancel, ActionOnCancel,
		ActionUpdate, ActionOnUpdate,
		ActionTrack, ActionOnTrack:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

