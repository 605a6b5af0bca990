package types

import "time"

type ClientMessage struct {
	Type          string `json:"type"` // "connect"
	ParticipantID string `json:"participant_id,omitempty"`
}

type ServerMessage struct {
	Type string `json:"type"` // "full_state" | "incremental_state" | "error"
	Data any    `json:"data,omitempty"`
}

type ParticipantInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Seat        int    `json:"seat"`
}

// FullState carries the roster. Sent to everyone on room start and on
// lobby roster changes, and privately to a (re)connecting client.
type FullState struct {
	RoomID        string            `json:"room_id"`
	Status        string            `json:"status"`
	HostID        string            `json:"host_id"`
	Participants  []ParticipantInfo `json:"participants"`
	CurrentRound  int               `json:"current_round"`
	RoundStart    time.Time         `json:"round_start"`
	TimerDuration int               `json:"timer_duration"`
	TotalPlayers  int               `json:"total_players"`
}

// IncrementalState is FullState minus the roster. Everything that can
// change mid-game fits in a handful of scalars, so every broadcast
// after the lobby uses this shape.
type IncrementalState struct {
	RoomID        string    `json:"room_id"`
	Status        string    `json:"status"`
	CurrentRound  int       `json:"current_round"`
	RoundStart    time.Time `json:"round_start"`
	HostID        string    `json:"host_id"`
	TimerDuration int       `json:"timer_duration"`
	TotalPlayers  int       `json:"total_players"`
}

type ErrorData struct {
	Message string `json:"message"`
}
