package store

import "time"

type RoomStatus string

const (
	StatusLobby    RoomStatus = "lobby"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

type Room struct {
	ID            string     `gorm:"primaryKey;size:36"`
	JoinCode      string     `gorm:"size:12;uniqueIndex;not null"`
	Status        RoomStatus `gorm:"size:16;not null;default:lobby"`
	HostID        string     `gorm:"size:36;not null"`
	TimerDuration int        `gorm:"not null"` // seconds, immutable once playing
	CurrentRound  int        `gorm:"not null;default:0"`
	RoundStart    time.Time
	TotalPlayers  *int // nil until the room starts, then fixed
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Participant struct {
	ID          string `gorm:"primaryKey;size:36"`
	RoomID      string `gorm:"size:36;not null;index;uniqueIndex:idx_room_seat,priority:1"`
	DisplayName string `gorm:"size:64;not null"`
	Seat        int    `gorm:"not null;uniqueIndex:idx_room_seat,priority:2"`
	CreatedAt   time.Time
}

// Completion records that a participant finished their task for a
// round. It carries no content; the drawing or guess itself stays on
// the participant's device.
type Completion struct {
	ID           uint      `gorm:"primaryKey"`
	RoomID       string    `gorm:"size:36;not null;uniqueIndex:idx_room_round_submitter,priority:1"`
	Round        int       `gorm:"not null;uniqueIndex:idx_room_round_submitter,priority:2"`
	SubmitterID  string    `gorm:"size:36;not null;uniqueIndex:idx_room_round_submitter,priority:3"`
	ChainOwnerID string    `gorm:"size:36;not null"`
	Category     string    `gorm:"size:16;not null"`
	AutoFilled   bool      `gorm:"not null;default:false"` // placeholder written by the deadline timer
	CreatedAt    time.Time
}
