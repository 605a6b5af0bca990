// Package store is the durable side of a room: gorm models plus the
// narrow repository surface the coordinator reads and writes through.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrDuplicateCompletion = errors.New("completion already recorded for this round")
)

// RoomUpdate carries the mutable room scalars. Nil fields are left
// untouched.
type RoomUpdate struct {
	Status       *RoomStatus
	CurrentRound *int
	RoundStart   *time.Time
	TotalPlayers *int
}

// Store is everything the room coordinator needs from durable storage.
// The gorm implementation lives in gorm.go; actor tests run against an
// in-memory fake.
type Store interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)
	GetRoomByCode(ctx context.Context, code string) (*Room, error)
	UpdateRoom(ctx context.Context, id string, upd RoomUpdate) error

	AddParticipant(ctx context.Context, p *Participant) error
	ListParticipants(ctx context.Context, roomID string) ([]Participant, error)

	InsertCompletion(ctx context.Context, c *Completion) error
	CountCompletions(ctx context.Context, roomID string, round int) (int, error)
	ListCompletions(ctx context.Context, roomID string, round int) ([]Completion, error)
}
