package store

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the schema.
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Room{}, &Participant{}, &Completion{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) CreateRoom(ctx context.Context, room *Room) error {
	return s.db.WithContext(ctx).Create(room).Error
}

func (s *GormStore) GetRoom(ctx context.Context, id string) (*Room, error) {
	var room Room
	err := s.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *GormStore) GetRoomByCode(ctx context.Context, code string) (*Room, error) {
	var room Room
	err := s.db.WithContext(ctx).First(&room, "join_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *GormStore) UpdateRoom(ctx context.Context, id string, upd RoomUpdate) error {
	fields := map[string]any{}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.CurrentRound != nil {
		fields["current_round"] = *upd.CurrentRound
	}
	if upd.RoundStart != nil {
		fields["round_start"] = *upd.RoundStart
	}
	if upd.TotalPlayers != nil {
		fields["total_players"] = *upd.TotalPlayers
	}
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&Room{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AddParticipant assigns the next free seat inside a transaction so
// two concurrent joins cannot claim the same position.
func (s *GormStore) AddParticipant(ctx context.Context, p *Participant) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seat int64
		if err := tx.Model(&Participant{}).Where("room_id = ?", p.RoomID).Count(&seat).Error; err != nil {
			return err
		}
		p.Seat = int(seat)
		return tx.Create(p).Error
	})
}

func (s *GormStore) ListParticipants(ctx context.Context, roomID string) ([]Participant, error) {
	var out []Participant
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("seat asc").
		Find(&out).Error
	return out, err
}

func (s *GormStore) InsertCompletion(ctx context.Context, c *Completion) error {
	err := s.db.WithContext(ctx).Create(c).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCompletion
	}
	return err
}

func (s *GormStore) CountCompletions(ctx context.Context, roomID string, round int) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Completion{}).
		Where("room_id = ? AND round = ?", roomID, round).
		Count(&n).Error
	return int(n), err
}

func (s *GormStore) ListCompletions(ctx context.Context, roomID string, round int) ([]Completion, error) {
	var out []Completion
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND round = ?", roomID, round).
		Find(&out).Error
	return out, err
}
